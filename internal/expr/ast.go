package expr

import (
	"fmt"
	"math"
)

// Node is a parsed expression.
type Node interface {
	Eval(x float64) float64
	String() string
}

type num float64

func (n num) Eval(float64) float64 { return float64(n) }
func (n num) String() string       { return fmt.Sprintf("%g", float64(n)) }

type variable struct{}

func (variable) Eval(x float64) float64 { return x }
func (variable) String() string         { return "x" }

type constant struct {
	name string
	val  float64
}

func (c constant) Eval(float64) float64 { return c.val }
func (c constant) String() string       { return c.name }

type unary struct {
	op string
	x  Node
}

func (u unary) Eval(x float64) float64 {
	if u.op == "-" {
		return -u.x.Eval(x)
	}
	return u.x.Eval(x)
}
func (u unary) String() string { return "(" + u.op + u.x.String() + ")" }

type binary struct {
	op   string
	l, r Node
}

func (b binary) Eval(x float64) float64 {
	l, r := b.l.Eval(x), b.r.Eval(x)
	switch b.op {
	case "+":
		return l + r
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		return l / r
	case "^":
		return math.Pow(l, r)
	}
	return math.NaN()
}
func (b binary) String() string { return "(" + b.l.String() + " " + b.op + " " + b.r.String() + ")" }

type call struct {
	name string
	fn   func(float64) float64
	arg  Node
}

func (c call) Eval(x float64) float64 { return c.fn(c.arg.Eval(x)) }
func (c call) String() string         { return c.name + "(" + c.arg.String() + ")" }
