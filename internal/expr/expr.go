// Package expr parses and evaluates the single-variable math expressions
// plotted on graph pages.
//
// The grammar is deliberately small:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary | implicit }
//	unary  = ("-" | "+") unary | power
//	power  = atom [ "^" unary ]
//	atom   = number | "x" | const | func "(" expr ")" | "(" expr ")"
//
// Implicit multiplication covers input such as "2x" or "3(x+1)". Only the
// functions sin, cos, tan, log, sqrt and abs and the constants pi and e are
// known; anything else is a parse error.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("syntax error")

var funcs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"log":  math.Log,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
}

var consts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			text := string(rs[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at %d", ErrSyntax, text, start)
			}
			toks = append(toks, token{kind: tokNum, text: text, num: v, pos: start})
		case unicode.IsLetter(r):
			start := i
			for i < len(rs) && unicode.IsLetter(rs[i]) {
				i++
			}
			toks = append(toks, splitIdent(strings.ToLower(string(rs[start:i])), start)...)
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

// splitIdent breaks runs like "xsin" or "pix" into known words so implicit
// multiplication works without spaces.
func splitIdent(word string, pos int) []token {
	var out []token
	for len(word) > 0 {
		matched := ""
		for _, cand := range []string{"sqrt", "sin", "cos", "tan", "log", "abs", "ln", "pi", "x", "e"} {
			if strings.HasPrefix(word, cand) {
				matched = cand
				break
			}
		}
		if matched == "" {
			// unknown word, reported by the parser
			return append(out, token{kind: tokIdent, text: word, pos: pos})
		}
		out = append(out, token{kind: tokIdent, text: matched, pos: pos})
		word = word[len(matched):]
		pos += len(matched)
	}
	return out
}
