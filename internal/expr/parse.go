package expr

import "fmt"

type parser struct {
	toks []token
	pos  int
}

// Parse compiles src into an evaluable expression of x.
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
	}
	return n, nil
}

// Eval parses src and evaluates it at x.
func Eval(src string, x float64) (float64, error) {
	n, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return n.Eval(x), nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.text, l: left, r: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokOp && (t.text == "*" || t.text == "/"):
			p.next()
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = binary{op: t.text, l: left, r: right}
		case t.kind == tokNum || t.kind == tokIdent || t.kind == tokLParen:
			right, err := p.power()
			if err != nil {
				return nil, err
			}
			left = binary{op: "*", l: left, r: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (Node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unary{op: t.text, x: x}, nil
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp && t.text == "^" {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return binary{op: "^", l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) atom() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return num(t.num), nil
	case tokLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ) at %d", ErrSyntax, c.pos)
		}
		return n, nil
	case tokIdent:
		if t.text == "x" {
			return variable{}, nil
		}
		if v, ok := consts[t.text]; ok {
			return constant{name: t.text, val: v}, nil
		}
		if fn, ok := funcs[t.text]; ok {
			if open := p.next(); open.kind != tokLParen {
				return nil, fmt.Errorf("%w: %s needs ( at %d", ErrSyntax, t.text, open.pos)
			}
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			if c := p.next(); c.kind != tokRParen {
				return nil, fmt.Errorf("%w: missing ) at %d", ErrSyntax, c.pos)
			}
			return call{name: t.text, fn: fn, arg: arg}, nil
		}
		return nil, fmt.Errorf("%w: unknown name %q at %d", ErrSyntax, t.text, t.pos)
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
}
