package expr

import (
	"errors"
	"math"
	"testing"
)

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"x", 3, 3},
		{"2x", 3, 6},
		{"x^2", 3, 9},
		{"-x^2", 3, -9},
		{"2^3^2", 0, 512},
		{"3(x+1)", 1, 6},
		{"sin(pi/2)", 0, 1},
		{"sqrt(16) + abs(-2)", 0, 6},
		{"log(e)", 0, 1},
		{"2 * x - 4 / 2", 5, 8},
		{"xsin(x)", 0, 0},
		{"2pi", 0, 2 * math.Pi},
		{"(x-1)(x+1)", 3, 8},
	}
	for _, tc := range tests {
		got, err := Eval(tc.src, tc.x)
		if err != nil {
			t.Errorf("Eval(%q): %v", tc.src, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Eval(%q, %v) = %v, want %v", tc.src, tc.x, got, tc.want)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, src := range []string{
		"",
		"x +",
		"foo(x)",
		"sin x",
		"(x",
		"x)",
		"1..2",
		"x; alert(1)",
		"window.close()",
	} {
		if _, err := Parse(src); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q) err = %v, want ErrSyntax", src, err)
		}
	}
}

func TestEvalNonFinite(t *testing.T) {
	n, err := Parse("1/x")
	if err != nil {
		t.Fatal(err)
	}
	if v := n.Eval(0); !math.IsInf(v, 1) {
		t.Errorf("1/0 = %v, want +Inf", v)
	}
	n, err = Parse("sqrt(x)")
	if err != nil {
		t.Fatal(err)
	}
	if v := n.Eval(-1); !math.IsNaN(v) {
		t.Errorf("sqrt(-1) = %v, want NaN", v)
	}
}
