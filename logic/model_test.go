package logic_test

import (
	"fmt"
	"testing"

	"github.com/prologzip/ziprolog/logic"
	"github.com/prologzip/ziprolog/test_helpers"
)

func atom(name string) logic.Atom { return logic.Atom{Name: name} }
func int_(v int) logic.Int        { return logic.Int{Value: v} }
func var_(name string) logic.Var  { return logic.NewVar(name) }
func comp(functor string, args ...logic.Term) *logic.Comp {
	return logic.NewComp(functor, args...)
}
func clause(head logic.Term, body ...logic.Term) *logic.Clause {
	return logic.NewClause(head, body...)
}

func TestString(t *testing.T) {
	tests := []struct {
		term fmt.Stringer
		want string
	}{
		{atom("a"), `a`},
		{atom("Z"), `"Z"`},
		{var_("A"), "A"},
		{var_("A").WithSuffix(1), "A_1_"},
		{comp("f"), "f()"},
		{comp("f", var_("A")), "f(A)"},
		{comp("f", var_("A"), var_("B")), "f(A, B)"},
		{clause(comp("add", atom("z"), var_("X"), var_("X"))), `add(z, X, X).`},
		{
			clause(comp("add", comp("s", var_("A")), var_("B"), comp("s", var_("Sum"))),
				comp("add", var_("A"), var_("B"), var_("Sum"))),
			`
            add(s(A), B, s(Sum)) :-
              add(A, B, Sum).`,
		},
	}
	for _, test := range tests {
		want := test_helpers.Dedent(test.want)
		got := test.term.String()
		if got != want {
			t.Errorf("%#v.String() = %q (!= %q)", test.term, got, want)
		}
	}
}

func TestVars(t *testing.T) {
	tests := []struct {
		term logic.Term
		want []logic.Var
	}{
		{atom("a"), nil},
		{var_("X"), []logic.Var{var_("X")}},
		{comp("f", var_("X"), atom("a"), var_("Y")), []logic.Var{var_("X"), var_("Y")}},
		{comp("f", var_("X"), var_("X")), []logic.Var{var_("X")}},
	}
	for _, test := range tests {
		got := logic.Vars(test.term)
		if len(got) != len(test.want) {
			t.Fatalf("Vars(%v) = %v, want %v", test.term, got, test.want)
		}
		for i, x := range got {
			if x != test.want[i] {
				t.Errorf("Vars(%v)[%d] = %v, want %v", test.term, i, x, test.want[i])
			}
		}
	}
}

func TestClauseNormalize(t *testing.T) {
	c := clause(atom("flag"))
	norm, err := c.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if norm.Indicator() != (logic.Indicator{Name: "flag", Arity: 0}) {
		t.Errorf("Indicator() = %v, want flag/0", norm.Indicator())
	}
}

func TestClauseNormalizeError(t *testing.T) {
	c := clause(var_("X"))
	if _, err := c.Normalize(); err == nil {
		t.Errorf("Normalize: want error for var head, got nil")
	}
}
