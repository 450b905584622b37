package parser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/prologzip/ziprolog/logic"
	"github.com/prologzip/ziprolog/parser"
	"github.com/prologzip/ziprolog/test_helpers"
)

func atom(name string) logic.Atom { return logic.Atom{Name: name} }
func int_(v int) logic.Int        { return logic.Int{Value: v} }
func var_(name string) logic.Var  { return logic.NewVar(name) }

func TestParseProgram(t *testing.T) {
	src := `
% facts and a rule over a small family tree
parent(tom, bob).
parent(bob, ann).
grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
`
	got, err := parser.ParseProgram("test", strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	want := []*logic.Clause{
		logic.NewClause(logic.NewComp("parent", atom("tom"), atom("bob"))),
		logic.NewClause(logic.NewComp("parent", atom("bob"), atom("ann"))),
		logic.NewClause(
			logic.NewComp("grandparent", var_("X"), var_("Z")),
			logic.NewComp("parent", var_("X"), var_("Y")),
			logic.NewComp("parent", var_("Y"), var_("Z")),
		),
	}
	if diff := cmp.Diff(want, got, test_helpers.IgnoreUnexported); diff != "" {
		t.Errorf("clauses mismatch (-want +got):\n%s", diff)
	}
}

func TestParseProgramSharesVarsWithinClause(t *testing.T) {
	src := "p(X) :- q(X).\np(X) :- r(X).\n"
	got, err := parser.ParseProgram("test", strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d clauses, want 2", len(got))
	}
	head0 := got[0].Head.(*logic.Comp)
	body0 := got[0].Body[0].(*logic.Comp)
	if head0.Args[0] != body0.Args[0] {
		t.Errorf("X in head and body of the same clause must be the same variable")
	}
}

func TestParseProgramAnonymousVarsAreDistinct(t *testing.T) {
	got, err := parser.ParseProgram("test", strings.NewReader("p(_, _)."))
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	head := got[0].Head.(*logic.Comp)
	if head.Args[0] != logic.AnonymousVar || head.Args[1] != logic.AnonymousVar {
		t.Errorf("both underscores should parse to logic.AnonymousVar, got %v", head.Args)
	}
}

func TestParseProgramQuotedAtom(t *testing.T) {
	got, err := parser.ParseProgram("test", strings.NewReader(`likes(bob, 'New York').`))
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	head := got[0].Head.(*logic.Comp)
	if head.Args[1] != atom("New York") {
		t.Errorf("got %v, want atom %q", head.Args[1], "New York")
	}
}

func TestParseProgramInt(t *testing.T) {
	got, err := parser.ParseProgram("test", strings.NewReader("count(-3)."))
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	head := got[0].Head.(*logic.Comp)
	if head.Args[0] != int_(-3) {
		t.Errorf("got %v, want -3", head.Args[0])
	}
}

func TestParseProgramRejectsMissingPeriod(t *testing.T) {
	_, err := parser.ParseProgram("test", strings.NewReader("p(a)"))
	if err == nil {
		t.Error("ParseProgram: want error for clause missing a terminating '.', got nil")
	}
}

func TestParseQuery(t *testing.T) {
	got, err := parser.ParseQuery("test", strings.NewReader("parent(tom, X), parent(X, ann)."))
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	want := []logic.Term{
		logic.NewComp("parent", atom("tom"), var_("X")),
		logic.NewComp("parent", var_("X"), atom("ann")),
	}
	if diff := cmp.Diff(want, got, test_helpers.IgnoreUnexported); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}
