package compiler_test

import (
	"testing"

	"github.com/prologzip/ziprolog/compiler"
	"github.com/prologzip/ziprolog/logic"
	"github.com/prologzip/ziprolog/symbols"
	"github.com/prologzip/ziprolog/zip"

	"github.com/google/go-cmp/cmp"
)

func atom(name string) logic.Atom     { return logic.Atom{Name: name} }
func int_(v int) logic.Int            { return logic.Int{Value: v} }
func var_(name string) logic.Var      { return logic.NewVar(name) }
func comp(f string, args ...logic.Term) *logic.Comp {
	return logic.NewComp(f, args...)
}
func clause(head logic.Term, body ...logic.Term) *logic.Clause {
	return logic.NewClause(head, body...)
}

func compileOne(t *testing.T, c *logic.Clause) (*symbols.Program, []zip.Instruction) {
	t.Helper()
	prog := symbols.NewProgram()
	if err := compiler.CompileProgram(prog, []*logic.Clause{c}); err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	got := make([]zip.Instruction, len(prog.Code))
	for i, instr := range prog.Code {
		got[i] = instr.(zip.Instruction)
	}
	return prog, got
}

func TestCompileFact(t *testing.T) {
	// add(z, X, X).
	c := clause(comp("add", atom("z"), var_("X"), var_("X")))
	prog, got := compileOne(t, c)

	want := []zip.Instruction{
		zip.GetConstant{Const: 0, ArgAddr: zip.ArgVar(0)},
		zip.GetValue{Var: zip.ArgVar(1), ArgAddr: zip.ArgVar(2)},
		zip.PushSourceFrame{Size: 3},
		zip.Proceed{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}

	pred, err := prog.Pool.Predicate(prog.Pool.PredicateFor(symbols.Indicator{Name: "add", Arity: 3}))
	if err != nil {
		t.Fatalf("Predicate: %v", err)
	}
	if pred.FirstClause == nil {
		t.Fatal("no clause registered for add/3")
	}
	if pred.FirstClause.Entry != 0 || pred.FirstClause.NumParams != 3 || pred.FirstClause.NumVars != 3 {
		t.Errorf("clause symbol = %+v, want Entry=0, NumParams=3, NumVars=3", pred.FirstClause)
	}
	if pred.FirstClause.Next != nil {
		t.Errorf("single-clause predicate got a Next alternative")
	}
}

func TestCompileRuleWithNestedHeadStruct(t *testing.T) {
	// nat(s(X)) :- nat(X).
	c := clause(comp("nat", comp("s", var_("X"))), comp("nat", var_("X")))
	_, got := compileOne(t, c)

	want := []zip.Instruction{
		// head: match s(X) against arg 0; X is matched immediately (only
		// a nested compound, not a nested variable, is ever delayed)
		zip.GetStruct{Functor: 0, ArgAddr: zip.ArgVar(0)},
		zip.UnifyVariable{Var: zip.ArgVar(1)},
		// frame finalized: 1 param + 1 var for X
		zip.PushSourceFrame{Size: 2},
		// body: nat(X) — nat/1's own predicate symbol is interned here,
		// before nat/1's clause entry registers the same predicate
		// again (self-recursion resolves to the same pool index)
		zip.AllocateFrame{},
		zip.PutValue{Var: zip.PermVar(1), ArgAddr: zip.ArgVar(0)},
		zip.Call{Predicate: 1},
		zip.Proceed{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileMultiClauseChain(t *testing.T) {
	// member(X, [H|_]) :- ... simplified to two facts over a 1-ary functor
	// so the chain-linking logic is exercised without unrelated machinery:
	//   memb(a).
	//   memb(b).
	c1 := clause(comp("memb", atom("a")))
	c2 := clause(comp("memb", atom("b")))

	prog := symbols.NewProgram()
	if err := compiler.CompileProgram(prog, []*logic.Clause{c1, c2}); err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}

	pred, err := prog.Pool.Predicate(prog.Pool.PredicateFor(symbols.Indicator{Name: "memb", Arity: 1}))
	if err != nil {
		t.Fatalf("Predicate: %v", err)
	}
	first := pred.FirstClause
	if first == nil || first.Next == nil || first.Next.Next != nil {
		t.Fatalf("expected exactly two chained clauses, got %+v", pred)
	}

	entry0, err := prog.ReadCode(first.Entry)
	if err != nil {
		t.Fatalf("ReadCode(first.Entry): %v", err)
	}
	tryMeElse, ok := entry0.(zip.TryMeElse)
	if !ok {
		t.Fatalf("first clause entry = %#v, want zip.TryMeElse", entry0)
	}

	entry1, err := prog.ReadCode(first.Next.Entry)
	if err != nil {
		t.Fatalf("ReadCode(first.Next.Entry): %v", err)
	}
	if _, ok := entry1.(zip.TrustMe); !ok {
		t.Fatalf("second clause entry = %#v, want zip.TrustMe", entry1)
	}

	altClause, err := prog.Pool.Clause(tryMeElse.Alternative)
	if err != nil {
		t.Fatalf("Clause(tryMeElse.Alternative): %v", err)
	}
	if altClause != first.Next {
		t.Errorf("TryMeElse.Alternative does not resolve to the second clause")
	}
}

func TestCompileQuery(t *testing.T) {
	prog := symbols.NewProgram()
	// ?- add(z, X, Y).
	entry, vars, err := compiler.CompileQuery(prog, []logic.Term{
		comp("add", atom("z"), var_("X"), var_("Y")),
	})
	if err != nil {
		t.Fatalf("CompileQuery: %v", err)
	}
	if len(vars) != 2 || vars[0] != var_("X") || vars[1] != var_("Y") {
		t.Errorf("vars = %v, want [X Y]", vars)
	}

	entryInstr, err := prog.ReadCode(int(entry))
	if err != nil {
		t.Fatalf("ReadCode(entry): %v", err)
	}
	if _, ok := entryInstr.(zip.AllocateFrame); !ok {
		t.Fatalf("query entry = %#v, want zip.AllocateFrame", entryInstr)
	}

	last, err := prog.ReadCode(prog.CodeSize() - 1)
	if err != nil {
		t.Fatalf("ReadCode(last): %v", err)
	}
	if _, ok := last.(zip.Halt); !ok {
		t.Errorf("query's last instruction = %#v, want zip.Halt", last)
	}
}

func TestCompileProgramRejectsVarHead(t *testing.T) {
	c := clause(var_("X"))
	prog := symbols.NewProgram()
	if err := compiler.CompileProgram(prog, []*logic.Clause{c}); err == nil {
		t.Error("CompileProgram: want error for variable clause head, got nil")
	}
}

// TestCompileBodyWithDepthTwoSharedVarStruct compiles a body structure
// nested two levels deep, with a variable shared between the inner
// structure and the outer structure's sibling argument: this is the
// exact shape a bug once got wrong, by emitting the outer structure's
// put_struct before the inner structure's own cells had been fully
// built, interleaving the inner structure's cells into what was meant
// to be the outer structure's contiguous argument block.
func TestCompileBodyWithDepthTwoSharedVarStruct(t *testing.T) {
	// build(X) :- wrap(f(g(X), X)).
	c := clause(comp("build", var_("X")),
		comp("wrap", comp("f", comp("g", var_("X")), var_("X"))))
	_, got := compileOne(t, c)

	want := []zip.Instruction{
		// head: X takes its parameter slot directly (0)
		zip.PushSourceFrame{Size: 1},
		// body: g(X) is built first and in full — its own put_struct and
		// argument — before f's put_struct runs, even though f is the
		// outer structure and g is only f's first argument
		zip.AllocateFrame{},
		zip.PutStruct{Functor: 1, ArgAddr: zip.ArgVar(1)},
		zip.UnifyValue{Var: zip.PermVar(0)},
		// f's own put_struct, referencing g's finished cell by value and
		// X's permanent slot a second time, matching the original source
		// order
		zip.PutStruct{Functor: 0, ArgAddr: zip.ArgVar(0)},
		zip.UnifyValue{Var: zip.ArgVar(1)},
		zip.UnifyValue{Var: zip.PermVar(0)},
		zip.Call{Predicate: 2},
		zip.Proceed{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileBodyWithNestedStruct(t *testing.T) {
	// pair(X, Y) :- tag(f(X, Y)).
	c := clause(comp("pair", var_("X"), var_("Y")),
		comp("tag", comp("f", var_("X"), var_("Y"))))
	_, got := compileOne(t, c)

	want := []zip.Instruction{
		// head: X, Y take their parameter slots directly (0, 1)
		zip.PushSourceFrame{Size: 2},
		// body: f(X, Y) is tag/1's one argument directly — no ephemeral
		// scratch slot is needed since it's not nested inside another
		// structure, just built straight into the call's own arg 0
		zip.AllocateFrame{},
		zip.PutStruct{Functor: 0, ArgAddr: zip.ArgVar(0)},
		zip.UnifyValue{Var: zip.PermVar(0)},
		zip.UnifyValue{Var: zip.PermVar(1)},
		zip.Call{Predicate: 1},
		zip.Proceed{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}
