package symbols_test

import (
	"testing"

	"github.com/prologzip/ziprolog/symbols"
)

func TestInternFunctorIsIdempotent(t *testing.T) {
	pool := symbols.NewConstantPool()
	ind := symbols.Indicator{Name: "foo", Arity: 2}

	idx1 := pool.InternFunctor(ind)
	idx2 := pool.InternFunctor(ind)
	if idx1 != idx2 {
		t.Errorf("InternFunctor(%v) twice = %d, %d, want equal", ind, idx1, idx2)
	}
	if pool.Size() != 1 {
		t.Errorf("Size() = %d, want 1", pool.Size())
	}

	other := symbols.Indicator{Name: "foo", Arity: 3}
	idx3 := pool.InternFunctor(other)
	if idx3 == idx1 {
		t.Errorf("distinct indicators %v and %v interned to the same index", ind, other)
	}
}

func TestPredicateForIsIdempotent(t *testing.T) {
	pool := symbols.NewConstantPool()
	ind := symbols.Indicator{Name: "memb", Arity: 2}

	idx1 := pool.PredicateFor(ind)
	idx2 := pool.PredicateFor(ind)
	if idx1 != idx2 {
		t.Errorf("PredicateFor(%v) twice = %d, %d, want equal", ind, idx1, idx2)
	}

	pred, err := pool.Predicate(idx1)
	if err != nil {
		t.Fatalf("Predicate(%d): %v", idx1, err)
	}
	if pred.FirstClause != nil {
		t.Errorf("freshly created predicate has FirstClause = %v, want nil", pred.FirstClause)
	}
}

func TestAddClauseChainsAlternatives(t *testing.T) {
	pool := symbols.NewConstantPool()
	ind := symbols.Indicator{Name: "color", Arity: 1}

	c0 := &symbols.ClauseSymbol{Entry: 0, NumParams: 1}
	c1 := &symbols.ClauseSymbol{Entry: 4, NumParams: 1}
	c2 := &symbols.ClauseSymbol{Entry: 8, NumParams: 1}

	idx0 := pool.AddClause(ind, c0)
	idx1 := pool.AddClause(ind, c1)
	idx2 := pool.AddClause(ind, c2)
	if idx0 == idx1 || idx1 == idx2 {
		t.Fatalf("AddClause returned colliding pool indices: %d, %d, %d", idx0, idx1, idx2)
	}

	predIdx := pool.PredicateFor(ind)
	pred, err := pool.Predicate(predIdx)
	if err != nil {
		t.Fatalf("Predicate(%d): %v", predIdx, err)
	}
	if pred.FirstClause != c0 {
		t.Fatalf("FirstClause = %v, want the first clause added", pred.FirstClause)
	}
	if pred.FirstClause.Next != c1 || pred.FirstClause.Next.Next != c2 {
		t.Fatalf("clause chain not in insertion order: %v -> %v -> %v",
			pred.FirstClause, pred.FirstClause.Next, pred.FirstClause.Next.Next)
	}
	if c2.Next != nil {
		t.Errorf("last clause in the chain has a Next alternative, want nil")
	}

	got, err := pool.Clause(idx1)
	if err != nil {
		t.Fatalf("Clause(%d): %v", idx1, err)
	}
	if got != c1 {
		t.Errorf("Clause(%d) = %v, want the second clause added", idx1, got)
	}
}

func TestConstantMiscastErrors(t *testing.T) {
	pool := symbols.NewConstantPool()
	idx := pool.InternFunctor(symbols.Indicator{Name: "foo", Arity: 0})

	if _, err := pool.Predicate(idx); err == nil {
		t.Error("Predicate() on a functor entry: got nil error, want a miscast error")
	}
	if _, err := pool.Clause(idx); err == nil {
		t.Error("Clause() on a functor entry: got nil error, want a miscast error")
	}
	if _, err := pool.Constant(pool.Size()); err == nil {
		t.Error("Constant() past the end of the pool: got nil error, want out-of-bounds")
	}
}

func TestTruncateUnlinksInterningEntries(t *testing.T) {
	pool := symbols.NewConstantPool()
	keepInd := symbols.Indicator{Name: "keep", Arity: 0}
	dropInd := symbols.Indicator{Name: "drop", Arity: 0}
	dropPred := symbols.Indicator{Name: "dropped_pred", Arity: 1}

	keepIdx := pool.InternFunctor(keepInd)
	pool.InternFunctor(dropInd)
	pool.PredicateFor(dropPred)

	pool.Truncate(keepIdx + 1)

	if pool.Size() != keepIdx+1 {
		t.Fatalf("Size() after Truncate = %d, want %d", pool.Size(), keepIdx+1)
	}
	if got := pool.InternFunctor(keepInd); got != keepIdx {
		t.Errorf("InternFunctor(%v) after truncate = %d, want the original index %d", keepInd, got, keepIdx)
	}
	// dropInd and dropPred's interning entries must be gone, so reinterning
	// them allocates fresh pool entries rather than resolving to indices
	// that Truncate just discarded.
	if got := pool.InternFunctor(dropInd); got < keepIdx+1 {
		t.Errorf("InternFunctor(%v) after truncate = %d, want a fresh index >= %d", dropInd, got, keepIdx+1)
	}
	if got := pool.PredicateFor(dropPred); got < keepIdx+1 {
		t.Errorf("PredicateFor(%v) after truncate = %d, want a fresh index >= %d", dropPred, got, keepIdx+1)
	}
}

func TestProgramAppendAndReadCode(t *testing.T) {
	prog := symbols.NewProgram()
	if prog.CodeSize() != 0 {
		t.Fatalf("CodeSize() on a fresh program = %d, want 0", prog.CodeSize())
	}

	addr := prog.AppendCode("first")
	if addr != 0 {
		t.Errorf("AppendCode's first address = %d, want 0", addr)
	}
	prog.AppendCode("second")

	got, err := prog.ReadCode(1)
	if err != nil {
		t.Fatalf("ReadCode(1): %v", err)
	}
	if got != "second" {
		t.Errorf("ReadCode(1) = %v, want %q", got, "second")
	}

	if _, err := prog.ReadCode(prog.CodeSize()); err == nil {
		t.Error("ReadCode past the end of code memory: got nil error, want out-of-bounds")
	}
}

func TestMementoRestoresProgramAndPool(t *testing.T) {
	prog := symbols.NewProgram()
	prog.AppendCode("base instruction")
	baseFunctor := prog.Pool.InternFunctor(symbols.Indicator{Name: "base", Arity: 0})

	mem := prog.CreateMemento()

	prog.AppendCode("query instruction 1")
	prog.AppendCode("query instruction 2")
	prog.Pool.InternFunctor(symbols.Indicator{Name: "query_only", Arity: 0})

	if prog.CodeSize() != 3 {
		t.Fatalf("CodeSize() before restore = %d, want 3", prog.CodeSize())
	}

	prog.RestoreMemento(mem)

	if prog.CodeSize() != 1 {
		t.Errorf("CodeSize() after restore = %d, want 1", prog.CodeSize())
	}
	if prog.Pool.Size() != 1 {
		t.Errorf("Pool.Size() after restore = %d, want 1", prog.Pool.Size())
	}
	if got := prog.Pool.InternFunctor(symbols.Indicator{Name: "base", Arity: 0}); got != baseFunctor {
		t.Errorf("InternFunctor(base/0) after restore = %d, want the original index %d", got, baseFunctor)
	}
}
