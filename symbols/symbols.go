// Package symbols implements the bytecode provider the zip machine's core
// consumes: code memory, the constant pool, and the symbol kinds stored in
// it (functors, predicates, clauses). The core only reads these; building
// them (and resolving scope, interning functors, appending clause
// alternatives) is the compiler's job.
package symbols

import "fmt"

// Symbol is a closed variant over the kinds of value the constant pool
// stores. Re-architected from the original's inheritance hierarchy plus
// visitor into a tagged sum type: the core only ever pattern-matches the
// handful of variants it actually consumes.
type Symbol interface {
	fmt.Stringer
	isSymbol()
}

// FunctorSymbol names a functor: its name and arity. Interned by the
// compiler, so pointer-equality implies value-equality.
type FunctorSymbol struct {
	Name  string
	Arity int
}

func (s *FunctorSymbol) isSymbol() {}
func (s *FunctorSymbol) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

// PredicateSymbol is a named, fixed-arity procedure: it owns an ordered
// chain of clause alternatives, the first of which is tried first.
type PredicateSymbol struct {
	Functor     FunctorSymbol
	FirstClause *ClauseSymbol
}

func (s *PredicateSymbol) isSymbol() {}
func (s *PredicateSymbol) String() string {
	return fmt.Sprintf("predicate %v", s.Functor)
}

// ClauseSymbol is one clause alternative for a predicate: a fact or a
// rule. Clauses never point back to their predicate or to earlier
// alternatives — the chain is forward-only, so backtracking never needs
// to search it, only follow Next.
type ClauseSymbol struct {
	// Entry is the code-memory address of the clause's first
	// instruction.
	Entry int
	// NumParams is the number of head arguments; they occupy the first
	// slots of the clause's frame.
	NumParams int
	// NumVars is the clause's whole frame size: its parameters plus every
	// other variable of the clause.
	NumVars int
	// Next is the following alternative for the same predicate, or nil
	// if this is the last one.
	Next *ClauseSymbol
}

func (s *ClauseSymbol) isSymbol() {}
func (s *ClauseSymbol) String() string {
	return fmt.Sprintf("clause@%d(params=%d, vars=%d)", s.Entry, s.NumParams, s.NumVars)
}
