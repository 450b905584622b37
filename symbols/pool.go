package symbols

import "github.com/prologzip/ziprolog/errors"

// ConstantPool is the symbol table shared by the program and its queries:
// functors, predicates, and clauses. It grows by append only, mirroring
// code memory's own append-only growth (a query recompile only ever
// appends new entries; a memento rolls the length back, not any individual
// entry's contents). AddClause is the one operation that updates existing
// entries: it links the new clause into its predicate's FirstClause/Next
// chain.
type ConstantPool struct {
	symbols []Symbol
	// index maps an interned functor's f/n indicator to its pool index,
	// so the compiler can intern by value instead of allocating a fresh
	// FunctorSymbol every time the same functor is seen again.
	index map[Indicator]int
	// predicates maps a functor indicator to its predicate's pool
	// index, so the compiler can find (or create) the predicate to
	// append a new clause alternative to.
	predicates map[Indicator]int
}

// Indicator is a name/arity pair, used to look up interned functors and
// predicates without allocating a FunctorSymbol just to compare it.
type Indicator struct {
	Name  string
	Arity int
}

// NewConstantPool returns an empty constant pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		index:      make(map[Indicator]int),
		predicates: make(map[Indicator]int),
	}
}

// Size returns the number of entries currently in the pool.
func (p *ConstantPool) Size() int { return len(p.symbols) }

// append adds sym to the pool and returns its index.
func (p *ConstantPool) append(sym Symbol) int {
	p.symbols = append(p.symbols, sym)
	return len(p.symbols) - 1
}

// Constant returns the symbol at idx, or an out-of-bounds error.
func (p *ConstantPool) Constant(idx int) (Symbol, error) {
	if idx < 0 || idx >= len(p.symbols) {
		return nil, errors.New("constant pool index out of bounds: %d", idx)
	}
	return p.symbols[idx], nil
}

// Functor returns the FunctorSymbol at idx, or a miscast error if the
// entry there isn't a functor.
func (p *ConstantPool) Functor(idx int) (*FunctorSymbol, error) {
	sym, err := p.Constant(idx)
	if err != nil {
		return nil, err
	}
	f, ok := sym.(*FunctorSymbol)
	if !ok {
		return nil, errors.New("constant pool entry %d is not a functor: %v", idx, sym)
	}
	return f, nil
}

// Predicate returns the PredicateSymbol at idx, or a miscast error if the
// entry there isn't a predicate.
func (p *ConstantPool) Predicate(idx int) (*PredicateSymbol, error) {
	sym, err := p.Constant(idx)
	if err != nil {
		return nil, err
	}
	pred, ok := sym.(*PredicateSymbol)
	if !ok {
		return nil, errors.New("constant pool entry %d is not a predicate: %v", idx, sym)
	}
	return pred, nil
}

// Clause returns the ClauseSymbol at idx, or a miscast error if the entry
// there isn't a clause.
func (p *ConstantPool) Clause(idx int) (*ClauseSymbol, error) {
	sym, err := p.Constant(idx)
	if err != nil {
		return nil, err
	}
	c, ok := sym.(*ClauseSymbol)
	if !ok {
		return nil, errors.New("constant pool entry %d is not a clause: %v", idx, sym)
	}
	return c, nil
}

// InternFunctor returns the pool index of the interned FunctorSymbol for
// ind, creating it on first use.
func (p *ConstantPool) InternFunctor(ind Indicator) int {
	if idx, ok := p.index[ind]; ok {
		return idx
	}
	idx := p.append(&FunctorSymbol{Name: ind.Name, Arity: ind.Arity})
	p.index[ind] = idx
	return idx
}

// PredicateFor returns the pool index of the PredicateSymbol for ind,
// creating an empty one (no clauses yet) on first use.
func (p *ConstantPool) PredicateFor(ind Indicator) int {
	if idx, ok := p.predicates[ind]; ok {
		return idx
	}
	idx := p.append(&PredicateSymbol{Functor: FunctorSymbol{Name: ind.Name, Arity: ind.Arity}})
	p.predicates[ind] = idx
	return idx
}

// AddClause appends clause as a new alternative for the predicate ind,
// after any alternatives already registered, preserving source order
// (spec.md section 5: the first alternative registered is the first
// tried). Returns the clause's own pool index.
func (p *ConstantPool) AddClause(ind Indicator, clause *ClauseSymbol) int {
	predIdx := p.PredicateFor(ind)
	pred := p.symbols[predIdx].(*PredicateSymbol)
	clauseIdx := p.append(clause)
	if pred.FirstClause == nil {
		pred.FirstClause = clause
		return clauseIdx
	}
	last := pred.FirstClause
	for last.Next != nil {
		last = last.Next
	}
	last.Next = clause
	return clauseIdx
}

// Truncate discards every symbol at or beyond size, and removes any
// interning/predicate index entries that pointed at a discarded symbol.
// Used to roll a memento back (see memento.go). Predicate FirstClause/Next
// chains are left as they are.
func (p *ConstantPool) Truncate(size int) {
	if size >= len(p.symbols) {
		return
	}
	for ind, idx := range p.index {
		if idx >= size {
			delete(p.index, ind)
		}
	}
	for ind, idx := range p.predicates {
		if idx >= size {
			delete(p.predicates, ind)
		}
	}
	// Named predicates never gain new clause alternatives after a
	// memento is taken (query compilation adds no clause symbols), so no
	// predicate's FirstClause/
	// Next chain can reach past size and no chain surgery is needed
	// here.
	p.symbols = p.symbols[:size]
}
