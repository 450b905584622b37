package symbols

// Memento is an opaque snapshot of a Program's code segment length and
// constant pool size, taken before compiling a query so the query's
// bytecode and interned symbols can be rolled back afterwards without
// disturbing the program loaded before it.
type Memento struct {
	codeSize int
	poolSize int
}

// CreateMemento snapshots p's current sizes.
func (p *Program) CreateMemento() Memento {
	return Memento{codeSize: len(p.Code), poolSize: p.Pool.Size()}
}

// RestoreMemento truncates code memory and the constant pool back to the
// sizes recorded in m, discarding anything appended since.
func (p *Program) RestoreMemento(m Memento) {
	if m.codeSize < len(p.Code) {
		p.Code = p.Code[:m.codeSize]
	}
	p.Pool.Truncate(m.poolSize)
}
