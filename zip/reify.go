package zip

import (
	"strconv"

	"github.com/prologzip/ziprolog/errors"
	"github.com/prologzip/ziprolog/logic"
)

// QueryVarAddr returns the address of the i-th persistent slot of the
// machine's current source frame. Once a query has run to Halt, that
// frame is the query's own (see compiler.CompileQuery's doc comment),
// so this resolves exactly the address PermVar(i) would from inside the
// query's own bytecode — the one public way for a caller outside this
// package to name a query variable's slot and Reify it.
func (m *Machine) QueryVarAddr(i int) Addr {
	return m.SF + Addr(i)
}

// Reify reads the value stored at addr back out as a logic.Term: it
// follows every Ref chain, and descends into every Str cell's arguments
// recursively. An unbound variable reifies to a fresh logic.Var named
// after its own address, so two different unresolved variables in the
// same solution come back as two different names rather than colliding.
//
// Grounded on the teacher's wam/adapters.go (fromCell/fromStruct/
// fromConstant), translated from its Ref/Struct/Constant cell types to
// this machine's Ref/Str/Fun/Con tagged words.
func (m *Machine) Reify(addr Addr) (logic.Term, error) {
	addr, w, err := m.deref(addr)
	if err != nil {
		return nil, err
	}
	switch w.Tag {
	case RefTag:
		return logic.NewVar("G").WithSuffix(int(addr)), nil
	case ConTag:
		return m.reifyConstant(w.Payload)
	case StrTag:
		return m.reifyStruct(Addr(w.Payload))
	default:
		return nil, errors.New("zip: Reify: unexpected tag %v at %v", w.Tag, addr)
	}
}

// reifyConstant recovers the atom or integer a CON word's pool index was
// interned from. Integers intern under arity -1 (see compiler's
// internConstant) precisely so this can tell them apart from a
// same-spelled quoted atom.
func (m *Machine) reifyConstant(idx int) (logic.Term, error) {
	sym, err := m.Program.Pool.Functor(idx)
	if err != nil {
		return nil, err
	}
	if sym.Arity == -1 {
		n, err := strconv.Atoi(sym.Name)
		if err != nil {
			return nil, err
		}
		return logic.Int{Value: n}, nil
	}
	return logic.Atom{Name: sym.Name}, nil
}

// reifyStruct reads the Fun word at funAddr and the Arity argument words
// that follow it, recursively reifying each.
func (m *Machine) reifyStruct(funAddr Addr) (logic.Term, error) {
	w, err := m.readWord(funAddr)
	if err != nil {
		return nil, err
	}
	if w.Tag != FunTag {
		return nil, errors.New("zip: Reify: expected FUN at %v, got %v", funAddr, w.Tag)
	}
	sym, err := m.Program.Pool.Functor(w.Payload)
	if err != nil {
		return nil, err
	}
	args := make([]logic.Term, sym.Arity)
	for i := 0; i < sym.Arity; i++ {
		arg, err := m.Reify(funAddr + 1 + Addr(i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return logic.NewComp(sym.Name, args...), nil
}
