package zip

import "github.com/prologzip/ziprolog/errors"

// scratchPair is a single pending pair of addresses awaiting structural
// comparison, as pushed to the scratchpad by unifiable when it walks into
// a pair of Str cells (spec.md 4.3 step 5). This is the scratchpad's only
// consumer — see SPEC_FULL.md's resolution of the "scratchpad's dual
// role" open question.
type scratchPair struct {
	A1, A2 Addr
}

// deref walks the Ref chain starting at addr until it finds either a
// non-Ref word or a self-referential (unbound) Ref, and returns the
// address and word it stopped at. Binding never introduces cycles (see
// bind below), so this always terminates.
func (m *Machine) deref(addr Addr) (Addr, Word, error) {
	for {
		w, err := m.readWord(addr)
		if err != nil {
			return addr, w, err
		}
		if w.Tag != RefTag || Addr(w.Payload) == addr {
			return addr, w, nil
		}
		addr = Addr(w.Payload)
	}
}

// bind writes a Ref word at whichever of a1, a2 is unbound so it points
// at the other, choosing direction so that references only ever point
// from younger cells to older ones (spec.md 4.3): if both are unbound,
// the higher (younger) address is bound to the lower (older) one. Global
// addresses are always older than local addresses and, within a region,
// lower addresses are older, so a plain integer comparison implements the
// region-aware ordering directly (see word.go). At least one of a1, a2
// must already be an unbound Ref; bind trails whichever address it wrote.
func (m *Machine) bind(a1, a2 Addr) (Addr, error) {
	w1, err := m.readWord(a1)
	if err != nil {
		return NoAddr, err
	}
	w2, err := m.readWord(a2)
	if err != nil {
		return NoAddr, err
	}
	isRef1 := w1.Tag == RefTag
	isRef2 := w2.Tag == RefTag

	var bound Addr
	switch {
	case isRef1 && isRef2:
		if a1 > a2 {
			bound = a1
		} else {
			bound = a2
		}
	case isRef1:
		bound = a1
	case isRef2:
		bound = a2
	default:
		return NoAddr, &PreconditionError{Msg: "bind: neither address holds an unbound reference"}
	}
	var target Addr
	if bound == a1 {
		target = a2
	} else {
		target = a1
	}
	if err := m.writeWord(bound, Ref(target)); err != nil {
		return NoAddr, err
	}
	m.trail(bound)
	return bound, nil
}

// trail appends addr to the trail iff a choice point currently exists and
// either it lies on the local stack, or it lies on the global stack
// strictly below the choice point's saved global-stack top (spec.md 4.3).
// Bindings that fail this test vanish naturally when the stacks are
// truncated on backtrack, so trailing them would waste space.
func (m *Machine) trail(addr Addr) error {
	if m.CP == NoAddr {
		return nil
	}
	cp, err := m.header(m.CP)
	if err != nil {
		return err
	}
	conditional := addr.IsLocal() || (addr.IsGlobal() && addr < cp.savedGT)
	if !conditional {
		return nil
	}
	if len(m.Trail) >= m.Limits.TrailCap {
		return &ResourceExhaustedError{Region: "trail", Capacity: m.Limits.TrailCap}
	}
	m.Trail = append(m.Trail, addr)
	return nil
}

// unifyAddrs unifies a1 and a2, discarding the list of addresses bound
// in the process: forward bindings made during a successful unification
// aren't reported anywhere (only backtrack's unbindings are, via
// varsOut in Run/backtrack — a distinct concept). It does not itself
// trigger backtracking; the caller does that when ok is false.
func (m *Machine) unifyAddrs(a1, a2 Addr) (bool, error) {
	_, ok, err := m.unifiable(a1, a2)
	return ok, err
}

// unifyConstant unifies the cell at addr against the literal word con
// (a Con cell materialized from an instruction operand, never itself
// stored at an address of its own): if addr derefs to an unbound ref,
// con is written there directly and trailed; if addr derefs to an
// equal-valued Con, it succeeds without writing; anything else fails.
func (m *Machine) unifyConstant(addr Addr, con Word) (bool, error) {
	da, w, err := m.deref(addr)
	if err != nil {
		return false, err
	}
	if w.Tag == RefTag {
		if err := m.writeWord(da, con); err != nil {
			return false, err
		}
		if err := m.trail(da); err != nil {
			return false, err
		}
		return true, nil
	}
	return w.Tag == ConTag && w.Payload == con.Payload, nil
}

// matchStruct implements the GetStruct opcode's COPY/MATCH duality
// directly (spec.md 4.2): if addr derefs to an unbound ref, a fresh
// structure with the given functor is built on the global stack and
// bound there, and Mode is set to CopyMode so the Set/Unify
// instructions that follow build its arguments; if addr derefs to a
// structure with a matching functor, Mode is set to MatchMode so they
// instead read and unify against its existing arguments. Any other
// outcome returns a *UnifyError, the ordinary "this clause doesn't
// apply" signal.
func (m *Machine) matchStruct(addr Addr, functorIdx int) error {
	da, w, err := m.deref(addr)
	if err != nil {
		return err
	}
	switch w.Tag {
	case RefTag:
		funAddr, err := m.pushGlobal(Fun(functorIdx))
		if err != nil {
			return err
		}
		if err := m.writeWord(da, Str(funAddr)); err != nil {
			return err
		}
		if err := m.trail(da); err != nil {
			return err
		}
		m.Mode = CopyMode
		m.Compound = funAddr
		m.ArgIndex = 0
		return nil
	case StrTag:
		fun, err := m.readWord(Addr(w.Payload))
		if err != nil {
			return err
		}
		if fun.Tag != FunTag {
			return errors.New("matchStruct: Str cell at %v not followed by Fun", w.Payload)
		}
		if fun.Payload != functorIdx {
			return &UnifyError{C1: fun.Payload, C2: functorIdx}
		}
		m.Mode = MatchMode
		m.Compound = Addr(w.Payload)
		m.ArgIndex = 0
		return nil
	default:
		return &UnifyError{C1: w, C2: functorIdx}
	}
}

// unifiable performs full structural unification of a1 and a2 using an
// explicit work list on the scratchpad (spec.md 4.3): dereference both
// sides; if either is an unbound ref, bind; if both are atomic constants,
// compare their constant-pool index; if both are structures, compare
// functors and push their argument pairs; otherwise fail. Processes
// argument pairs in left-to-right index order (spec.md section 5).
func (m *Machine) unifiable(a1, a2 Addr) (bound []Addr, ok bool, err error) {
	m.Scratchpad = m.Scratchpad[:0]
	m.Scratchpad = append(m.Scratchpad, scratchPair{a1, a2})
	for len(m.Scratchpad) > 0 {
		n := len(m.Scratchpad)
		pair := m.Scratchpad[n-1]
		m.Scratchpad = m.Scratchpad[:n-1]

		da1, w1, err := m.deref(pair.A1)
		if err != nil {
			return nil, false, err
		}
		da2, w2, err := m.deref(pair.A2)
		if err != nil {
			return nil, false, err
		}
		if da1 == da2 {
			continue
		}
		if w1.Tag == RefTag || w2.Tag == RefTag {
			addr, err := m.bind(da1, da2)
			if err != nil {
				return nil, false, err
			}
			bound = append(bound, addr)
			continue
		}
		switch w1.Tag {
		case ConTag:
			if w2.Tag != ConTag || w1.Payload != w2.Payload {
				return nil, false, nil
			}
		case StrTag:
			if w2.Tag != StrTag {
				return nil, false, nil
			}
			fun1, err := m.readWord(Addr(w1.Payload))
			if err != nil {
				return nil, false, err
			}
			fun2, err := m.readWord(Addr(w2.Payload))
			if err != nil {
				return nil, false, err
			}
			if fun1.Tag != FunTag || fun2.Tag != FunTag {
				return nil, false, errors.New("unifiable: Str cell at %v/%v not followed by Fun", w1.Payload, w2.Payload)
			}
			if fun1.Payload != fun2.Payload {
				return nil, false, nil
			}
			functor, err := m.Program.Pool.Functor(fun1.Payload)
			if err != nil {
				return nil, false, err
			}
			base1, base2 := Addr(w1.Payload)+1, Addr(w2.Payload)+1
			// Pushed in reverse so the stack pops them left to right.
			for i := functor.Arity - 1; i >= 0; i-- {
				m.Scratchpad = append(m.Scratchpad, scratchPair{base1 + Addr(i), base2 + Addr(i)})
			}
		default:
			return nil, false, errors.New("unifiable: unexpected tag %v at dereferenced address", w1.Tag)
		}
	}
	return bound, true, nil
}
