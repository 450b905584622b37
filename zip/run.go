package zip

import "github.com/prologzip/ziprolog/errors"

// IterLimit caps how many instructions Run will execute before giving up,
// guarding against a runaway query (e.g. a predicate that loops without
// ever calling Proceed or Fail). Zero means Run supplies a generous
// default.
const defaultIterLimit = 1 << 24

// Run drives the fetch-decode-execute loop (spec.md 4.6) starting from the
// current PC until the query either succeeds (its synthetic entry point
// reaches Halt, leaving its own frame's variable slots intact and
// readable via Machine.Reify) or exhausts its choice points. On success
// it returns true, nil; on exhaustion it returns false, a
// *BacktrackExhaustedError. Any other returned error is fatal. varsOut,
// which must start empty, accumulates every cell that backtracking
// reset to unbound during this call, across every intermediate failed
// clause attempt as well as the final one, in the order they occurred.
func (m *Machine) Run(varsOut *[]Addr) (bool, error) {
	limit := m.IterLimit
	if limit == 0 {
		limit = defaultIterLimit
	}
	f := m.debugInit()
	defer func() {
		if f != nil {
			f.Close()
		}
	}()
	for i := 0; i < limit; i++ {
		instr, err := m.Program.ReadCode(int(m.PC))
		if err != nil {
			return false, err
		}
		zi, ok := instr.(Instruction)
		if !ok {
			return false, errors.New("zip: code memory entry at %d is not a recognized instruction (%T)", m.PC, instr)
		}
		if _, ok := zi.(Halt); ok {
			return true, nil
		}
		m.debugWrite(f, i, zi)
		next, done, err := m.execute(zi, varsOut)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
		m.PC = next
	}
	return false, &IterLimitError{Limit: limit}
}

// execute runs a single instruction and reports the next code address to
// resume at, plus whether the top-level query has now succeeded. Ordinary
// unification or call failures are resolved internally via backtrack and
// never surface as the returned error; a *BacktrackExhaustedError from
// backtrack does.
func (m *Machine) execute(instr Instruction, varsOut *[]Addr) (CodeAddr, bool, error) {
	switch instr := instr.(type) {

	case AllocateFrame:
		m.pushTargetFrame()
		return m.PC + 1, false, nil

	case PutVariable:
		varAddr := instr.Var.resolve(m)
		if err := m.growLocalTo(varAddr); err != nil {
			return 0, false, err
		}
		if err := m.writeWord(varAddr, Ref(varAddr)); err != nil {
			return 0, false, err
		}
		if err := m.setVar(instr.ArgAddr, Ref(varAddr)); err != nil {
			return 0, false, err
		}
		return m.PC + 1, false, nil

	case PutValue:
		w, err := m.getVar(instr.Var)
		if err != nil {
			return 0, false, err
		}
		if err := m.setVar(instr.ArgAddr, w); err != nil {
			return 0, false, err
		}
		return m.PC + 1, false, nil

	case PutConstant:
		if err := m.setVar(instr.ArgAddr, Con(instr.Const)); err != nil {
			return 0, false, err
		}
		return m.PC + 1, false, nil

	case PutStruct:
		funAddr, err := m.pushGlobal(Fun(instr.Functor))
		if err != nil {
			return 0, false, err
		}
		if err := m.setVar(instr.ArgAddr, Str(funAddr)); err != nil {
			return 0, false, err
		}
		m.Mode = CopyMode
		m.Compound = funAddr
		m.ArgIndex = 0
		return m.PC + 1, false, nil

	case GetVariable:
		w, err := m.getVar(instr.ArgAddr)
		if err != nil {
			return 0, false, err
		}
		if err := m.setVar(instr.Var, w); err != nil {
			return 0, false, err
		}
		return m.PC + 1, false, nil

	case GetValue:
		ok, err := m.unifyAddrs(instr.Var.resolve(m), instr.ArgAddr.resolve(m))
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return m.backtrackOrFail(varsOut)
		}
		return m.PC + 1, false, nil

	case GetConstant:
		ok, err := m.unifyConstant(instr.ArgAddr.resolve(m), Con(instr.Const))
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return m.backtrackOrFail(varsOut)
		}
		return m.PC + 1, false, nil

	case GetStruct:
		if err := m.matchStruct(instr.ArgAddr.resolve(m), instr.Functor); err != nil {
			if _, ok := err.(*UnifyError); ok {
				return m.backtrackOrFail(varsOut)
			}
			return 0, false, err
		}
		return m.PC + 1, false, nil

	case SetVariable:
		addr, err := m.pushGlobal(Word{})
		if err != nil {
			return 0, false, err
		}
		if err := m.writeWord(addr, Ref(addr)); err != nil {
			return 0, false, err
		}
		if err := m.setVar(instr.Var, Ref(addr)); err != nil {
			return 0, false, err
		}
		m.ArgIndex++
		return m.PC + 1, false, nil

	case SetValue:
		w, err := m.getVar(instr.Var)
		if err != nil {
			return 0, false, err
		}
		if _, err := m.pushGlobal(w); err != nil {
			return 0, false, err
		}
		m.ArgIndex++
		return m.PC + 1, false, nil

	case SetConstant:
		if _, err := m.pushGlobal(Con(instr.Const)); err != nil {
			return 0, false, err
		}
		m.ArgIndex++
		return m.PC + 1, false, nil

	case SetVoid:
		for k := 0; k < instr.N; k++ {
			addr := m.gt()
			if _, err := m.pushGlobal(Ref(addr)); err != nil {
				return 0, false, err
			}
		}
		m.ArgIndex += instr.N
		return m.PC + 1, false, nil

	case UnifyVariable:
		if m.Mode == CopyMode {
			return m.execute(SetVariable{instr.Var}, varsOut)
		}
		argAddr := m.Compound + 1 + Addr(m.ArgIndex)
		w, err := m.readWord(argAddr)
		if err != nil {
			return 0, false, err
		}
		if err := m.setVar(instr.Var, w); err != nil {
			return 0, false, err
		}
		m.ArgIndex++
		return m.PC + 1, false, nil

	case UnifyValue:
		if m.Mode == CopyMode {
			return m.execute(SetValue{instr.Var}, varsOut)
		}
		argAddr := m.Compound + 1 + Addr(m.ArgIndex)
		ok, err := m.unifyAddrs(instr.Var.resolve(m), argAddr)
		if err != nil {
			return 0, false, err
		}
		m.ArgIndex++
		if !ok {
			return m.backtrackOrFail(varsOut)
		}
		return m.PC + 1, false, nil

	case UnifyConstant:
		if m.Mode == CopyMode {
			return m.execute(SetConstant{instr.Const}, varsOut)
		}
		argAddr := m.Compound + 1 + Addr(m.ArgIndex)
		ok, err := m.unifyConstant(argAddr, Con(instr.Const))
		if err != nil {
			return 0, false, err
		}
		m.ArgIndex++
		if !ok {
			return m.backtrackOrFail(varsOut)
		}
		return m.PC + 1, false, nil

	case UnifyVoid:
		if m.Mode == CopyMode {
			return m.execute(SetVoid{instr.N}, varsOut)
		}
		m.ArgIndex += instr.N
		return m.PC + 1, false, nil

	case Call:
		pred, err := m.Program.Pool.Predicate(instr.Predicate)
		if err != nil {
			return 0, false, err
		}
		if pred.FirstClause == nil {
			return m.backtrackOrFail(varsOut)
		}
		m.jump(CodeAddr(pred.FirstClause.Entry))
		return m.PC, false, nil

	case PushSourceFrame:
		if err := m.pushSourceFrame(instr.Size); err != nil {
			return 0, false, err
		}
		return m.PC + 1, false, nil

	case Proceed:
		done, err := m.popSourceFrame()
		if err != nil {
			return 0, false, err
		}
		if done {
			return m.PC, true, nil
		}
		return m.PC, false, nil

	case TryMeElse:
		clause, err := m.Program.Pool.Clause(instr.Alternative)
		if err != nil {
			return 0, false, err
		}
		m.pushChoicePoint(clause)
		return m.PC + 1, false, nil

	case RetryMeElse:
		return m.PC + 1, false, nil

	case TrustMe:
		return m.PC + 1, false, nil

	case Fail:
		return m.backtrackOrFail(varsOut)

	case Halt:
		return m.PC, false, nil

	default:
		return 0, false, errors.New("zip: unhandled instruction type %T", instr)
	}
}

// NextSolution resumes a machine that has already reported one solution
// (a prior Run returned true, nil) by forcing a backtrack into the
// latest choice point and running from there, exactly as if the solution
// just reported had failed. It reports false, *BacktrackExhaustedError
// once no choice points remain. varsOut, which must start empty,
// collects every cell reset to unbound by this call, in the order they
// were reset —
// both the ones undone by the initial forced backtrack and any undone
// by further backtracking before the next solution (or exhaustion) is
// reached.
func (m *Machine) NextSolution(varsOut *[]Addr) (bool, error) {
	if len(*varsOut) != 0 {
		return false, &PreconditionError{Msg: "NextSolution: varsOut must be empty"}
	}
	addr, err := m.backtrack(varsOut)
	if err != nil {
		return false, err
	}
	m.PC = addr
	var rest []Addr
	ok, err := m.Run(&rest)
	*varsOut = append(*varsOut, rest...)
	return ok, err
}

// backtrackOrFail invokes backtrack and translates its result into
// execute's (next, done, err) shape.
func (m *Machine) backtrackOrFail(varsOut *[]Addr) (CodeAddr, bool, error) {
	var undone []Addr
	addr, err := m.backtrack(&undone)
	*varsOut = append(*varsOut, undone...)
	if err != nil {
		return 0, false, err
	}
	return addr, false, nil
}
