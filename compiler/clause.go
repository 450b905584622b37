package compiler

import (
	"strconv"

	"github.com/prologzip/ziprolog/errors"
	"github.com/prologzip/ziprolog/logic"
	"github.com/prologzip/ziprolog/symbols"
	"github.com/prologzip/ziprolog/zip"
)

// Every call in this machine gets a brand-new target frame at a fresh
// local-stack address (zip.AllocateFrame), unlike a classical WAM's
// single shared register file. That removes any register-clobbering
// risk, so a clause needs only one clause-wide slot numbering — not a
// register file plus a separate permanent-variable stack. The same slot
// is addressed as an ArgVar while the clause's own frame is still the
// target frame under construction (head matching), and as a PermVar once
// it has been promoted to the source frame (body execution): both name
// the identical cell, just at different points in the frame's lifetime.
//
// A direct top-level head argument's variable gets slot == its argument
// index for free — the parameter cell already holds the incoming value,
// so no instruction needs to copy it anywhere. Every other variable, and
// every nested head structure delayed for a second pass, gets the next
// free slot past the parameter range.
type clauseCompiler struct {
	pool *symbols.ConstantPool

	slot     map[logic.Var]int
	nextSlot int
	varOrder []logic.Var

	code    []zip.Instruction
	delayed []headDelayed

	err error
}

// headDelayed is a nested compound term found while matching a clause
// head, whose own matching is deferred to a second pass over the head —
// exactly as a teacher compiler defers nested structures behind a
// placeholder register, so that a variable occurring deeper inside one
// head argument can still be cross-referenced from another.
type headDelayed struct {
	term logic.Term
	addr zip.ArgVar
}

func newClauseCompiler(pool *symbols.ConstantPool, numParams int) *clauseCompiler {
	return &clauseCompiler{
		pool:     pool,
		slot:     make(map[logic.Var]int),
		nextSlot: numParams,
	}
}

func (cc *clauseCompiler) fail(msg string, args ...interface{}) {
	if cc.err == nil {
		cc.err = errors.New(msg, args...)
	}
}

func (cc *clauseCompiler) emit(instr zip.Instruction) { cc.code = append(cc.code, instr) }

func (cc *clauseCompiler) slotFor(x logic.Var) int {
	if s, ok := cc.slot[x]; ok {
		return s
	}
	s := cc.nextSlot
	cc.nextSlot++
	cc.slot[x] = s
	cc.varOrder = append(cc.varOrder, x)
	return s
}

// internConstant interns an atom or integer as a 0-arity functor in the
// constant pool (spec.md's CON tag: its payload is always a pool index
// for a 0-arity functor). Integers are interned under Arity -1 rather
// than 0 so that an integer and a same-spelled quoted atom — 3 and '3' —
// never collide on the same pool entry; reify.go undoes this tagging when
// reading a CON word back out as a logic.Term.
func (cc *clauseCompiler) internConstant(t logic.Term) int {
	switch a := t.(type) {
	case logic.Atom:
		return cc.pool.InternFunctor(symbols.Indicator{Name: a.Name, Arity: 0})
	case logic.Int:
		return cc.pool.InternFunctor(symbols.Indicator{Name: strconv.Itoa(a.Value), Arity: -1})
	default:
		cc.fail("compiler: not a constant: %v (%T)", t, t)
		return 0
	}
}

func toIndicator(ind logic.Indicator) symbols.Indicator {
	return symbols.Indicator{Name: ind.Name, Arity: ind.Arity}
}

// ---- head compilation (ARG/MATCH mode, ArgVar-addressed)

// compileHeadArg matches a top-level head argument against parameter
// slot argIdx. Only here can a variable's first occurrence coincide with
// its own parameter cell.
func (cc *clauseCompiler) compileHeadArg(term logic.Term, argIdx int) {
	addr := zip.ArgVar(argIdx)
	switch t := term.(type) {
	case logic.Atom, logic.Int:
		cc.emit(zip.GetConstant{Const: cc.internConstant(t), ArgAddr: addr})
	case logic.Var:
		cc.compileHeadTopVar(t, addr)
	case *logic.Comp:
		cc.compileHeadStruct(t, addr)
	default:
		cc.fail("compiler: unhandled head term type %T", t)
	}
}

func (cc *clauseCompiler) compileHeadTopVar(x logic.Var, addr zip.ArgVar) {
	if x == logic.AnonymousVar {
		return
	}
	if slot, ok := cc.slot[x]; ok {
		cc.emit(zip.GetValue{Var: zip.ArgVar(slot), ArgAddr: addr})
		return
	}
	cc.slot[x] = int(addr)
	cc.varOrder = append(cc.varOrder, x)
}

func (cc *clauseCompiler) compileHeadStruct(t *logic.Comp, addr zip.ArgVar) {
	functor := cc.pool.InternFunctor(toIndicator(t.Indicator()))
	cc.emit(zip.GetStruct{Functor: functor, ArgAddr: addr})
	for _, arg := range t.Args {
		cc.compileHeadUnifyArg(arg)
	}
}

// compileHeadUnifyArg matches one argument of a structure currently being
// read under GetStruct. Nested structures are delayed to a second pass,
// so a slot they allocate for themselves is reserved now (UnifyVariable
// always succeeds, whichever mode GetStruct ends up resolving to) but
// their own matching happens once every top-level argument has claimed
// its slot.
func (cc *clauseCompiler) compileHeadUnifyArg(arg logic.Term) {
	switch a := arg.(type) {
	case logic.Atom, logic.Int:
		cc.emit(zip.UnifyConstant{Const: cc.internConstant(a)})
	case logic.Var:
		cc.compileHeadUnifyVar(a)
	case *logic.Comp:
		slot := cc.nextSlot
		cc.nextSlot++
		cc.emit(zip.UnifyVariable{Var: zip.ArgVar(slot)})
		cc.delayed = append(cc.delayed, headDelayed{term: a, addr: zip.ArgVar(slot)})
	default:
		cc.fail("compiler: unhandled head argument type %T", a)
	}
}

func (cc *clauseCompiler) compileHeadUnifyVar(x logic.Var) {
	if x == logic.AnonymousVar {
		cc.emit(zip.UnifyVoid{N: 1})
		return
	}
	if slot, ok := cc.slot[x]; ok {
		cc.emit(zip.UnifyValue{Var: zip.ArgVar(slot)})
		return
	}
	cc.emit(zip.UnifyVariable{Var: zip.ArgVar(cc.slotFor(x))})
}

// drainDelayed compiles every nested head structure deferred by
// compileHeadUnifyArg, in the order they were found. Draining can itself
// delay further structures nested one level deeper, so this repeats until
// nothing is left — mirroring a teacher compiler's own delayed-argument
// loop.
func (cc *clauseCompiler) drainDelayed() {
	for len(cc.delayed) > 0 {
		buf := cc.delayed
		cc.delayed = nil
		for _, d := range buf {
			comp, ok := d.term.(*logic.Comp)
			if !ok {
				cc.fail("compiler: delayed head term is not a structure: %v (%T)", d.term, d.term)
				continue
			}
			cc.compileHeadStruct(comp, d.addr)
		}
	}
}

// ---- body compilation (PUT mode, PermVar for persistent vars)

// compileGoal compiles one body call: a fresh target frame, its arguments
// built with Put*/Unify*, then a call to the named predicate.
func (cc *clauseCompiler) compileGoal(g *logic.Comp) {
	cc.emit(zip.AllocateFrame{})
	tmp := len(g.Args)
	for i, arg := range g.Args {
		cc.compileBodyArg(arg, zip.ArgVar(i), &tmp)
	}
	predicate := cc.pool.PredicateFor(toIndicator(g.Indicator()))
	cc.emit(zip.Call{Predicate: predicate})
}

// compileBodyArg writes term into the callee's target frame at argAddr.
// tmp is a per-goal counter, starting at the goal's own arity, handing
// out ephemeral ArgVar scratch cells for nested structures: those cells
// live only in the callee's own fresh frame and are never addressed
// again once the call returns, so they need no clause-wide slot.
func (cc *clauseCompiler) compileBodyArg(term logic.Term, argAddr zip.ArgVar, tmp *int) {
	switch t := term.(type) {
	case logic.Atom, logic.Int:
		cc.emit(zip.PutConstant{Const: cc.internConstant(t), ArgAddr: argAddr})
	case logic.Var:
		cc.compileBodyVar(t, argAddr)
	case *logic.Comp:
		functor := cc.pool.InternFunctor(toIndicator(t.Indicator()))
		setInstrs := cc.compileBodySetArgs(t.Args, tmp)
		cc.emit(zip.PutStruct{Functor: functor, ArgAddr: argAddr})
		cc.code = append(cc.code, setInstrs...)
	default:
		cc.fail("compiler: unhandled body term type %T", t)
	}
}

func (cc *clauseCompiler) compileBodyVar(x logic.Var, argAddr zip.ArgVar) {
	if x == logic.AnonymousVar {
		cc.emit(zip.PutVariable{Var: argAddr, ArgAddr: argAddr})
		return
	}
	if slot, ok := cc.slot[x]; ok {
		cc.emit(zip.PutValue{Var: zip.PermVar(slot), ArgAddr: argAddr})
		return
	}
	cc.emit(zip.PutVariable{Var: zip.PermVar(cc.slotFor(x)), ArgAddr: argAddr})
}

// compileBodySetArgs returns the Unify* instructions for a structure's
// own arguments, one per arg, in their original positions. A nested
// structure argument is built in full before this call returns — its own
// put_struct and arguments are appended straight to cc.code — so by the
// time the caller emits this structure's own put_struct, every nested
// structure it references already sits on the global stack. Complex
// (non-var) arguments are built first, variables last: since a variable
// nested inside an earlier complex argument runs (and so claims its slot)
// before this structure's own code does, a top-level variable argument
// must be resolved after, so a repeat occurrence buried in a sibling
// isn't mistaken for the first (the same ordering a teacher compiler's
// setArgs enforces, for the same reason).
func (cc *clauseCompiler) compileBodySetArgs(args []logic.Term, tmp *int) []zip.Instruction {
	instrs := make([]zip.Instruction, len(args))
	var varIdxs []int
	for i, arg := range args {
		if _, ok := arg.(logic.Var); ok {
			varIdxs = append(varIdxs, i)
			continue
		}
		instrs[i] = cc.compileBodySetArg(arg, tmp)
	}
	for _, i := range varIdxs {
		instrs[i] = cc.compileBodySetArg(args[i], tmp)
	}
	return instrs
}

func (cc *clauseCompiler) compileBodySetArg(arg logic.Term, tmp *int) zip.Instruction {
	switch a := arg.(type) {
	case logic.Atom, logic.Int:
		return zip.UnifyConstant{Const: cc.internConstant(a)}
	case logic.Var:
		return cc.compileBodyUnifyVar(a)
	case *logic.Comp:
		addr := zip.ArgVar(*tmp)
		*tmp++
		cc.compileBodyArg(a, addr, tmp)
		return zip.UnifyValue{Var: addr}
	default:
		cc.fail("compiler: unhandled body argument type %T", a)
		return zip.UnifyVoid{N: 1}
	}
}

func (cc *clauseCompiler) compileBodyUnifyVar(x logic.Var) zip.Instruction {
	if x == logic.AnonymousVar {
		return zip.UnifyVoid{N: 1}
	}
	if slot, ok := cc.slot[x]; ok {
		return zip.UnifyValue{Var: zip.PermVar(slot)}
	}
	return zip.UnifyVariable{Var: zip.PermVar(cc.slotFor(x))}
}

// compiledClause is one clause's finished bytecode, ready to be prefixed
// with a try/retry/trust marker and appended to code memory once its
// sibling clauses (if any) are known (see compiler.go).
type compiledClause struct {
	instrs    []zip.Instruction
	numParams int
	numVars   int
}

// compileClause compiles one already-normalized clause (head and body
// are both *logic.Comp) into its finished instruction sequence, with a
// PushSourceFrame already inserted once the clause's final slot count is
// known.
func compileClause(pool *symbols.ConstantPool, clause *logic.Clause) (compiledClause, error) {
	head := clause.Head.(*logic.Comp)
	cc := newClauseCompiler(pool, len(head.Args))

	for i, arg := range head.Args {
		cc.compileHeadArg(arg, i)
	}
	cc.drainDelayed()

	headCode := cc.code
	cc.code = nil

	for _, term := range clause.Body {
		cc.compileGoal(term.(*logic.Comp))
	}
	cc.emit(zip.Proceed{})

	if cc.err != nil {
		return compiledClause{}, cc.err
	}

	instrs := make([]zip.Instruction, 0, len(headCode)+1+len(cc.code))
	instrs = append(instrs, headCode...)
	instrs = append(instrs, zip.PushSourceFrame{Size: cc.nextSlot})
	instrs = append(instrs, cc.code...)

	return compiledClause{instrs: instrs, numParams: len(head.Args), numVars: cc.nextSlot}, nil
}
