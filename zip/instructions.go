package zip

import "fmt"

// VarRef addresses a single variable cell relative to one of the two
// frame registers, resolving to an absolute Addr only once a frame
// actually exists to resolve against (spec.md 4.2).
type VarRef interface {
	fmt.Stringer
	resolve(m *Machine) Addr
}

// ArgVar addresses a cell in the target frame under construction — the
// call's argument/parameter slots (register index in classic WAM terms).
type ArgVar int

func (v ArgVar) resolve(m *Machine) Addr { return m.TF + Addr(v) }
func (v ArgVar) String() string          { return fmt.Sprintf("A%d", int(v)) }

// PermVar addresses a cell in the current source frame — a permanent
// variable that must survive across the calls in a clause's body.
type PermVar int

func (v PermVar) resolve(m *Machine) Addr { return m.SF + Addr(v) }
func (v PermVar) String() string          { return fmt.Sprintf("Y%d", int(v)) }

// Instruction is the compiled form of one ZIP opcode. Concrete types
// implement isInstruction as a marker, the same closed-sum-type idiom
// the bytecode provider uses for Symbol.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// AllocateFrame begins building the argument list of a call: it reserves
// a new target frame at the current local stack top (spec.md 4.4's
// push_target_frame). Compiled once before each call's Put* sequence,
// including the top-level query's own variable frame.
type AllocateFrame struct{}

func (AllocateFrame) isInstruction() {}
func (AllocateFrame) String() string { return "allocate_frame" }

// PutVariable writes a fresh, self-referential cell into the target
// frame at ArgAddr and records it under Var for later reuse within the
// same clause (ARG mode, first occurrence).
type PutVariable struct {
	Var     VarRef
	ArgAddr ArgVar
}

func (PutVariable) isInstruction() {}
func (i PutVariable) String() string {
	return fmt.Sprintf("put_variable %v, %v", i.Var, i.ArgAddr)
}

// PutValue copies the current value of Var into the target frame at
// ArgAddr (ARG mode, repeat occurrence).
type PutValue struct {
	Var     VarRef
	ArgAddr ArgVar
}

func (PutValue) isInstruction() {}
func (i PutValue) String() string {
	return fmt.Sprintf("put_value %v, %v", i.Var, i.ArgAddr)
}

// PutConstant writes a Con cell naming constant-pool entry Const into
// the target frame at ArgAddr.
type PutConstant struct {
	Const   int
	ArgAddr ArgVar
}

func (PutConstant) isInstruction() {}
func (i PutConstant) String() string {
	return fmt.Sprintf("put_constant %d, %v", i.Const, i.ArgAddr)
}

// PutStruct begins building a new compound term on the global stack
// (CopyMode) and writes a Str cell referencing it into the target frame
// at ArgAddr. The functor's arguments follow via Set* instructions.
type PutStruct struct {
	Functor int
	ArgAddr ArgVar
}

func (PutStruct) isInstruction() {}
func (i PutStruct) String() string {
	return fmt.Sprintf("put_struct %d, %v", i.Functor, i.ArgAddr)
}

// GetVariable binds Var to the (possibly unbound) value currently held
// at ArgAddr in the target frame (MATCH mode, first occurrence of a
// head variable — always succeeds).
type GetVariable struct {
	Var     VarRef
	ArgAddr ArgVar
}

func (GetVariable) isInstruction() {}
func (i GetVariable) String() string {
	return fmt.Sprintf("get_variable %v, %v", i.Var, i.ArgAddr)
}

// GetValue unifies Var's current value against the target frame's
// ArgAddr cell (MATCH mode, repeat occurrence of a head variable).
type GetValue struct {
	Var     VarRef
	ArgAddr ArgVar
}

func (GetValue) isInstruction() {}
func (i GetValue) String() string {
	return fmt.Sprintf("get_value %v, %v", i.Var, i.ArgAddr)
}

// GetConstant unifies the target frame's ArgAddr cell against the
// constant named by Const.
type GetConstant struct {
	Const   int
	ArgAddr ArgVar
}

func (GetConstant) isInstruction() {}
func (i GetConstant) String() string {
	return fmt.Sprintf("get_constant %d, %v", i.Const, i.ArgAddr)
}

// GetStruct unifies the target frame's ArgAddr cell against a structure
// with the given functor: in MATCH mode if the cell already holds a
// bound Str (a bound Con fails to unify), in CopyMode (building a fresh structure to bind the
// cell to) if it was unbound. Its arguments are matched/built by the
// Unify* instructions that follow (spec.md 4.2's build-functor duality).
type GetStruct struct {
	Functor int
	ArgAddr ArgVar
}

func (GetStruct) isInstruction() {}
func (i GetStruct) String() string {
	return fmt.Sprintf("get_struct %d, %v", i.Functor, i.ArgAddr)
}

// SetVariable writes a fresh cell as the next argument of the compound
// term under construction (CopyMode only, following PutStruct).
type SetVariable struct{ Var VarRef }

func (SetVariable) isInstruction() {}
func (i SetVariable) String() string { return fmt.Sprintf("set_variable %v", i.Var) }

// SetValue writes Var's current value as the next argument of the
// compound term under construction.
type SetValue struct{ Var VarRef }

func (SetValue) isInstruction() {}
func (i SetValue) String() string { return fmt.Sprintf("set_value %v", i.Var) }

// SetConstant writes a Con cell as the next argument of the compound
// term under construction.
type SetConstant struct{ Const int }

func (SetConstant) isInstruction() {}
func (i SetConstant) String() string { return fmt.Sprintf("set_constant %d", i.Const) }

// SetVoid skips N anonymous argument cells of the compound term under
// construction, writing fresh unbound cells for each.
type SetVoid struct{ N int }

func (SetVoid) isInstruction() {}
func (i SetVoid) String() string { return fmt.Sprintf("set_void %d", i.N) }

// UnifyVariable is SetVariable's dual under GetStruct: in MATCH mode it
// reads the next argument of the structure being matched into Var,
// rather than writing a fresh cell.
type UnifyVariable struct{ Var VarRef }

func (UnifyVariable) isInstruction() {}
func (i UnifyVariable) String() string { return fmt.Sprintf("unify_variable %v", i.Var) }

// UnifyValue is SetValue's dual under GetStruct: it unifies the next
// argument of the structure being matched against Var's current value.
type UnifyValue struct{ Var VarRef }

func (UnifyValue) isInstruction() {}
func (i UnifyValue) String() string { return fmt.Sprintf("unify_value %v", i.Var) }

// UnifyConstant is SetConstant's dual under GetStruct.
type UnifyConstant struct{ Const int }

func (UnifyConstant) isInstruction() {}
func (i UnifyConstant) String() string { return fmt.Sprintf("unify_constant %d", i.Const) }

// UnifyVoid is SetVoid's dual under GetStruct: it skips N arguments of
// the structure being matched without constraining them.
type UnifyVoid struct{ N int }

func (UnifyVoid) isInstruction() {}
func (i UnifyVoid) String() string { return fmt.Sprintf("unify_void %d", i.N) }

// Call transfers control to the first clause of the predicate named by
// Predicate (a pool index), jumping there and recording the instruction
// following Call as the target frame's continuation. If the predicate
// has no clauses, it fails exactly as an unmatched head would.
type Call struct{ Predicate int }

func (Call) isInstruction() {}
func (i Call) String() string { return fmt.Sprintf("call %d", i.Predicate) }

// PushSourceFrame finalizes the current target frame as the activation
// record of the clause now committed to: it reserves Size cells total
// (parameters plus permanent variables) and promotes the frame to the
// source frame (spec.md 4.4's push_source_frame). Compiled once per
// clause, right after its head has matched.
type PushSourceFrame struct{ Size int }

func (PushSourceFrame) isInstruction() {}
func (i PushSourceFrame) String() string { return fmt.Sprintf("push_source_frame %d", i.Size) }

// Proceed returns control to the caller, popping the source frame
// (spec.md 4.4's pop_source_frame). The top-level query's own frame
// is never popped this way — it ends in Halt instead, so its variable
// slots survive for Machine.Reify to read after a successful Run.
type Proceed struct{}

func (Proceed) isInstruction() {}
func (Proceed) String() string { return "proceed" }

// TryMeElse marks the first clause alternative of a multi-clause
// predicate: it establishes a choice point recording Alternative (a
// pool index naming the next clause to retry on failure).
type TryMeElse struct{ Alternative int }

func (TryMeElse) isInstruction() {}
func (i TryMeElse) String() string { return fmt.Sprintf("try_me_else %d", i.Alternative) }

// RetryMeElse marks a middle clause alternative. The choice point's own
// backtrack-clause chain (symbols.ClauseSymbol.Next) already advances
// itself during backtrack, so this carries no operand and performs no
// work at execution time — it exists purely so the compiled code names
// the clause's position the way the bytecode provider's opcode set
// requires.
type RetryMeElse struct{}

func (RetryMeElse) isInstruction() {}
func (RetryMeElse) String() string { return "retry_me_else" }

// TrustMe marks the last clause alternative. Like RetryMeElse it is a
// positional marker only; backtrack already knows this is the last
// alternative because symbols.ClauseSymbol.Next is nil.
type TrustMe struct{}

func (TrustMe) isInstruction() {}
func (TrustMe) String() string { return "trust_me" }

// Fail unconditionally triggers backtracking. The compiler does not emit
// it; it is available to hand-assembled code.
type Fail struct{}

func (Fail) isInstruction() {}
func (Fail) String() string { return "fail" }

// Halt stops the interpreter loop immediately, without consulting the
// choice-point stack. Used only to terminate the top-level query driver
// loop's synthetic entry point; ordinary clause bodies end in Proceed.
type Halt struct{}

func (Halt) isInstruction() {}
func (Halt) String() string { return "halt" }
