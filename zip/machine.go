package zip

import (
	"github.com/prologzip/ziprolog/symbols"
)

// Mode is the machine's current processor mode, which refines how the
// argument/compound-building opcodes interpret their operands (4.2).
type Mode int

const (
	// ArgMode: arguments of the head literal are being set up — write
	// operand cells into the target frame's parameter slots.
	ArgMode Mode = iota
	// CopyMode: building a compound term on the global stack (WAM
	// write mode).
	CopyMode
	// MatchMode: structurally unifying an existing term against the
	// clause head (WAM read mode).
	MatchMode
)

func (m Mode) String() string {
	switch m {
	case ArgMode:
		return "ARG"
	case CopyMode:
		return "COPY"
	case MatchMode:
		return "MATCH"
	default:
		return "?"
	}
}

// CodeAddr is an address in code memory (the bytecode provider owns the
// actual instruction stream; the core only ever holds addresses into it).
type CodeAddr int

// NoCodeAddr is the sentinel "no continuation" code address.
const NoCodeAddr CodeAddr = -1

// Limits bounds each region's arena. Exceeding one is a fatal
// ResourceExhaustedError (spec.md section 5: the machine does not grow
// stacks).
type Limits struct {
	GlobalCap int
	LocalCap  int
	TrailCap  int
}

// DefaultLimits returns limits generous enough for interactive queries.
func DefaultLimits() Limits {
	return Limits{GlobalCap: 1 << 20, LocalCap: 1 << 20, TrailCap: 1 << 20}
}

// frameHeader is a frame's administrative fields: the parts of section
// 3's frame layout that aren't tagged-word variable cells. A frame's
// variable cells V[0..size) live directly in Machine.Local, addressed by
// Base..Base+Size; only the header metadata below needs a side table.
type frameHeader struct {
	Base Addr
	Size int

	Continuation CodeAddr
	Parent       Addr

	isChoicePoint   bool
	backtrackClause *symbols.ClauseSymbol
	savedGT         Addr
	savedLT         Addr
	savedTT         int
	savedSF         Addr
	prevCP          Addr
}

// Machine is a ZIP machine instance: its memory regions, registers, and
// the bytecode provider it's currently executing against. Nothing is
// shared across instances (spec.md section 5).
type Machine struct {
	Program *symbols.Program
	Limits  Limits

	Global []Word
	Local  []Word

	Trail      []Addr
	Scratchpad []scratchPair

	PC CodeAddr
	TF Addr
	SF Addr
	CP Addr
	Mode Mode

	// Compound and ArgIndex track the compound term currently being
	// built or matched by Set*/Unify* opcodes, mirroring the "current
	// argument" cursor of the classic WAM (one level of nesting is
	// enough: the compiler flattens deeper nesting into a sequence of
	// top-level Put/Get/Set/Unify instructions, so there's never a need
	// to save more than one compound cursor at a time — see
	// SPEC_FULL.md's resolution of the scratchpad open question).
	Compound Addr
	ArgIndex int

	frames map[Addr]*frameHeader

	// IterLimit caps how many instructions Run executes before giving
	// up as a runaway query. Zero uses defaultIterLimit.
	IterLimit int

	// DebugFilename, when non-empty, makes Run append a JSON trace
	// entry after every instruction, mirroring the teacher's
	// Machine.DebugFilename/debugWrite.
	DebugFilename string
}

// NewMachine returns a fresh machine bound to program, with default
// region limits.
func NewMachine(program *symbols.Program) *Machine {
	return NewMachineWithLimits(program, DefaultLimits())
}

// NewMachineWithLimits returns a fresh machine bound to program, with the
// given region limits.
func NewMachineWithLimits(program *symbols.Program, limits Limits) *Machine {
	m := &Machine{Program: program, Limits: limits}
	m.Reset(NoCodeAddr)
	return m
}

// Reset prepares the machine to execute the query stored at queryAddr,
// clearing every register and truncating every region back to its start
// (spec.md section 4.6). Passing NoCodeAddr leaves PC unset; a Run
// before the next Reset then fails with an out-of-bounds code read.
func (m *Machine) Reset(queryAddr CodeAddr) {
	m.Global = m.Global[:0]
	m.Local = m.Local[:0]
	m.Trail = m.Trail[:0]
	m.Scratchpad = m.Scratchpad[:0]
	m.PC = queryAddr
	m.TF = NoAddr
	m.SF = NoAddr
	m.CP = NoAddr
	m.Mode = ArgMode
	m.Compound = NoAddr
	m.ArgIndex = 0
	m.frames = make(map[Addr]*frameHeader)
}

// gt returns the global stack top as an absolute address.
func (m *Machine) gt() Addr { return Addr(len(m.Global)) }

// lt returns the local stack top as an absolute address.
func (m *Machine) lt() Addr { return localAddr(len(m.Local)) }

// readWord returns the word at addr, without following REF chains.
func (m *Machine) readWord(addr Addr) (Word, error) {
	if addr.IsGlobal() {
		i := globalIndex(addr)
		if i < 0 || i >= len(m.Global) {
			return Word{}, &OutOfBoundsError{Region: "global stack", Index: i}
		}
		return m.Global[i], nil
	}
	i := localIndex(addr)
	if i < 0 || i >= len(m.Local) {
		return Word{}, &OutOfBoundsError{Region: "local stack", Index: i}
	}
	return m.Local[i], nil
}

// writeWord unconditionally overwrites the word at addr. The caller is
// responsible for trailing it first if the write is a binding.
func (m *Machine) writeWord(addr Addr, w Word) error {
	if addr.IsGlobal() {
		i := globalIndex(addr)
		if i < 0 || i >= len(m.Global) {
			return &OutOfBoundsError{Region: "global stack", Index: i}
		}
		m.Global[i] = w
		return nil
	}
	i := localIndex(addr)
	if i < 0 || i >= len(m.Local) {
		return &OutOfBoundsError{Region: "local stack", Index: i}
	}
	m.Local[i] = w
	return nil
}

// pushGlobal appends w to the global stack and returns its address.
func (m *Machine) pushGlobal(w Word) (Addr, error) {
	if len(m.Global) >= m.Limits.GlobalCap {
		return NoAddr, &ResourceExhaustedError{Region: "global stack", Capacity: m.Limits.GlobalCap}
	}
	addr := m.gt()
	m.Global = append(m.Global, w)
	return addr, nil
}

// growLocalTo ensures the local stack extends at least through addr,
// lazily initializing any newly-created cell to a self-referential Ref —
// spec.md section 3: "each variable cell is initialized to a
// self-referential REF" the first time it's addressed.
func (m *Machine) growLocalTo(addr Addr) error {
	need := localIndex(addr) + 1
	if need <= len(m.Local) {
		return nil
	}
	if need > m.Limits.LocalCap {
		return &ResourceExhaustedError{Region: "local stack", Capacity: m.Limits.LocalCap}
	}
	for i := len(m.Local); i < need; i++ {
		m.Local = append(m.Local, Ref(localAddr(i)))
	}
	return nil
}

// getVar reads the current value of a variable operand, lazily
// initializing its cell if this is the first time it's addressed.
func (m *Machine) getVar(v VarRef) (Word, error) {
	addr := v.resolve(m)
	if err := m.growLocalTo(addr); err != nil {
		return Word{}, err
	}
	return m.readWord(addr)
}

// setVar writes w into the cell for variable operand v, growing the
// local stack if needed.
func (m *Machine) setVar(v VarRef, w Word) error {
	addr := v.resolve(m)
	if err := m.growLocalTo(addr); err != nil {
		return err
	}
	return m.writeWord(addr, w)
}

func (m *Machine) header(addr Addr) (*frameHeader, error) {
	h, ok := m.frames[addr]
	if !ok {
		return nil, &OutOfBoundsError{Region: "frame", Index: int(addr)}
	}
	return h, nil
}
