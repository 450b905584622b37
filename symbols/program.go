package symbols

import "github.com/prologzip/ziprolog/errors"

// Instruction is implemented by zip.Instruction. It's redeclared here as an
// empty interface (rather than importing package zip) to avoid a import
// cycle: zip consumes a Program to fetch instructions from, so symbols
// cannot import zip in turn. The compiler package appends zip.Instructions
// to Programs, and zip's Run type-asserts each fetched entry back to
// zip.Instruction.
type Instruction interface{}

// Program is the bytecode provider: an append-only instruction stream
// (code memory) plus the constant pool it refers into. A query compiler
// appends its compiled query at CodeSize() and, once the query has run its
// course, the solver restores a Memento taken before compilation to
// discard it again.
type Program struct {
	Code []Instruction
	Pool *ConstantPool
}

// NewProgram returns an empty program with a fresh constant pool.
func NewProgram() *Program {
	return &Program{Pool: NewConstantPool()}
}

// CodeSize returns the number of instructions currently in code memory.
func (p *Program) CodeSize() int { return len(p.Code) }

// ReadCode returns the instruction at addr, or an out-of-bounds error.
func (p *Program) ReadCode(addr int) (Instruction, error) {
	if addr < 0 || addr >= len(p.Code) {
		return nil, errors.New("code memory index out of bounds: %d", addr)
	}
	return p.Code[addr], nil
}

// AppendCode appends instr to code memory and returns its address. Used
// only by compilers, never by the interpreter.
func (p *Program) AppendCode(instr Instruction) int {
	p.Code = append(p.Code, instr)
	return len(p.Code) - 1
}

// Constant delegates to the constant pool.
func (p *Program) Constant(idx int) (Symbol, error) { return p.Pool.Constant(idx) }
