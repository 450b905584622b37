// Package compiler flattens logic.Clauses and queries into zip bytecode
// and symbols.ConstantPool entries. The bytecode provider (symbols) keeps
// an untyped placeholder for zip.Instruction so that it need not import
// zip (see symbols.Instruction's doc comment).
package compiler

import (
	"github.com/prologzip/ziprolog/logic"
	"github.com/prologzip/ziprolog/symbols"
	"github.com/prologzip/ziprolog/zip"
)

// CompileProgram compiles a full batch of clauses — one Consult call's
// worth — and appends their bytecode to prog. Clauses are grouped by
// functor indicator in first-seen order before any bytecode is emitted,
// so that a predicate's first clause can be compiled already knowing
// every sibling alternative it will need to link to: try_me_else is the
// only clause-selection opcode that actually does anything at run time
// (it pushes the choice point), so the first clause of a multi-clause
// predicate must know, compiled into its own bytecode, that siblings
// exist — there is no way to patch that in after the fact without
// rewriting already-emitted code. Consult calls therefore pass their
// whole clause list to CompileProgram at once, the same way a teacher
// compiler's CompileClauses takes the full clause list for a loaded
// file in one call.
func CompileProgram(prog *symbols.Program, clauses []*logic.Clause) error {
	var order []logic.Indicator
	groups := make(map[logic.Indicator][]*logic.Clause)
	for _, c := range clauses {
		norm, err := c.Normalize()
		if err != nil {
			return err
		}
		ind := norm.Indicator()
		if _, ok := groups[ind]; !ok {
			order = append(order, ind)
		}
		groups[ind] = append(groups[ind], norm)
	}
	for _, ind := range order {
		if err := compileGroup(prog, toIndicator(ind), groups[ind]); err != nil {
			return err
		}
	}
	return nil
}

// compileGroup compiles every clause alternative for one predicate and
// appends them to code memory back to back, linking them with a
// try/retry/trust chain when there's more than one. A group of exactly
// one clause gets no chain at all: there's nothing to retry into, and
// spec.md's Non-goals exclude any indexing finer than this.
func compileGroup(prog *symbols.Program, ind symbols.Indicator, clauses []*logic.Clause) error {
	n := len(clauses)
	compiled := make([]compiledClause, n)
	for i, c := range clauses {
		cc, err := compileClause(prog.Pool, c)
		if err != nil {
			return err
		}
		compiled[i] = cc
	}

	hasChain := n > 1
	entries := make([]int, n)
	addr := prog.CodeSize()
	for i, cc := range compiled {
		entries[i] = addr
		if hasChain {
			addr++
		}
		addr += len(cc.instrs)
	}

	clauseIdx := make([]int, n)
	for i, cc := range compiled {
		sym := &symbols.ClauseSymbol{
			Entry:     entries[i],
			NumParams: cc.numParams,
			NumVars:   cc.numVars,
		}
		clauseIdx[i] = prog.Pool.AddClause(ind, sym)
	}

	for i, cc := range compiled {
		if hasChain {
			switch {
			case i == 0:
				prog.AppendCode(zip.TryMeElse{Alternative: clauseIdx[1]})
			case i == n-1:
				prog.AppendCode(zip.TrustMe{})
			default:
				prog.AppendCode(zip.RetryMeElse{})
			}
		}
		for _, instr := range cc.instrs {
			prog.AppendCode(instr)
		}
	}
	return nil
}
