// Package solver glues the compiler and machine together: it
// loads a program once, then runs queries against it, streaming
// solutions back over a channel with a cancel func.
package solver

import (
	"context"

	"github.com/prologzip/ziprolog/compiler"
	"github.com/prologzip/ziprolog/errors"
	"github.com/prologzip/ziprolog/logic"
	"github.com/prologzip/ziprolog/symbols"
	"github.com/prologzip/ziprolog/zip"
)

// chunkSize bounds how many instructions a single Run/NextSolution call
// executes before Query's goroutine checks for cancellation. It's a
// cooperative yield point, not a real budget: a zip.IterLimitError just
// marks a chunk boundary, and the next chunk picks up exactly where the
// last one stopped.
const chunkSize = 1 << 14

// Solution maps each of a query's variables to the term it was bound to.
type Solution map[logic.Var]logic.Term

// Result is one message on a Query's solution channel: either a
// Solution, or a terminal Err — zip.BacktrackExhaustedError once every
// alternative is spent, the cancellation error if canceled first, or a
// fatal machine error — immediately followed by the channel closing. If
// the query is canceled while a Solution is waiting to be received, the
// channel closes with no terminal Err.
type Result struct {
	Solution Solution
	Err      error
}

// Solver holds a compiled program and the single machine loaded against
// it. Queries run one at a time: start a second Query before the first
// is exhausted or canceled and they'll fight over the same machine.
type Solver struct {
	prog *symbols.Program
	m    *zip.Machine
}

// NewSolver compiles clauses into a fresh program and returns a Solver
// ready to run queries against it.
func NewSolver(clauses []*logic.Clause) (*Solver, error) {
	prog := symbols.NewProgram()
	if err := compiler.CompileProgram(prog, clauses); err != nil {
		return nil, err
	}
	return &Solver{prog: prog, m: zip.NewMachine(prog)}, nil
}

// Debug makes every subsequent query append a step-by-step JSON trace to
// filename.
func (s *Solver) Debug(filename string) {
	s.m.DebugFilename = filename
}

// Query compiles goals as a query against s's program and returns a
// channel of its solutions plus a func that cancels the search. The
// query's bytecode and interned constants are appended past the
// program's current size and rolled back via a memento once the
// channel closes, so a canceled or exhausted query never leaks into the
// program other queries run against.
func (s *Solver) Query(goals ...logic.Term) (<-chan Result, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	stream := make(chan Result)

	mem := s.prog.CreateMemento()
	entry, vars, err := compiler.CompileQuery(s.prog, goals)
	if err != nil {
		s.prog.RestoreMemento(mem)
		go func() {
			stream <- Result{Err: err}
			close(stream)
		}()
		return stream, cancel
	}
	s.m.Reset(entry)

	go func() {
		defer close(stream)
		defer s.prog.RestoreMemento(mem)

		needBacktrack := false
		for {
			err := s.runUntilYield(ctx, needBacktrack)
			needBacktrack = true
			if err != nil {
				stream <- Result{Err: err}
				return
			}
			sol, err := s.reifySolution(vars)
			if err != nil {
				stream <- Result{Err: err}
				return
			}
			select {
			case stream <- Result{Solution: sol}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return stream, cancel
}

// runUntilYield drives the machine in IterLimit-bounded chunks until it
// reaches a solution (nil error), exhausts its choice points or hits a
// fatal error (non-nil error), or the context is canceled. backtrack, if
// set, forces a backtrack past the previously reported solution before
// resuming — the move that asks the machine for its next solution rather
// than its first.
func (s *Solver) runUntilYield(ctx context.Context, backtrack bool) error {
	var clock int
	for {
		select {
		case <-ctx.Done():
			return errors.New("solver: interrupted @ clock %d", clock)
		default:
		}

		s.m.IterLimit = chunkSize
		var varsOut []zip.Addr
		var err error
		if backtrack {
			_, err = s.m.NextSolution(&varsOut)
			backtrack = false
		} else {
			_, err = s.m.Run(&varsOut)
		}
		clock += chunkSize

		if _, chunkBoundary := err.(*zip.IterLimitError); chunkBoundary {
			continue
		}
		return err
	}
}

// reifySolution reads back the final value of every query variable from
// the query's own frame, in the order CompileQuery reported them.
func (s *Solver) reifySolution(vars []logic.Var) (Solution, error) {
	sol := make(Solution, len(vars))
	for i, x := range vars {
		term, err := s.m.Reify(s.m.QueryVarAddr(i))
		if err != nil {
			return nil, err
		}
		sol[x] = term
	}
	return sol, nil
}
