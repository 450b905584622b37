package compiler

import (
	"github.com/prologzip/ziprolog/errors"
	"github.com/prologzip/ziprolog/logic"
	"github.com/prologzip/ziprolog/symbols"
	"github.com/prologzip/ziprolog/zip"
)

// CompileQuery compiles a top-level query — the goal list after "?-" —
// and appends its bytecode to prog, returning the address to Reset the
// machine to and the query's variables in first-occurrence order, so a
// caller can read their bindings back out of the query's own frame once
// it succeeds.
//
// A query has no caller: Machine.Reset starts the fetch-decode-execute
// loop with no target frame already open, unlike an ordinary clause
// whose caller opens one before jumping in. So a compiled query's
// bytecode begins with its own AllocateFrame, exactly as if some outer
// caller were about to call a zero-argument goal — there just isn't one.
// Every variable the query mentions gets a persistent slot regardless of
// how many times it's used (there's no "head" to distinguish permanent
// from temporary here: the whole query is body), and the query ends in
// Halt rather than an ordinary Proceed: a Proceed against this frame
// would pop it and truncate its slots away (frame.go's popSourceFrame)
// at the exact moment the caller needs to read them, so Halt leaves the
// frame — and every binding in it — standing for Machine.Reify to walk.
func CompileQuery(prog *symbols.Program, goals []logic.Term) (entry zip.CodeAddr, vars []logic.Var, err error) {
	cc := newClauseCompiler(prog.Pool, 0)

	entryAddr := prog.CodeSize()
	prog.AppendCode(zip.AllocateFrame{})

	for _, term := range goals {
		g, err := normalizeGoal(term)
		if err != nil {
			return zip.NoCodeAddr, nil, err
		}
		cc.compileGoal(g)
	}
	if cc.err != nil {
		return zip.NoCodeAddr, nil, cc.err
	}

	prog.AppendCode(zip.PushSourceFrame{Size: cc.nextSlot})
	for _, instr := range cc.code {
		prog.AppendCode(instr)
	}
	prog.AppendCode(zip.Halt{})

	return zip.CodeAddr(entryAddr), cc.varOrder, nil
}

// normalizeGoal turns a bare query term into the *logic.Comp form
// compileGoal expects, the same way logic.Clause.Normalize does for a
// clause's head and body.
func normalizeGoal(term logic.Term) (*logic.Comp, error) {
	switch t := term.(type) {
	case logic.Atom:
		return logic.NewComp(t.Name), nil
	case *logic.Comp:
		return t, nil
	default:
		return nil, errors.New("compiler: invalid query goal %v (%T, must be atom or comp)", term, term)
	}
}
