package test_helpers

import (
	"github.com/prologzip/ziprolog/logic"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	IgnoreUnexported = cmp.Options{
		cmpopts.IgnoreUnexported(logic.Comp{}),
		cmpopts.IgnoreUnexported(logic.Clause{}),
		cmpopts.IgnoreUnexported(logic.Var{}),
	}
)
