package zip

import "github.com/prologzip/ziprolog/errors"

// BacktrackExhaustedError is raised when backtrack is requested with no
// live choice point. The REPL recovers from this and turns it into the
// canonical "no" answer; the MiscastError, OutOfBoundsError,
// ResourceExhaustedError and PreconditionError kinds below are fatal and
// bubble unmodified.
type BacktrackExhaustedError struct{}

func (*BacktrackExhaustedError) Error() string { return "no more solutions" }

// MiscastError describes a constant-pool entry that isn't of the kind the
// caller expected. Nothing in this repository returns it: the symbols
// package reports miscasts as plain errors.
type MiscastError struct {
	Index int
	Want  string
	Got   string
}

func (e *MiscastError) Error() string {
	return errors.New("constant pool entry %d: expected %s, got %s", e.Index, e.Want, e.Got).Error()
}

// OutOfBoundsError is raised when an address falls outside its region. It
// indicates corrupt bytecode. A code index outside code memory is reported
// by symbols.Program.ReadCode as a plain error instead.
type OutOfBoundsError struct {
	Region string
	Index  int
}

func (e *OutOfBoundsError) Error() string {
	return errors.New("%s index out of bounds: %d", e.Region, e.Index).Error()
}

// ResourceExhaustedError is raised when a region's top exceeds its
// configured capacity. It aborts the current query.
type ResourceExhaustedError struct {
	Region   string
	Capacity int
}

func (e *ResourceExhaustedError) Error() string {
	return errors.New("%s exhausted its capacity of %d cells", e.Region, e.Capacity).Error()
}

// PreconditionError is raised when a caller violates an argument
// precondition, e.g. passing a non-empty output slice to backtrack. It
// indicates a programmer error in the caller.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// UnifyError is raised internally by the unification engine on a
// structural mismatch; it is not one of the fatal error kinds, but the
// ordinary "this clause alternative doesn't apply" signal that drives
// backtracking.
type UnifyError struct {
	C1, C2 interface{}
}

func (e *UnifyError) Error() string {
	return errors.New("%v != %v", e.C1, e.C2).Error()
}

// IterLimitError is raised when Run's configured IterLimit elapses
// before reaching Halt or exhausting every choice point. Unlike the
// five error kinds above, it leaves the machine in a well-formed,
// mid-query state: PC, frames, and stacks are exactly as the last
// completed instruction left them, so a caller that set a short
// IterLimit as a cooperative chunk boundary can call Run again and
// resume exactly where it stopped.
type IterLimitError struct {
	Limit int
}

func (e *IterLimitError) Error() string {
	return errors.New("zip: iteration limit %d reached without reaching proceed or failure", e.Limit).Error()
}
