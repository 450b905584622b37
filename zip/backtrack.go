package zip

// backtrack restores machine state to the latest choice point and returns
// the code address of the clause alternative to retry (spec.md 4.5).
// varsOut, which must be passed empty, receives the addresses of every
// cell reset to unbound during the trail replay, most recent binding
// first — the
// REPL uses this to report which query variables became unbound again.
func (m *Machine) backtrack(varsOut *[]Addr) (CodeAddr, error) {
	if len(*varsOut) != 0 {
		return NoCodeAddr, &PreconditionError{Msg: "backtrack: varsOut must be empty"}
	}
	if m.CP == NoAddr {
		return NoCodeAddr, &BacktrackExhaustedError{}
	}
	cpAddr := m.CP
	cp, err := m.header(cpAddr)
	if err != nil {
		return NoCodeAddr, err
	}

	m.Global = m.Global[:globalIndex(cp.savedGT)]
	m.SF = cp.savedSF
	m.pruneFramesAbove(cp.savedLT, cpAddr)
	m.Local = m.Local[:localIndex(cp.savedLT)]

	for i := len(m.Trail) - 1; i >= cp.savedTT; i-- {
		addr := m.Trail[i]
		if err := m.writeWord(addr, Ref(addr)); err != nil {
			return NoCodeAddr, err
		}
		*varsOut = append(*varsOut, addr)
	}
	m.Trail = m.Trail[:cp.savedTT]

	clause := cp.backtrackClause
	if clause.Next != nil {
		cp.backtrackClause = clause.Next
	} else {
		// No further alternative exists after this one, so the choice
		// point layer itself is popped now — but the frame and its
		// argument cells stay exactly as they are: the clause about to
		// run still needs to match its head against them, and its own
		// eventual PushSourceFrame still needs to find this header to
		// promote. Both get cleaned up the ordinary way, by a later
		// popSourceFrame, once this frame is no longer CP (it already
		// won't be, since CP was just moved off it here).
		m.CP = cp.prevCP
	}
	// The retried alternative re-matches its head against the same
	// argument cells the original call built, addressed as ArgVar
	// (relative to TF) rather than PermVar: its own PushSourceFrame
	// hasn't run yet to promote this frame, so TF must be pointed back
	// at it explicitly, exactly as the original call's own AllocateFrame
	// did before the first attempt.
	m.TF = cpAddr
	return CodeAddr(clause.Entry), nil
}

// pruneFramesAbove discards every frame header pushed after the choice
// point at keep, since their storage is about to be truncated away; the
// choice point's own frame is preserved (it holds the call's argument
// cells, which the next clause alternative re-matches against).
func (m *Machine) pruneFramesAbove(floor Addr, keep Addr) {
	for addr, h := range m.frames {
		if addr != keep && h.Base >= floor {
			delete(m.frames, addr)
		}
	}
}
