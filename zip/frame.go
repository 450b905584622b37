package zip

import "github.com/prologzip/ziprolog/symbols"

// pushTargetFrame allocates a new frame at the current local stack top and
// makes it the target frame under construction. Its variable cells aren't
// written yet — they come into existence lazily as ARG/COPY opcodes
// address them (see growLocalTo) — so only a header is reserved here
// (spec.md 4.4).
func (m *Machine) pushTargetFrame() Addr {
	base := m.lt()
	m.frames[base] = &frameHeader{Base: base, Continuation: NoCodeAddr, Parent: NoAddr}
	m.TF = base
	return base
}

// popTargetFrame discards the target frame under construction, used when
// the caller discovers there are no goals left to call after compiling
// directly into it.
func (m *Machine) popTargetFrame() {
	h := m.frames[m.TF]
	delete(m.frames, m.TF)
	m.Local = m.Local[:localIndex(h.Base)]
	m.TF = NoAddr
}

// pushChoicePoint promotes the current target frame into a choice point,
// recording enough state to retry a different clause on failure
// (spec.md 4.4/4.5). savedSF captures the caller's source frame as it
// stands right now — before this clause attempt gets a chance to promote
// the same header into the source frame via pushSourceFrame — so that a
// later backtrack into this choice point restores the environment that
// was actually live when the call was made, not whatever this attempt
// left behind.
func (m *Machine) pushChoicePoint(clause *symbols.ClauseSymbol) {
	h := m.frames[m.TF]
	h.isChoicePoint = true
	h.backtrackClause = clause
	h.savedGT = m.gt()
	h.savedTT = len(m.Trail)
	// savedLT is the local stack top right now, not the frame's base: the
	// caller's ARG-mode instructions have already grown this frame's
	// parameter cells by this point, and a retried clause alternative
	// re-matches its head against those same cells rather than rebuilding
	// them, so they must survive the truncation on backtrack.
	h.savedLT = m.lt()
	h.savedSF = m.SF
	h.prevCP = m.CP
	m.CP = m.TF
}

// pushSourceFrame finalizes the target frame as the activation record of
// the clause it was built for: it records the frame's final size, links
// it to its caller via Parent, and promotes it to the source frame (the
// activation currently executing).
func (m *Machine) pushSourceFrame(size int) error {
	h := m.frames[m.TF]
	h.Size = size
	if size > 0 {
		if err := m.growLocalTo(h.Base + Addr(size) - 1); err != nil {
			return err
		}
	}
	h.Parent = m.SF
	m.SF = m.TF
	m.TF = NoAddr
	return nil
}

// popSourceFrame returns control to the caller: it restores PC from the
// source frame's continuation and SF from its parent-source pointer, and
// shrinks the local stack top to discard the returning frame — but only
// if there is no live choice point or the frame is newer than the latest
// one; a frame at or below the latest choice point must persist for
// retries (spec.md 4.4).
func (m *Machine) popSourceFrame() (done bool, err error) {
	h, err := m.header(m.SF)
	if err != nil {
		return false, err
	}
	nextPC := h.Continuation
	parent := h.Parent
	done = parent == NoAddr
	if m.CP == NoAddr || m.SF > m.CP {
		delete(m.frames, m.SF)
		if localIndex(h.Base) < len(m.Local) {
			m.Local = m.Local[:localIndex(h.Base)]
		}
	}
	m.SF = parent
	m.PC = nextPC
	return done, nil
}

// jump sets PC to addr and, if a target frame is under construction,
// records the instruction following the call as its continuation, so a
// later Proceed against this frame resumes execution there (spec.md 4.2).
func (m *Machine) jump(addr CodeAddr) {
	returnAddr := m.PC + 1
	m.PC = addr
	if m.TF != NoAddr {
		m.frames[m.TF].Continuation = returnAddr
	}
}
