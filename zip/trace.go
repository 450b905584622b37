package zip

import (
	"encoding/json"
	"io"
	"log"
	"os"
)

// MarshalText renders a Word the same way its String method does, so a
// debug trace reads as tagged words rather than opaque integer pairs.
func (w Word) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// MarshalText renders an Addr as REGION+offset, matching its String
// method.
func (a Addr) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// traceStep is one line of a debug trace: the machine's registers and
// region sizes right before the instruction at PC executes. Unlike the
// teacher's Machine.MarshalJSON, this never needs a position-map
// encoder for pointer cycles — Global and Local are flat, so plain
// slices of Word marshal directly.
type traceStep struct {
	Step      int
	PC        CodeAddr
	Instr     string
	Mode      Mode
	TF        Addr
	SF        Addr
	CP        Addr
	GlobalTop int
	LocalTop  int
	TrailTop  int
	Global    []Word
	Local     []Word
	Trail     []Addr
}

// debugInit opens DebugFilename for appending trace lines, mirroring
// the teacher's Machine.debugInit/debugWrite. A failure to open the
// file is logged and tracing is silently disabled, matching the
// teacher's behavior of never letting tracing failures abort a query.
func (m *Machine) debugInit() io.WriteCloser {
	if m.DebugFilename == "" {
		return nil
	}
	f, err := os.OpenFile(m.DebugFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("zip: failed to open debug file: %v", err)
		return nil
	}
	return f
}

func (m *Machine) debugWrite(f io.WriteCloser, step int, instr Instruction) {
	if f == nil {
		return
	}
	line := traceStep{
		Step:      step,
		PC:        m.PC,
		Mode:      m.Mode,
		TF:        m.TF,
		SF:        m.SF,
		CP:        m.CP,
		GlobalTop: len(m.Global),
		LocalTop:  len(m.Local),
		TrailTop:  len(m.Trail),
		Global:    m.Global,
		Local:     m.Local,
		Trail:     m.Trail,
	}
	if instr != nil {
		line.Instr = instr.String()
	}
	data, err := json.Marshal(line)
	if err != nil {
		log.Printf("zip: failed to marshal trace step: %v", err)
		return
	}
	f.Write(data)
	f.Write([]byte{'\n'})
}
