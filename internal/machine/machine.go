// Package machine assembles the Lexer, Parser, Assembler, and CPU into the
// reset/load/step/run/snapshot facade a host REPL, browser binding, or
// autograder transport drives the emulator through.
package machine

import (
	"fmt"
	"strings"

	"github.com/cslab-edu/gomips32/internal/assembler"
	"github.com/cslab-edu/gomips32/internal/cpu"
	"github.com/cslab-edu/gomips32/internal/lexer"
	"github.com/cslab-edu/gomips32/internal/log"
	"github.com/cslab-edu/gomips32/internal/memory"
	"github.com/cslab-edu/gomips32/internal/parser"
)

// Snapshot is the sole observable state delivered to a caller per step: the
// register file, the most recent memory access (if any), and every MMIO
// device's state.
type Snapshot struct {
	Registers    map[string]uint32
	LastMemAddr  uint32
	LastMemSize  int
	LastMemValid bool
	Devices      map[uint32]memory.DeviceState
}

// Result pairs an error string (the empty string on success) with the
// snapshot taken immediately afterward, matching the facade's own
// vocabulary rather than returning a Go error the caller must classify by
// hand.
type Result struct {
	Error    string
	Snapshot Snapshot
}

// Machine owns one CPU and drives source text through the assembly pipeline
// on its behalf.
type Machine struct {
	cpu *cpu.CPU
	log *log.Logger
}

// New returns a Machine with a fresh CPU and no program loaded.
func New(logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Machine{cpu: cpu.New(logger), log: logger}
}

// Reset clears the register file, memory, loaded program, breakpoints, and
// validation stack.
func (m *Machine) Reset() {
	m.cpu.Reset()
}

// LoadSource resets the machine, then lexes, parses, and assembles text,
// installing the resulting program on success. A failure at any stage is
// reported as a formatted syntax error and leaves no program installed.
func (m *Machine) LoadSource(text string) Result {
	m.Reset()

	toks, err := lexer.Lex(strings.NewReader(text))
	if err != nil {
		return Result{Error: syntaxError(err), Snapshot: m.snapshot()}
	}

	p := parser.New(m.cpu.Memory, m.log)
	if err := p.Parse(toks); err != nil {
		return Result{Error: syntaxError(err), Snapshot: m.snapshot()}
	}

	prog, err := assembler.Assemble(p.Statements(), p.Symbols(), m.log)
	if err != nil {
		return Result{Error: syntaxError(err), Snapshot: m.snapshot()}
	}

	m.cpu.Load(prog)

	return Result{Snapshot: m.snapshot()}
}

// SetBreakpoints replaces the breakpoint set with the given 0-based source
// line indices.
func (m *Machine) SetBreakpoints(lines []int) {
	m.cpu.SetBreakpoints(lines)
}

// Step executes exactly one instruction.
func (m *Machine) Step() Result {
	err := m.cpu.Step()

	return Result{Error: runResult(err), Snapshot: m.snapshot()}
}

// Run executes instructions until termination, a breakpoint, a runtime
// error, or the instruction limit, whichever comes first.
func (m *Machine) Run() Result {
	err := m.cpu.Run()

	return Result{Error: runResult(err), Snapshot: m.snapshot()}
}

// Snapshot returns the machine's current observable state without
// advancing execution.
func (m *Machine) Snapshot() Snapshot {
	return m.snapshot()
}

// NextInstruction returns the debug string for the instruction at the
// current PC, or "---" when there is none.
func (m *Machine) NextInstruction() string {
	in, pc, ok := m.cpu.NextInstruction()
	if !ok {
		return "---"
	}

	return fmt.Sprintf("0x%08x: %s", pc, in.String())
}

// GetCurrentLine returns the 0-based source line of the next instruction to
// execute, or -1 if there is none.
func (m *Machine) GetCurrentLine() int {
	return m.cpu.CurrentLine()
}

// CPU exposes the underlying interpreter for callers (the autograder
// transport) that need direct register/memory access alongside the
// facade's own operations.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

func (m *Machine) snapshot() Snapshot {
	last := m.cpu.LastMemAccess()

	return Snapshot{
		Registers:    m.cpu.Registers.Snapshot(),
		LastMemAddr:  last.Addr,
		LastMemSize:  last.Size,
		LastMemValid: last.Set,
		Devices:      m.cpu.DeviceSnapshot(),
	}
}

// syntaxError formats a load-time failure as "Syntax Error -- <kind>", per
// the facade's error-string contract.
func syntaxError(err error) string {
	return fmt.Sprintf("Syntax Error -- %s", err)
}

// runResult maps a Step/Run error to the facade's error-string vocabulary:
// the empty string on success, the bare control-flow signal name for
// Termination/Breakpoint, or a formatted runtime error otherwise.
func runResult(err error) string {
	switch {
	case err == nil:
		return ""
	case err == cpu.Termination:
		return "Termination"
	case err == cpu.Breakpoint:
		return "Breakpoint"
	default:
		return fmt.Sprintf("Runtime Error -- %s", err)
	}
}
