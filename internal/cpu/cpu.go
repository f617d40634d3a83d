// Package cpu implements the instruction interpreter: the register file,
// special registers, the per-step execution semantics, breakpoints, the
// calling-convention validation stack, and run/step bookkeeping.
package cpu

import (
	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/log"
	"github.com/cslab-edu/gomips32/internal/memory"
	"github.com/cslab-edu/gomips32/internal/program"
)

// DefaultMaxInstructions is the run() instruction budget absent an explicit
// override.
const DefaultMaxInstructions = 10_000

// LastMemAccess mirrors memory.LastAccess in the CPU's own vocabulary, kept
// as a separate type so cpu doesn't leak a memory-package type through its
// snapshot API to callers that only care about addr/size.
type LastMemAccess struct {
	Addr uint32
	Size int
	Set  bool
}

// CPU is the register file, owned Memory, and interpreter loop together:
// the unit a Program is loaded into and executed against.
type CPU struct {
	Registers *RegisterFile
	Memory    *memory.Memory

	program *program.Program
	lastMem LastMemAccess

	breakpoints map[int]bool // Source-line indices.
	validation  validationStack

	MaxInstructions int

	log *log.Logger
}

// New returns a CPU with a fresh register file and memory, no Program
// loaded, and the default instruction limit.
func New(logger *log.Logger) *CPU {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	mem := memory.New()
	memory.RegisterDefaultDevices(mem.Bus)

	return &CPU{
		Registers:       NewRegisterFile(),
		Memory:          mem,
		breakpoints:     make(map[int]bool),
		MaxInstructions: DefaultMaxInstructions,
		log:             logger,
	}
}

// Reset restores the register file to its initial values, rebuilds Memory
// (preserving the default device set), discards the loaded Program, and
// clears breakpoints and the validation stack.
func (c *CPU) Reset() {
	c.Registers.Reset()
	c.Memory.Reset()
	memory.RegisterDefaultDevices(c.Memory.Bus)
	c.program = nil
	c.lastMem = LastMemAccess{}
	c.breakpoints = make(map[int]bool)
	c.validation.reset()
}

// Load installs p as the executable program and resets the PC to its base.
func (c *CPU) Load(p *program.Program) {
	c.program = p
	c.Registers.PC = program.TextBase
}

// Program returns the currently loaded program, or nil.
func (c *CPU) Program() *program.Program {
	return c.program
}

// SetBreakpoints replaces the breakpoint set with the given 0-based source
// line indices.
func (c *CPU) SetBreakpoints(lines []int) {
	c.breakpoints = make(map[int]bool, len(lines))

	for _, l := range lines {
		c.breakpoints[l] = true
	}
}

// LastMemAccess returns the address and size of the most recent memory
// access made by Step, if any.
func (c *CPU) LastMemAccess() LastMemAccess {
	return c.lastMem
}

// CurrentLine returns the 0-based source line of the next instruction to
// execute, or -1 if there is none (no program loaded, or PC out of range).
func (c *CPU) CurrentLine() int {
	if c.program == nil {
		return -1
	}

	i, ok := c.program.PCToIndex(c.Registers.PC)
	if !ok {
		return -1
	}

	line := c.program.LineAt(i)
	if line < 0 {
		return -1
	}

	return line - 1 // Program lines are 1-based; the facade reports 0-based.
}

// NextInstruction returns the instruction at the current PC together with
// that PC; ok is false if there is none (no program loaded, or PC out of
// range).
func (c *CPU) NextInstruction() (inst.Instruction, uint32, bool) {
	if c.program == nil {
		return inst.Instruction{}, 0, false
	}

	i, ok := c.program.PCToIndex(c.Registers.PC)
	if !ok {
		return inst.Instruction{}, 0, false
	}

	in, ok := c.program.InstructionAt(i)

	return in, c.Registers.PC, ok
}

// Step executes exactly one instruction. It returns Termination when the PC
// has run off the end of the text segment, or a wrapped runtime error on a
// fault; both leave the CPU state as it was at the failing instruction's
// boundary.
func (c *CPU) Step() error {
	c.lastMem = LastMemAccess{}

	if c.program == nil {
		return Termination
	}

	i, ok := c.program.PCToIndex(c.Registers.PC)
	if !ok {
		return Termination
	}

	in, _ := c.program.InstructionAt(i)

	branched, err := c.execute(in)
	if err != nil {
		return err
	}

	if !branched {
		c.Registers.PC += 4
	}

	return nil
}

// Run calls Step repeatedly until Termination, a breakpoint, a runtime
// error, or MaxInstructions executed instructions, whichever comes first.
func (c *CPU) Run() error {
	count := 0

	for {
		if err := c.Step(); err != nil {
			return err
		}

		count++

		if count >= c.MaxInstructions {
			return &ExecutionLimitError{Count: count}
		}

		line := c.CurrentLine()
		if line >= 0 && c.breakpoints[line] {
			return Breakpoint
		}
	}
}

// DeviceSnapshot returns the state of every registered MMIO device.
func (c *CPU) DeviceSnapshot() map[uint32]memory.DeviceState {
	return c.Memory.Bus.Snapshot()
}
