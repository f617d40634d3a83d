package cpu

import (
	"errors"
	"fmt"
)

// Control-flow signals returned by Step/Run that are not failures: the
// caller is expected to check for these with errors.Is before treating the
// return value as a fault.
var (
	// Termination signals the PC ran off the end of the text segment.
	Termination = errors.New("termination")

	// Breakpoint signals a requested pause after a successful step.
	Breakpoint = errors.New("breakpoint")
)

// Runtime error sentinels, wrapped by the typed errors below where extra
// context (an address, a count) is useful.
var (
	ErrRuntime         = errors.New("runtime error")
	ErrDivideByZero    = fmt.Errorf("%w: divide by zero", ErrRuntime)
	ErrUnalignedAccess = fmt.Errorf("%w: unaligned access", ErrRuntime)
	ErrInvalidJump     = fmt.Errorf("%w: invalid jump", ErrRuntime)
	ErrCallingConvention = fmt.Errorf("%w: calling convention violation", ErrRuntime)
	ErrExecutionLimit  = fmt.Errorf("%w: execution limit exceeded", ErrRuntime)
)

// UnalignedAccessError reports the misaligned address a memory access or
// jump target failed on.
type UnalignedAccessError struct {
	Addr uint32
}

func (e *UnalignedAccessError) Error() string {
	return fmt.Sprintf("unaligned access: addr=0x%08x", e.Addr)
}

func (e *UnalignedAccessError) Unwrap() error { return ErrUnalignedAccess }

// InvalidJumpError reports a jump or branch target that doesn't land on a
// valid text-segment instruction.
type InvalidJumpError struct {
	Addr uint32
}

func (e *InvalidJumpError) Error() string {
	return fmt.Sprintf("invalid jump: addr=0x%08x", e.Addr)
}

func (e *InvalidJumpError) Unwrap() error { return ErrInvalidJump }

// CallingConventionError reports which callee-saved register or stack
// pointer differed from its value at the matching jal.
type CallingConventionError struct {
	Register string
}

func (e *CallingConventionError) Error() string {
	return fmt.Sprintf("calling convention violation: %s not restored", e.Register)
}

func (e *CallingConventionError) Unwrap() error { return ErrCallingConvention }

// ExecutionLimitError reports the instruction count run reached before
// terminating naturally.
type ExecutionLimitError struct {
	Count int
}

func (e *ExecutionLimitError) Error() string {
	return fmt.Sprintf("execution limit exceeded: %d instructions", e.Count)
}

func (e *ExecutionLimitError) Unwrap() error { return ErrExecutionLimit }

// UndefinedLabelError reports a jump, branch, or la target absent from the
// program's symbol table; this should never surface once the parser's own
// check has run, but jump checks again as a defensive boundary since a
// caller could hand the CPU a hand-built Program.
type UndefinedLabelError struct {
	Label string
}

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("undefined label: %s", e.Label)
}
