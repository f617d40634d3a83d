package cpu_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/cslab-edu/gomips32/internal/assembler"
	"github.com/cslab-edu/gomips32/internal/cpu"
	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/lexer"
	"github.com/cslab-edu/gomips32/internal/parser"
)

// load assembles src onto a fresh CPU and installs the resulting program.
func load(t *testing.T, src string) *cpu.CPU {
	t.Helper()

	c := cpu.New(nil)

	toks, err := lexer.Lex(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	p := parser.New(c.Memory, nil)
	if err := p.Parse(toks); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	prog, err := assembler.Assemble(p.Statements(), p.Symbols(), nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	c.Load(prog)

	return c
}

func runUntilTerminated(t *testing.T, c *cpu.CPU) error {
	t.Helper()

	err := c.Run()
	if errors.Is(err, cpu.Termination) {
		return nil
	}

	return err
}

func TestBranchTakenSkipsFallthrough(t *testing.T) {
	t.Parallel()

	c := load(t, `
		li $t0, 10
		li $t1, 10
		beq $t0, $t1, L
		li $t2, 100
		j E
	L:	li $t2, 50
	E:
	`)

	if err := runUntilTerminated(t, c); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := c.Registers.Get(inst.T2); got != 50 {
		t.Errorf("$t2 = %d, want 50", got)
	}
}

func TestUnsignedWrappingAdd(t *testing.T) {
	t.Parallel()

	c := load(t, `
		li $t0, 0xFFFFFFFF
		li $t1, 2
		addu $t2, $t0, $t1
	`)

	if err := runUntilTerminated(t, c); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := c.Registers.Get(inst.T2); got != 1 {
		t.Errorf("$t2 = %d, want 1", got)
	}
}

func TestLoadStoreRecordsLastMemAccess(t *testing.T) {
	t.Parallel()

	c := load(t, `
		li $t1, 100
		li $t2, 42
		sw $t2, 0($t1)
		lw $t0, 0($t1)
	`)

	// Step through the four instructions rather than running to
	// termination: the terminating step clears the last access again.
	for i := 0; i < 4; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	if got := c.Registers.Get(inst.T0); got != 42 {
		t.Errorf("$t0 = %d, want 42", got)
	}

	last := c.LastMemAccess()
	if last.Addr != 100 || last.Size != 4 {
		t.Errorf("LastMemAccess() = %+v, want addr=100 size=4", last)
	}
}

func TestNestedCallsRestoreCalleeSaved(t *testing.T) {
	t.Parallel()

	c := load(t, `
		li $t0, 10
		jal f1
		j done
	f1:	addi $sp, $sp, -4
		sw $ra, 0($sp)
		jal f2
		lw $ra, 0($sp)
		addi $sp, $sp, 4
		jr $ra
	f2:	addi $t0, $t0, 5
		jr $ra
	done:
	`)

	if err := runUntilTerminated(t, c); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := c.Registers.Get(inst.T0); got != 15 {
		t.Errorf("$t0 = %d, want 15", got)
	}
}

func TestLaLoadsDataLabel(t *testing.T) {
	t.Parallel()

	c := load(t, `
		.data
	x:	.word 7
		.text
		la $t0, x
		lw $t1, 0($t0)
	`)

	if err := runUntilTerminated(t, c); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := c.Registers.Get(inst.T1); got != 7 {
		t.Errorf("$t1 = %d, want 7", got)
	}

	addr, ok := c.Program().GetLabelAddress("x")
	if !ok {
		t.Fatalf("label x not resolved")
	}

	if addr&3 != 0 {
		t.Errorf("x address %#x is not word-aligned", addr)
	}
}

func TestDivideByZero(t *testing.T) {
	t.Parallel()

	c := load(t, `
		li $t0, 10
		li $t1, 0
		div $t0, $t1
	`)

	err := c.Run()
	if !errors.Is(err, cpu.ErrDivideByZero) {
		t.Fatalf("Run() error = %v, want ErrDivideByZero", err)
	}
}

func TestExecutionLimitExceeded(t *testing.T) {
	t.Parallel()

	c := load(t, `
	loop:	j loop
	`)
	c.MaxInstructions = 5

	err := c.Run()

	var limitErr *cpu.ExecutionLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("Run() error = %v, want *ExecutionLimitError", err)
	}

	if limitErr.Count != 5 {
		t.Errorf("ExecutionLimitError.Count = %d, want 5", limitErr.Count)
	}
}

func TestBreakpointPausesRun(t *testing.T) {
	t.Parallel()

	c := load(t, `li $t0, 1
		li $t1, 2
		li $t2, 3
	`)
	c.SetBreakpoints([]int{2}) // 0-based line of "li $t2, 3": pauses just before it runs

	err := c.Run()
	if !errors.Is(err, cpu.Breakpoint) {
		t.Fatalf("Run() error = %v, want Breakpoint", err)
	}

	if got := c.Registers.Get(inst.T1); got != 2 {
		t.Errorf("$t1 = %d, want 2 (the line before the breakpoint should have executed)", got)
	}

	if got := c.Registers.Get(inst.T2); got != 0 {
		t.Errorf("$t2 = %d, want 0 (should not execute past breakpoint)", got)
	}
}
