package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cslab-edu/gomips32/internal/assembler"
	"github.com/cslab-edu/gomips32/internal/config"
	"github.com/cslab-edu/gomips32/internal/cpu"
	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/lexer"
	"github.com/cslab-edu/gomips32/internal/parser"
)

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

func TestApplySetsMaxInstructions(t *testing.T) {
	t.Parallel()

	c := cpu.New(nil)
	cfg := config.Config{MaxInstructions: 42}

	if err := cfg.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if c.MaxInstructions != 42 {
		t.Errorf("MaxInstructions = %d, want 42", c.MaxInstructions)
	}
}

func TestApplyLeavesDefaultWhenUnset(t *testing.T) {
	t.Parallel()

	c := cpu.New(nil)
	cfg := config.Config{}

	if err := cfg.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if c.MaxInstructions != cpu.DefaultMaxInstructions {
		t.Errorf("MaxInstructions = %d, want default %d", c.MaxInstructions, cpu.DefaultMaxInstructions)
	}
}

func TestApplyLoadsBreakpointsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "breakpoints.txt")

	if err := os.WriteFile(path, []byte("# comment\n2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := load(t, `li $t0, 1
		li $t1, 2
		li $t2, 3
	`)
	cfg := config.Config{BreakpointsFile: path}

	if err := cfg.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if err := c.Run(); !errors.Is(err, cpu.Breakpoint) {
		t.Fatalf("Run() error = %v, want Breakpoint at line 2", err)
	}

	if got := c.Registers.Get(inst.T1); got != 2 {
		t.Errorf("$t1 = %d, want 2 (the line before the breakpoint should have executed)", got)
	}
}

func TestApplyRejectsMissingFile(t *testing.T) {
	t.Parallel()

	c := cpu.New(nil)
	cfg := config.Config{BreakpointsFile: "/nonexistent/path.txt"}

	if err := cfg.Apply(c); err == nil {
		t.Fatal("Apply() error = nil, want error for missing breakpoints file")
	}
}
