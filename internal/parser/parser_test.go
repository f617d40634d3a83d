package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/lexer"
	"github.com/cslab-edu/gomips32/internal/memory"
	"github.com/cslab-edu/gomips32/internal/parser"
	"github.com/cslab-edu/gomips32/internal/program"
)

func parse(t *testing.T, src string) (*parser.Parser, *memory.Memory, error) {
	t.Helper()

	toks, err := lexer.Lex(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	mem := memory.New()
	p := parser.New(mem, nil)
	err = p.Parse(toks)

	return p, mem, err
}

func TestParseTextInstruction(t *testing.T) {
	t.Parallel()

	p, _, err := parse(t, "add $t0, $t1, $t2\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	stmts := p.Statements()
	if len(stmts) != 1 || stmts[0].Instruction == nil {
		t.Fatalf("Statements() = %v, want one instruction statement", stmts)
	}

	in := stmts[0].Instruction
	if in.Opcode != inst.Add || in.Rd != inst.T0 || in.Rs != inst.T1 || in.Rt != inst.T2 {
		t.Errorf("parsed instruction = %+v, want add $t0,$t1,$t2", in)
	}
}

func TestParseLabelThenInstructionSameLine(t *testing.T) {
	t.Parallel()

	p, _, err := parse(t, "loop: addi $t0, $t0, -1\nj loop\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	stmts := p.Statements()
	if len(stmts) != 3 {
		t.Fatalf("Statements() has %d entries, want 3 (label, addi, j): %v", len(stmts), stmts)
	}

	if stmts[0].Label != "loop" {
		t.Errorf("first statement label = %q, want loop", stmts[0].Label)
	}

	if stmts[2].Instruction.Label != "loop" {
		t.Errorf("j target = %q, want loop", stmts[2].Instruction.Label)
	}
}

func TestParseDuplicateLabel(t *testing.T) {
	t.Parallel()

	_, _, err := parse(t, "a: add $t0, $t0, $t0\na: add $t0, $t0, $t0\n")
	if !errors.Is(err, parser.ErrDuplicateLabel) {
		t.Fatalf("Parse() error = %v, want ErrDuplicateLabel", err)
	}
}

func TestParseUndefinedLabel(t *testing.T) {
	t.Parallel()

	_, _, err := parse(t, "j nowhere\n")
	if !errors.Is(err, parser.ErrUndefinedLabel) {
		t.Fatalf("Parse() error = %v, want ErrUndefinedLabel", err)
	}
}

func TestParseDataSectionWritesMemory(t *testing.T) {
	t.Parallel()

	p, mem, err := parse(t, ".data\nx: .word 7\n.text\nla $t0, x\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	addr, ok := p.Symbols().Lookup("x")
	if !ok {
		t.Fatalf("symbol x not recorded")
	}

	if addr != program.DataBase {
		t.Errorf("address of x = %#x, want %#x", addr, program.DataBase)
	}

	got, err := mem.LoadWord(addr)
	if err != nil {
		t.Fatalf("LoadWord: %v", err)
	}

	if got != 7 {
		t.Errorf("LoadWord(x) = %d, want 7", got)
	}
}

func TestParseDataAlignment(t *testing.T) {
	t.Parallel()

	p, _, err := parse(t, ".data\na: .byte 1\nb: .word 2\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	aAddr, _ := p.Symbols().Lookup("a")
	bAddr, _ := p.Symbols().Lookup("b")

	if aAddr != program.DataBase {
		t.Errorf("a address = %#x, want %#x", aAddr, program.DataBase)
	}

	if bAddr%4 != 0 {
		t.Errorf("b address %#x not word-aligned", bAddr)
	}

	if bAddr <= aAddr {
		t.Errorf("b address %#x should follow a's alignment padding", bAddr)
	}
}

func TestParseAsciizNulTerminates(t *testing.T) {
	t.Parallel()

	p, mem, err := parse(t, ".data\ns: .asciiz \"hi\"\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	addr, _ := p.Symbols().Lookup("s")

	got := mem.GetMemorySlice(addr, 3)
	if string(got) != "hi\x00" {
		t.Errorf("GetMemorySlice = %q, want %q", got, "hi\x00")
	}
}

func TestParseInvalidRegister(t *testing.T) {
	t.Parallel()

	_, _, err := parse(t, "add $t0, $bogus, $t2\n")
	if !errors.Is(err, parser.ErrInvalidRegister) {
		t.Fatalf("Parse() error = %v, want ErrInvalidRegister", err)
	}
}

func TestParseLoadStoreOperand(t *testing.T) {
	t.Parallel()

	p, _, err := parse(t, "lw $t0, 4($sp)\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	in := p.Statements()[0].Instruction
	if in.Opcode != inst.Lw || in.Rt != inst.T0 || in.Rs != inst.Sp || in.Imm != 4 {
		t.Errorf("parsed instruction = %+v, want lw $t0,4($sp)", in)
	}
}

func TestParseLwLabelPseudo(t *testing.T) {
	t.Parallel()

	p, _, err := parse(t, ".data\nx: .word 1\n.text\nlw $t0, x\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	in := p.Statements()[0].Instruction
	if in.Opcode != inst.LwLabel || in.Label != "x" {
		t.Errorf("parsed instruction = %+v, want LwLabel x", in)
	}
}
