package program_test

import (
	"testing"

	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/program"
)

func TestPCToIndexRoundTrip(t *testing.T) {
	t.Parallel()

	p := program.New(
		[]inst.Instruction{
			{Opcode: inst.Add, Rd: inst.T0, Rs: inst.T1, Rt: inst.T2},
			{Opcode: inst.Sub, Rd: inst.T0, Rs: inst.T1, Rt: inst.T2},
		},
		program.NewSymbolTable(),
		[]int{1, 2},
	)

	for i := 0; i < p.Len(); i++ {
		pc := p.IndexToPC(i)

		got, ok := p.PCToIndex(pc)
		if !ok {
			t.Fatalf("PCToIndex(%#x) not ok", pc)
		}

		if got != i {
			t.Errorf("PCToIndex(IndexToPC(%d)) = %d, want %d", i, got, i)
		}
	}
}

func TestPCToIndexRejectsMisalignedAndOutOfRange(t *testing.T) {
	t.Parallel()

	p := program.New(
		[]inst.Instruction{{Opcode: inst.Add}},
		program.NewSymbolTable(),
		[]int{1},
	)

	if _, ok := p.PCToIndex(program.TextBase + 1); ok {
		t.Errorf("PCToIndex should reject misaligned address")
	}

	if _, ok := p.PCToIndex(program.TextBase + 4); ok {
		t.Errorf("PCToIndex should reject out-of-range index")
	}

	if _, ok := p.PCToIndex(program.TextBase - 4); ok {
		t.Errorf("PCToIndex should reject address below TextBase")
	}
}

func TestNewPanicsOnPseudoInstruction(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("New should panic on a pseudo instruction")
		}
	}()

	program.New(
		[]inst.Instruction{{Opcode: inst.Li}},
		program.NewSymbolTable(),
		[]int{1},
	)
}

func TestSymbolTableAndLineLookup(t *testing.T) {
	t.Parallel()

	symbols := program.NewSymbolTable()
	symbols.Add("main", program.TextBase)

	p := program.New(
		[]inst.Instruction{{Opcode: inst.Add}},
		symbols,
		[]int{7},
	)

	addr, ok := p.GetLabelAddress("main")
	if !ok || addr != program.TextBase {
		t.Errorf("GetLabelAddress(main) = %#x, %v, want %#x, true", addr, ok, program.TextBase)
	}

	if line := p.LineAt(0); line != 7 {
		t.Errorf("LineAt(0) = %d, want 7", line)
	}

	if line := p.LineAt(5); line != -1 {
		t.Errorf("LineAt(out of range) = %d, want -1", line)
	}
}
