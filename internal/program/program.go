package program

import "github.com/cslab-edu/gomips32/internal/inst"

// Program is a read-only bundle over the assembler's output: the flat core
// instruction array, the finalized symbol table, and the source line number
// each instruction was assembled from. It never contains a pseudo
// instruction; the assembler's lowering pass guarantees that by
// construction.
type Program struct {
	instructions []inst.Instruction
	symbols      SymbolTable
	lines        []int
}

// New builds a Program from the assembler's flat outputs. instructions and
// lines must be the same length, index-for-index. It panics if any
// instruction is still a pseudo opcode, since that would mean the assembler
// failed to lower it.
func New(instructions []inst.Instruction, symbols SymbolTable, lines []int) *Program {
	if len(instructions) != len(lines) {
		panic("program: instructions and lines length mismatch")
	}

	for _, in := range instructions {
		if in.Opcode.IsPseudo() {
			panic("program: pseudo instruction " + in.Opcode.String() + " in finalized Program")
		}
	}

	return &Program{instructions: instructions, symbols: symbols, lines: lines}
}

// Len returns the number of core instructions in the program.
func (p *Program) Len() int {
	return len(p.instructions)
}

// InstructionAt returns the instruction at index i and whether i is in
// range.
func (p *Program) InstructionAt(i int) (inst.Instruction, bool) {
	if i < 0 || i >= len(p.instructions) {
		return inst.Instruction{}, false
	}

	return p.instructions[i], true
}

// LineAt returns the 1-based source line the instruction at index i was
// assembled from, or -1 if i is out of range.
func (p *Program) LineAt(i int) int {
	if i < 0 || i >= len(p.lines) {
		return -1
	}

	return p.lines[i]
}

// GetLabelAddress resolves name to its absolute address.
func (p *Program) GetLabelAddress(name string) (uint32, bool) {
	return p.symbols.Lookup(name)
}

// Symbols returns the program's finalized symbol table.
func (p *Program) Symbols() SymbolTable {
	return p.symbols
}

// PCToIndex converts a byte address into an instruction index, valid only
// when pc is at or above TextBase, 4-byte aligned, and the derived index is
// in range.
func (p *Program) PCToIndex(pc uint32) (int, bool) {
	if pc < TextBase || (pc-TextBase)%4 != 0 {
		return -1, false
	}

	i := int((pc - TextBase) / 4)
	if i < 0 || i >= len(p.instructions) {
		return -1, false
	}

	return i, true
}

// IndexToPC is the inverse of PCToIndex; it does not range-check i.
func (p *Program) IndexToPC(i int) uint32 {
	return TextBase + uint32(i)*4
}
