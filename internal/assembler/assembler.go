// Package assembler lowers a parser's statement stream into a flat core
// instruction array, resolving text-label addresses and pseudo-instruction
// expansions in the two passes the language surface's PC counting requires.
package assembler

import (
	"errors"
	"fmt"

	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/log"
	"github.com/cslab-edu/gomips32/internal/parser"
	"github.com/cslab-edu/gomips32/internal/program"
)

// ErrUndefinedLabel causes an AssembleError when la's label resolution
// finds no entry in the symbol table, which should not happen once the
// parser's own reference check has passed but is checked again here as a
// defensive boundary.
var ErrUndefinedLabel = errors.New("undefined label")

// AssembleError reports the source line an assembly-time failure occurred
// on.
type AssembleError struct {
	Line int
	Err  error
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *AssembleError) Unwrap() error { return e.Err }

// slotsFor reports how many core instructions a statement occupies after
// lowering, without needing the symbol table: li's slot count depends only
// on its own immediate value, and every other pseudo has a fixed slot count.
func slotsFor(in *inst.Instruction) int {
	switch in.Opcode {
	case inst.Li:
		if fitsSigned16(in.Imm) || fitsUnsigned16(in.Imm) {
			return 1
		}

		return 2
	case inst.La, inst.LwLabel, inst.Blt, inst.Bgt, inst.Ble, inst.Bge:
		return 2
	case inst.Move:
		return 1
	default:
		return 1 // Core instruction.
	}
}

func fitsSigned16(v int32) bool { return v >= -(1<<15) && v <= (1<<15)-1 }
func fitsUnsigned16(v int32) bool {
	return v >= 0 && v <= (1<<16)-1
}

// Assemble walks statements in order, assigns addresses to text labels by
// simulating pseudo-expansion slot counts (pass one), then lowers every
// pseudo into its core expansion with labels fully resolved (pass two), and
// returns the finished Program.
func Assemble(statements []parser.Statement, symbols program.SymbolTable, logger *log.Logger) (*program.Program, error) {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	// Pass one: assign addresses to every text label, walking expansions
	// virtually so an `la` before a label shifts that label's PC as the
	// real code generation will.
	index := 0

	for _, st := range statements {
		if st.Label != "" {
			symbols.Add(st.Label, program.TextBase+uint32(index)*4)
			continue
		}

		if st.Instruction != nil {
			index += slotsFor(st.Instruction)
		}
	}

	// Pass two: emit core instructions, lowering pseudos now that every
	// label (including forward references) has its final address.
	var (
		instructions []inst.Instruction
		lines        []int
	)

	for _, st := range statements {
		if st.Instruction == nil {
			continue
		}

		core, err := lower(st.Instruction, symbols)
		if err != nil {
			return nil, &AssembleError{Line: st.Line, Err: err}
		}

		for _, in := range core {
			in.Line = st.Instruction.Line
			instructions = append(instructions, in)
			lines = append(lines, st.Instruction.Line)
		}
	}

	return program.New(instructions, symbols, lines), nil
}

// lower expands a single statement's instruction into one or more core
// instructions. A core instruction passes through unchanged.
func lower(in *inst.Instruction, symbols program.SymbolTable) ([]inst.Instruction, error) {
	if in.Opcode.IsCore() {
		return []inst.Instruction{*in}, nil
	}

	at := inst.At

	switch in.Opcode {
	case inst.Li:
		imm := in.Imm

		switch {
		case fitsSigned16(imm):
			return []inst.Instruction{
				{Opcode: inst.Addi, Rt: in.Rt, Rs: inst.Zero, Imm: imm},
			}, nil
		case fitsUnsigned16(imm):
			return []inst.Instruction{
				{Opcode: inst.Ori, Rt: in.Rt, Rs: inst.Zero, Imm: imm},
			}, nil
		default:
			hi := int32(uint32(imm) >> 16)
			lo := int32(uint32(imm) & 0xFFFF)

			return []inst.Instruction{
				{Opcode: inst.Lui, Rt: at, Imm: hi},
				{Opcode: inst.Ori, Rt: in.Rt, Rs: at, Imm: lo},
			}, nil
		}

	case inst.La, inst.LwLabel:
		addr, ok := symbols.Lookup(in.Label)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndefinedLabel, in.Label)
		}

		hi := int32(addr >> 16)
		lo := int32(addr & 0xFFFF)

		if in.Opcode == inst.La {
			return []inst.Instruction{
				{Opcode: inst.Lui, Rt: at, Imm: hi},
				{Opcode: inst.Ori, Rt: in.Rt, Rs: at, Imm: lo},
			}, nil
		}

		return []inst.Instruction{
			{Opcode: inst.Lui, Rt: at, Imm: hi},
			{Opcode: inst.Lw, Rt: in.Rt, Rs: at, Imm: lo},
		}, nil

	case inst.Move:
		return []inst.Instruction{
			{Opcode: inst.Addu, Rd: in.Rd, Rs: in.Rs, Rt: inst.Zero},
		}, nil

	case inst.Blt:
		return []inst.Instruction{
			{Opcode: inst.Slt, Rd: at, Rs: in.Rs, Rt: in.Rt},
			{Opcode: inst.Bne, Rs: at, Rt: inst.Zero, Label: in.Label},
		}, nil

	case inst.Bgt:
		return []inst.Instruction{
			{Opcode: inst.Slt, Rd: at, Rs: in.Rt, Rt: in.Rs},
			{Opcode: inst.Bne, Rs: at, Rt: inst.Zero, Label: in.Label},
		}, nil

	case inst.Ble:
		return []inst.Instruction{
			{Opcode: inst.Slt, Rd: at, Rs: in.Rt, Rt: in.Rs},
			{Opcode: inst.Beq, Rs: at, Rt: inst.Zero, Label: in.Label},
		}, nil

	case inst.Bge:
		return []inst.Instruction{
			{Opcode: inst.Slt, Rd: at, Rs: in.Rs, Rt: in.Rt},
			{Opcode: inst.Beq, Rs: at, Rt: inst.Zero, Label: in.Label},
		}, nil

	default:
		return nil, fmt.Errorf("assembler: unreachable pseudo opcode %s", in.Opcode)
	}
}
