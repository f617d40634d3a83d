package inst

import "fmt"

// Instruction is a single decoded line of assembly: one tagged union over the
// core and pseudo opcodes, carrying whichever operands that opcode's grammar
// uses. Unused operand fields are left at whatever the constructor gave them:
// their zero value ($zero for registers, "" for Label) in a struct literal,
// or BadGPR for registers when built with New.
//
// A finalized Program contains only instructions where Opcode.IsCore() is
// true; the assembler rewrites every pseudo Instruction into one or more core
// ones during lowering.
type Instruction struct {
	Opcode Opcode

	// Register operands. Which of these a given opcode consumes follows the
	// MIPS instruction formats:
	//   R-type (add, sub, and, ...): Rd, Rs, Rt
	//   I-type (addi, lw, beq, ...): Rt, Rs, Imm
	//   shift  (sll, srl, sra):      Rd, Rt, Imm (shamt)
	//   J-type (j, jal):             Label
	Rd, Rs, Rt GPR

	// Imm is the immediate or shift amount, depending on Opcode. Branches
	// carry their target in Label, not in Imm.
	Imm int32

	// Label is the symbolic target of a jump, branch, or label-operand
	// pseudo-instruction (la, lw $rt, label). The assembler replaces la and
	// lw's label with a lui/ori or lui/lw address pair during lowering; core
	// jumps and branches (j, jal, beq, bne) keep their Label in the finalized
	// Program, and the CPU resolves it through the symbol table when it
	// executes them.
	Label string

	// Line is the 1-based source line this instruction was assembled from,
	// carried through to the executable Program so the machine can report
	// the current source line during single-stepping and breakpoints.
	Line int
}

// New returns a bare Instruction for op with no operands set, ready for its
// caller to fill in the fields op's grammar requires.
func New(op Opcode, line int) Instruction {
	return Instruction{Opcode: op, Rd: BadGPR, Rs: BadGPR, Rt: BadGPR, Line: line}
}

// String renders the canonical disassembly text for the instruction, e.g.
// "add $t0, $t1, $t2" or "lw $t0, 4($sp)". It does not include the address
// prefix; callers needing "0x{pc:08x}: {insn}" form prepend it themselves.
func (in Instruction) String() string {
	switch in.Opcode {
	case Add, Addu, Sub, Subu, And, Or, Xor, Nor, Slt, Sltu:
		return fmt.Sprintf("%s %s, %s, %s", in.Opcode, in.Rd, in.Rs, in.Rt)
	case Addi, Addiu, Andi, Ori, Xori, Slti, Sltiu:
		return fmt.Sprintf("%s %s, %s, %d", in.Opcode, in.Rt, in.Rs, in.Imm)
	case Sll, Srl, Sra:
		return fmt.Sprintf("%s %s, %s, %d", in.Opcode, in.Rd, in.Rt, in.Imm)
	case Lui:
		return fmt.Sprintf("%s %s, %d", in.Opcode, in.Rt, in.Imm)
	case Lw, Sw, Lb, Sb, Lh, Sh:
		return fmt.Sprintf("%s %s, %d(%s)", in.Opcode, in.Rt, in.Imm, in.Rs)
	case J, Jal:
		return fmt.Sprintf("%s %s", in.Opcode, in.Label)
	case Jr:
		return fmt.Sprintf("%s %s", in.Opcode, in.Rs)
	case Beq, Bne:
		return fmt.Sprintf("%s %s, %s, %s", in.Opcode, in.Rs, in.Rt, in.Label)
	case Mult, Multu, Div, Divu:
		return fmt.Sprintf("%s %s, %s", in.Opcode, in.Rs, in.Rt)
	case Mfhi, Mflo:
		return fmt.Sprintf("%s %s", in.Opcode, in.Rd)
	case Li:
		return fmt.Sprintf("%s %s, %d", in.Opcode, in.Rt, in.Imm)
	case La, LwLabel:
		return fmt.Sprintf("%s %s, %s", in.Opcode, in.Rt, in.Label)
	case Move:
		return fmt.Sprintf("%s %s, %s", in.Opcode, in.Rd, in.Rs)
	case Blt, Bgt, Ble, Bge:
		return fmt.Sprintf("%s %s, %s, %s", in.Opcode, in.Rs, in.Rt, in.Label)
	default:
		return in.Opcode.String()
	}
}
