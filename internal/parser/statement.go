package parser

import "github.com/cslab-edu/gomips32/internal/inst"

// Statement is one parsed unit of the text section: either a label
// declaration, an instruction, or both (a line may declare a label and an
// instruction together, e.g. "loop: addi $t0, $t0, -1").
type Statement struct {
	Label       string
	Instruction *inst.Instruction
	Line        int
}
