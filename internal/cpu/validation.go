package cpu

import "github.com/cslab-edu/gomips32/internal/inst"

// calleeSaved is the register set a validation snapshot captures: $sp, $fp,
// and $s0..$s7.
var calleeSaved = []inst.GPR{
	inst.Sp, inst.Fp,
	inst.S0, inst.S1, inst.S2, inst.S3, inst.S4, inst.S5, inst.S6, inst.S7,
}

// validationFrame is one entry pushed on jal and popped on a matching
// jr $ra.
type validationFrame struct {
	values map[inst.GPR]uint32
}

// validationStack pairs each jal with its eventual jr $ra to enforce MIPS
// callee-save discipline, per §3/§4.7.
type validationStack struct {
	frames []validationFrame
}

func (vs *validationStack) push(rf *RegisterFile) {
	frame := validationFrame{values: make(map[inst.GPR]uint32, len(calleeSaved))}

	for _, r := range calleeSaved {
		frame.values[r] = rf.Get(r)
	}

	vs.frames = append(vs.frames, frame)
}

// pop removes and checks the top frame against the current register file.
// An empty stack is not an error: per the language surface's design notes,
// a jr $ra with no matching jal (e.g. a hand-written trampoline) performs
// no convention check.
func (vs *validationStack) pop(rf *RegisterFile) error {
	if len(vs.frames) == 0 {
		return nil
	}

	frame := vs.frames[len(vs.frames)-1]
	vs.frames = vs.frames[:len(vs.frames)-1]

	for _, r := range calleeSaved {
		if rf.Get(r) != frame.values[r] {
			return &CallingConventionError{Register: r.String()}
		}
	}

	return nil
}

func (vs *validationStack) reset() {
	vs.frames = nil
}
