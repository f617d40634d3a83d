package cpu

import (
	"github.com/cslab-edu/gomips32/internal/inst"
	"github.com/cslab-edu/gomips32/internal/program"
)

// RegisterFile is the fixed 32-entry general-purpose register array, plus
// the special registers the instruction set reads and writes outside the
// GPR set. Indexed by canonical register id rather than name, per the
// language surface's own recommendation that a string-keyed map is wasteful
// here.
type RegisterFile struct {
	gpr [inst.NumGPR]uint32
	PC  uint32
	Hi  uint32
	Lo  uint32
}

// NewRegisterFile returns a register file at its reset-time initial values.
func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{}
	rf.Reset()

	return rf
}

// Reset restores every register to its initial value (§3): $sp, $fp, $gp
// carry fixed non-zero values; everything else, including $pc, resets to
// its construction-time default.
func (rf *RegisterFile) Reset() {
	rf.gpr = [inst.NumGPR]uint32{}

	for reg, v := range inst.InitialValues {
		rf.gpr[reg] = v
	}

	rf.PC = program.TextBase
	rf.Hi = 0
	rf.Lo = 0
}

// Get returns the value of r. Reading $zero always yields zero regardless
// of what was last written to it.
func (rf *RegisterFile) Get(r inst.GPR) uint32 {
	if r == inst.Zero {
		return 0
	}

	return rf.gpr[r]
}

// Set writes v to r. Per the language surface's design notes, writes to
// $zero are accepted mechanically rather than specially discarded; Get
// still always reads $zero as zero.
func (rf *RegisterFile) Set(r inst.GPR, v uint32) {
	rf.gpr[r] = v
}

// Snapshot returns a copy of every general-purpose register, keyed by
// canonical name, for inclusion in a CPU snapshot.
func (rf *RegisterFile) Snapshot() map[string]uint32 {
	out := make(map[string]uint32, inst.NumGPR)

	for r := inst.GPR(0); r < inst.NumGPR; r++ {
		out[r.String()[1:]] = rf.Get(r) // Strip the leading '$'.
	}

	return out
}
