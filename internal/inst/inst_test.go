package inst_test

import (
	"testing"

	"github.com/cslab-edu/gomips32/internal/inst"
)

func TestGPRString(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		reg  inst.GPR
		want string
	}{
		{inst.Zero, "$zero"},
		{inst.Sp, "$sp"},
		{inst.Ra, "$ra"},
		{inst.T4, "$t4"},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()

			if got := tc.reg.String(); got != tc.want {
				t.Errorf("GPR.String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLookupRegister(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		want inst.GPR
		ok   bool
	}{
		{"$t0", inst.T0, true},
		{"t0", inst.T0, true},
		{"zero", inst.Zero, true},
		{"$pc", 0, false},
		{"", 0, false},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := inst.LookupRegister(tc.name)
			if ok != tc.ok {
				t.Fatalf("LookupRegister(%q) ok = %v, want %v", tc.name, ok, tc.ok)
			}

			if ok && got != tc.want {
				t.Errorf("LookupRegister(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestOpcodeClassification(t *testing.T) {
	t.Parallel()

	if !inst.Add.IsCore() || inst.Add.IsPseudo() {
		t.Errorf("Add should be core, not pseudo")
	}

	if !inst.La.IsPseudo() || inst.La.IsCore() {
		t.Errorf("La should be pseudo, not core")
	}
}

func TestInstructionString(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   inst.Instruction
		want string
	}{
		{
			name: "r-type",
			in:   inst.Instruction{Opcode: inst.Add, Rd: inst.T0, Rs: inst.T1, Rt: inst.T2},
			want: "add $t0, $t1, $t2",
		},
		{
			name: "i-type arithmetic",
			in:   inst.Instruction{Opcode: inst.Addi, Rt: inst.T0, Rs: inst.T1, Imm: -4},
			want: "addi $t0, $t1, -4",
		},
		{
			name: "load/store",
			in:   inst.Instruction{Opcode: inst.Lw, Rt: inst.T0, Rs: inst.Sp, Imm: 4},
			want: "lw $t0, 4($sp)",
		},
		{
			name: "branch",
			in:   inst.Instruction{Opcode: inst.Beq, Rs: inst.T0, Rt: inst.T1, Label: "loop"},
			want: "beq $t0, $t1, loop",
		},
		{
			name: "jump",
			in:   inst.Instruction{Opcode: inst.Jal, Label: "main"},
			want: "jal main",
		},
		{
			name: "pseudo li",
			in:   inst.Instruction{Opcode: inst.Li, Rt: inst.T0, Imm: 42},
			want: "li $t0, 42",
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.in.String(); got != tc.want {
				t.Errorf("Instruction.String() = %q, want %q", got, tc.want)
			}
		})
	}
}
