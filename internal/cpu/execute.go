package cpu

import (
	"github.com/cslab-edu/gomips32/internal/inst"
)

// execute performs in's effect against the register file and memory and
// reports whether it altered control flow (so Step knows whether to
// advance the PC itself). Ordering within a single instruction follows
// §5: register reads, then arithmetic, then the memory/MMIO side effect,
// then register write-back, then PC update.
func (c *CPU) execute(in inst.Instruction) (branched bool, err error) {
	rf := c.Registers

	switch in.Opcode {
	case inst.Add:
		rf.Set(in.Rd, uint32(int32(rf.Get(in.Rs))+int32(rf.Get(in.Rt))))
	case inst.Addu:
		rf.Set(in.Rd, rf.Get(in.Rs)+rf.Get(in.Rt))
	case inst.Addi:
		rf.Set(in.Rt, uint32(int32(rf.Get(in.Rs))+in.Imm))
	case inst.Addiu:
		rf.Set(in.Rt, rf.Get(in.Rs)+uint32(in.Imm))
	case inst.Sub:
		rf.Set(in.Rd, uint32(int32(rf.Get(in.Rs))-int32(rf.Get(in.Rt))))
	case inst.Subu:
		rf.Set(in.Rd, rf.Get(in.Rs)-rf.Get(in.Rt))
	case inst.And:
		rf.Set(in.Rd, rf.Get(in.Rs)&rf.Get(in.Rt))
	case inst.Andi:
		rf.Set(in.Rt, rf.Get(in.Rs)&uint32(uint16(in.Imm)))
	case inst.Or:
		rf.Set(in.Rd, rf.Get(in.Rs)|rf.Get(in.Rt))
	case inst.Ori:
		rf.Set(in.Rt, rf.Get(in.Rs)|uint32(uint16(in.Imm)))
	case inst.Xor:
		rf.Set(in.Rd, rf.Get(in.Rs)^rf.Get(in.Rt))
	case inst.Xori:
		rf.Set(in.Rt, rf.Get(in.Rs)^uint32(uint16(in.Imm)))
	case inst.Nor:
		rf.Set(in.Rd, ^(rf.Get(in.Rs) | rf.Get(in.Rt)))
	case inst.Sll:
		rf.Set(in.Rd, rf.Get(in.Rt)<<uint32(in.Imm))
	case inst.Srl:
		rf.Set(in.Rd, rf.Get(in.Rt)>>uint32(in.Imm))
	case inst.Sra:
		rf.Set(in.Rd, uint32(int32(rf.Get(in.Rt))>>uint32(in.Imm)))
	case inst.Slt:
		rf.Set(in.Rd, boolToWord(int32(rf.Get(in.Rs)) < int32(rf.Get(in.Rt))))
	case inst.Sltu:
		rf.Set(in.Rd, boolToWord(rf.Get(in.Rs) < rf.Get(in.Rt)))
	case inst.Slti:
		rf.Set(in.Rt, boolToWord(int32(rf.Get(in.Rs)) < in.Imm))
	case inst.Sltiu:
		rf.Set(in.Rt, boolToWord(rf.Get(in.Rs) < uint32(in.Imm)))
	case inst.Lui:
		rf.Set(in.Rt, uint32(in.Imm)<<16)

	case inst.Lw:
		return false, c.load(in, 4)
	case inst.Sw:
		return false, c.store(in, 4)
	case inst.Lh:
		return false, c.load(in, 2)
	case inst.Sh:
		return false, c.store(in, 2)
	case inst.Lb:
		return false, c.load(in, 1)
	case inst.Sb:
		return false, c.store(in, 1)

	case inst.J:
		return c.jump(in.Label)
	case inst.Jal:
		c.validation.push(rf)
		rf.Set(inst.Ra, rf.PC+4)

		return c.jump(in.Label)
	case inst.Jr:
		return c.jumpRegister(in.Rs)

	case inst.Beq:
		if rf.Get(in.Rs) == rf.Get(in.Rt) {
			return c.jump(in.Label)
		}
	case inst.Bne:
		if rf.Get(in.Rs) != rf.Get(in.Rt) {
			return c.jump(in.Label)
		}

	case inst.Mult:
		prod := int64(int32(rf.Get(in.Rs))) * int64(int32(rf.Get(in.Rt)))
		rf.Hi = uint32(uint64(prod) >> 32)
		rf.Lo = uint32(prod)
	case inst.Multu:
		prod := uint64(rf.Get(in.Rs)) * uint64(rf.Get(in.Rt))
		rf.Hi = uint32(prod >> 32)
		rf.Lo = uint32(prod)
	case inst.Div:
		if rf.Get(in.Rt) == 0 {
			return false, ErrDivideByZero
		}

		a, b := int32(rf.Get(in.Rs)), int32(rf.Get(in.Rt))
		rf.Lo = uint32(a / b)
		rf.Hi = uint32(a % b)
	case inst.Divu:
		if rf.Get(in.Rt) == 0 {
			return false, ErrDivideByZero
		}

		a, b := rf.Get(in.Rs), rf.Get(in.Rt)
		rf.Lo = a / b
		rf.Hi = a % b
	case inst.Mfhi:
		rf.Set(in.Rd, rf.Hi)
	case inst.Mflo:
		rf.Set(in.Rd, rf.Lo)

	default:
		panic("cpu: unreachable opcode " + in.Opcode.String())
	}

	return false, nil
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}

	return 0
}

// jump resolves label against the loaded program and sets PC to its
// address.
func (c *CPU) jump(label string) (bool, error) {
	addr, ok := c.program.GetLabelAddress(label)
	if !ok {
		return false, &UndefinedLabelError{Label: label}
	}

	c.Registers.PC = addr

	return true, nil
}

// jumpRegister implements jr, including the jal/jr $ra calling-convention
// check.
func (c *CPU) jumpRegister(rs inst.GPR) (bool, error) {
	target := c.Registers.Get(rs)

	if rs == inst.Ra {
		if err := c.validation.pop(c.Registers); err != nil {
			return false, err
		}
	}

	if target%4 != 0 {
		return false, &UnalignedAccessError{Addr: target}
	}

	if _, ok := c.program.PCToIndex(target); !ok {
		return false, &InvalidJumpError{Addr: target}
	}

	c.Registers.PC = target

	return true, nil
}

func (c *CPU) effectiveAddr(in inst.Instruction) uint32 {
	return uint32(int32(c.Registers.Get(in.Rs)) + in.Imm)
}

func (c *CPU) load(in inst.Instruction, size int) error {
	addr := c.effectiveAddr(in)

	if size >= 2 && addr%uint32(size) != 0 {
		return &UnalignedAccessError{Addr: addr}
	}

	switch size {
	case 4:
		v, err := c.Memory.LoadWord(addr)
		if err != nil {
			return err
		}

		c.Registers.Set(in.Rt, uint32(v))
	case 2:
		v, err := c.Memory.LoadHalfword(addr)
		if err != nil {
			return err
		}

		c.Registers.Set(in.Rt, uint32(uint16(v)))
	case 1:
		v, err := c.Memory.LoadByte(addr)
		if err != nil {
			return err
		}

		c.Registers.Set(in.Rt, uint32(uint8(v)))
	}

	c.lastMem = LastMemAccess{Addr: addr, Size: size, Set: true}

	return nil
}

func (c *CPU) store(in inst.Instruction, size int) error {
	addr := c.effectiveAddr(in)

	if size >= 2 && addr%uint32(size) != 0 {
		return &UnalignedAccessError{Addr: addr}
	}

	v := c.Registers.Get(in.Rt)

	var err error

	switch size {
	case 4:
		err = c.Memory.SetWord(addr, int32(v))
	case 2:
		err = c.Memory.SetHalfword(addr, int16(uint16(v)))
	case 1:
		err = c.Memory.SetByte(addr, int8(uint8(v)))
	}

	if err != nil {
		return err
	}

	c.lastMem = LastMemAccess{Addr: addr, Size: size, Set: true}

	return nil
}
