package cpu

// execute dispatches an opcode against its resolved DataSource and returns
// whether this instruction is one that takes the generic page-cross penalty
// (a set of "read" instructions in indexed addressing modes). Branches and
// stores handle their own cycle accounting and always return false here.
func (cpu *CPU) execute(opcode uint8, ds DataSource) bool {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		cpu.lda(ds)
		return opcode == 0xBD || opcode == 0xB9 || opcode == 0xB1
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.ldx(ds)
		return opcode == 0xBE
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.ldy(ds)
		return opcode == 0xBC
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		cpu.Store(ds, cpu.A)
	case 0x86, 0x96, 0x8E:
		cpu.Store(ds, cpu.X)
	case 0x84, 0x94, 0x8C:
		cpu.Store(ds, cpu.Y)

	case 0xAA:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case 0x8A:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case 0xA8:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case 0x98:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case 0xBA:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case 0x9A:
		cpu.SP = cpu.X

	case 0x48:
		cpu.push(cpu.A)
	case 0x68:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case 0x08:
		cpu.push(cpu.statusByte(true))
	case 0x28:
		cpu.setStatusByte(cpu.pop())

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		cpu.adc(cpu.Load(ds))
		return opcode == 0x7D || opcode == 0x79 || opcode == 0x71
	case 0xE9, 0xEB, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		cpu.adc(cpu.Load(ds) ^ 0xFF)
		return opcode == 0xFD || opcode == 0xF9 || opcode == 0xF1

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		cpu.A &= cpu.Load(ds)
		cpu.setZN(cpu.A)
		return opcode == 0x3D || opcode == 0x39 || opcode == 0x31
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		cpu.A |= cpu.Load(ds)
		cpu.setZN(cpu.A)
		return opcode == 0x1D || opcode == 0x19 || opcode == 0x11
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		cpu.A ^= cpu.Load(ds)
		cpu.setZN(cpu.A)
		return opcode == 0x5D || opcode == 0x59 || opcode == 0x51

	case 0x0A, 0x06, 0x16, 0x0E, 0x1E:
		cpu.asl(ds)
	case 0x4A, 0x46, 0x56, 0x4E, 0x5E:
		cpu.lsr(ds)
	case 0x2A, 0x26, 0x36, 0x2E, 0x3E:
		cpu.rol(ds)
	case 0x6A, 0x66, 0x76, 0x6E, 0x7E:
		cpu.ror(ds)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		cpu.compare(cpu.A, cpu.Load(ds))
		return opcode == 0xDD || opcode == 0xD9 || opcode == 0xD1
	case 0xE0, 0xE4, 0xEC:
		cpu.compare(cpu.X, cpu.Load(ds))
	case 0xC0, 0xC4, 0xCC:
		cpu.compare(cpu.Y, cpu.Load(ds))

	case 0xE6, 0xF6, 0xEE, 0xFE:
		v := cpu.Load(ds) + 1
		cpu.Store(ds, v)
		cpu.setZN(v)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		v := cpu.Load(ds) - 1
		cpu.Store(ds, v)
		cpu.setZN(v)
	case 0xE8:
		cpu.X++
		cpu.setZN(cpu.X)
	case 0xCA:
		cpu.X--
		cpu.setZN(cpu.X)
	case 0xC8:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case 0x88:
		cpu.Y--
		cpu.setZN(cpu.Y)

	case 0x4C, 0x6C:
		cpu.PC = ds.Addr
	case 0x20:
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = ds.Addr
	case 0x60:
		cpu.PC = cpu.popWord() + 1
	case 0x40:
		cpu.setStatusByte(cpu.pop())
		cpu.PC = cpu.popWord()

	case 0x90:
		cpu.branch(!cpu.C, ds)
	case 0xB0:
		cpu.branch(cpu.C, ds)
	case 0xD0:
		cpu.branch(!cpu.Z, ds)
	case 0xF0:
		cpu.branch(cpu.Z, ds)
	case 0x10:
		cpu.branch(!cpu.N, ds)
	case 0x30:
		cpu.branch(cpu.N, ds)
	case 0x50:
		cpu.branch(!cpu.V, ds)
	case 0x70:
		cpu.branch(cpu.V, ds)

	case 0x24, 0x2C:
		m := cpu.Load(ds)
		cpu.Z = (cpu.A & m) == 0
		cpu.V = m&vFlagMask != 0
		cpu.N = m&nFlagMask != 0

	case 0x18:
		cpu.C = false
	case 0x38:
		cpu.C = true
	case 0x58:
		cpu.I = false
	case 0x78:
		cpu.I = true
	case 0xB8:
		cpu.V = false
	case 0xD8:
		cpu.D = false
	case 0xF8:
		cpu.D = true

	case 0xEA:
		// NOP
	case 0x00:
		cpu.brk()

	case 0xA7, 0xB7, 0xAF, 0xBF, 0xA3, 0xB3:
		cpu.A = cpu.Load(ds)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
		return opcode == 0xBF
	case 0x87, 0x97, 0x8F, 0x83:
		cpu.Store(ds, cpu.A&cpu.X)

	case 0xC7, 0xD7, 0xCF, 0xDF, 0xDB, 0xC3, 0xD3:
		v := cpu.Load(ds) - 1
		cpu.Store(ds, v)
		cpu.compare(cpu.A, v)
	case 0xE7, 0xF7, 0xEF, 0xFF, 0xFB, 0xE3, 0xF3:
		v := cpu.Load(ds) + 1
		cpu.Store(ds, v)
		cpu.adc(v ^ 0xFF)
	case 0x07, 0x17, 0x0F, 0x1F, 0x1B, 0x03, 0x13:
		v := cpu.Load(ds)
		carry := v&0x80 != 0
		v <<= 1
		cpu.Store(ds, v)
		cpu.C = carry
		cpu.A |= v
		cpu.setZN(cpu.A)
	case 0x27, 0x37, 0x2F, 0x3F, 0x3B, 0x23, 0x33:
		v := cpu.Load(ds)
		oldCarry := cpu.C
		cpu.C = v&0x80 != 0
		v <<= 1
		if oldCarry {
			v |= 1
		}
		cpu.Store(ds, v)
		cpu.A &= v
		cpu.setZN(cpu.A)
	case 0x47, 0x57, 0x4F, 0x5F, 0x5B, 0x43, 0x53:
		v := cpu.Load(ds)
		cpu.C = v&0x01 != 0
		v >>= 1
		cpu.Store(ds, v)
		cpu.A ^= v
		cpu.setZN(cpu.A)
	case 0x67, 0x77, 0x6F, 0x7F, 0x7B, 0x63, 0x73:
		v := cpu.Load(ds)
		oldCarry := cpu.C
		cpu.C = v&0x01 != 0
		v >>= 1
		if oldCarry {
			v |= 0x80
		}
		cpu.Store(ds, v)
		cpu.adc(v)

	default:
		// Remaining undocumented NOPs of various addressing modes: consume
		// the operand (already done by decodeOperand) and do nothing else.
		if ds.Kind == SourceAddress {
			_ = cpu.memory.Read(ds.Addr)
		}
	}
	return false
}

func (cpu *CPU) lda(ds DataSource) {
	cpu.A = cpu.Load(ds)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) ldx(ds DataSource) {
	cpu.X = cpu.Load(ds)
	cpu.setZN(cpu.X)
}

func (cpu *CPU) ldy(ds DataSource) {
	cpu.Y = cpu.Load(ds)
	cpu.setZN(cpu.Y)
}

// adc implements the 9-bit ADC contract; SBC calls this with the operand
// one's-complemented.
func (cpu *CPU) adc(m uint8) {
	carryIn := uint16(0)
	if cpu.C {
		carryIn = 1
	}
	a := uint16(cpu.A)
	sum := a + uint16(m) + carryIn
	result := uint8(sum)

	cpu.C = sum > 0xFF
	cpu.V = (uint8(a)^result)&^(uint8(a)^m)&0x80 != 0
	cpu.A = result
	cpu.setZN(cpu.A)
}

func (cpu *CPU) compare(reg, m uint8) {
	cpu.C = reg >= m
	cpu.setZN(reg - m)
}

func (cpu *CPU) asl(ds DataSource) {
	v := cpu.Load(ds)
	cpu.C = v&0x80 != 0
	v <<= 1
	cpu.Store(ds, v)
	cpu.setZN(v)
}

func (cpu *CPU) lsr(ds DataSource) {
	v := cpu.Load(ds)
	cpu.C = v&0x01 != 0
	v >>= 1
	cpu.Store(ds, v)
	cpu.setZN(v)
}

func (cpu *CPU) rol(ds DataSource) {
	v := cpu.Load(ds)
	oldCarry := cpu.C
	cpu.C = v&0x80 != 0
	v <<= 1
	if oldCarry {
		v |= 1
	}
	cpu.Store(ds, v)
	cpu.setZN(v)
}

func (cpu *CPU) ror(ds DataSource) {
	v := cpu.Load(ds)
	oldCarry := cpu.C
	cpu.C = v&0x01 != 0
	v >>= 1
	if oldCarry {
		v |= 0x80
	}
	cpu.Store(ds, v)
	cpu.setZN(v)
}

// branch adds one cycle when taken and one more if the branch target
// crosses a page, per the addressing-mode-reported crossed flag; ds.Addr is
// always valid for Relative mode even when not taken.
func (cpu *CPU) branch(taken bool, ds DataSource) {
	if !taken {
		return
	}
	oldPC := cpu.PC
	cpu.PC = ds.Addr
	cpu.residual++
	if (oldPC & 0xFF00) != (ds.Addr & 0xFF00) {
		cpu.residual++
	}
}

// brk pushes PC (the address after BRK's padding byte, per the two-byte BRK
// instruction convention) and status with Break and Unused set, then
// vectors via 0xFFFE.
func (cpu *CPU) brk() {
	cpu.PC++ // BRK's padding byte
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.statusByte(true))
	cpu.I = true
	lo := uint16(cpu.memory.Read(irqVector))
	hi := uint16(cpu.memory.Read(irqVector + 1))
	cpu.PC = (hi << 8) | lo
}
