package cpu

// decodeOperand resolves an addressing mode into a DataSource, consuming
// whatever operand bytes the mode requires from the instruction stream, and
// reports whether an indexed calculation crossed a page boundary (the
// addressing-mode half of the page-cross-penalty contract; the instruction
// itself decides whether that penalty actually applies).
func (cpu *CPU) decodeOperand(mode AddressingMode) (DataSource, bool) {
	switch mode {
	case Implied:
		return DataSource{Kind: SourceImplicit}, false

	case Accumulator:
		return DataSource{Kind: SourceAccumulator}, false

	case Immediate:
		addr := cpu.PC
		cpu.PC++
		return DataSource{Kind: SourceAddress, Addr: addr}, false

	case ZeroPage:
		addr := uint16(cpu.memory.Read(cpu.PC))
		cpu.PC++
		return DataSource{Kind: SourceAddress, Addr: addr}, false

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		addr := uint16(base + cpu.X) // wraps in zero page
		return DataSource{Kind: SourceAddress, Addr: addr}, false

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		addr := uint16(base + cpu.Y)
		return DataSource{Kind: SourceAddress, Addr: addr}, false

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC))
		cpu.PC++
		addr := uint16(int32(cpu.PC) + int32(offset))
		crossed := (addr & 0xFF00) != (cpu.PC & 0xFF00)
		return DataSource{Kind: SourceAddress, Addr: addr}, crossed

	case Absolute:
		addr := cpu.readWord(cpu.PC)
		cpu.PC += 2
		return DataSource{Kind: SourceAddress, Addr: addr}, false

	case AbsoluteX:
		base := cpu.readWord(cpu.PC)
		cpu.PC += 2
		addr := base + uint16(cpu.X)
		crossed := (base & 0xFF00) != (addr & 0xFF00)
		return DataSource{Kind: SourceAddress, Addr: addr}, crossed

	case AbsoluteY:
		base := cpu.readWord(cpu.PC)
		cpu.PC += 2
		addr := base + uint16(cpu.Y)
		crossed := (base & 0xFF00) != (addr & 0xFF00)
		return DataSource{Kind: SourceAddress, Addr: addr}, crossed

	case Indirect:
		ptr := cpu.readWord(cpu.PC)
		cpu.PC += 2
		addr := cpu.readWordBuggy(ptr)
		return DataSource{Kind: SourceAddress, Addr: addr}, false

	case IndexedIndirect:
		zp := cpu.memory.Read(cpu.PC)
		cpu.PC++
		ptr := zp + cpu.X
		addr := cpu.readWordZeroPage(ptr)
		return DataSource{Kind: SourceAddress, Addr: addr}, false

	case IndirectIndexed:
		zp := cpu.memory.Read(cpu.PC)
		cpu.PC++
		base := cpu.readWordZeroPage(zp)
		addr := base + uint16(cpu.Y)
		crossed := (base & 0xFF00) != (addr & 0xFF00)
		return DataSource{Kind: SourceAddress, Addr: addr}, crossed
	}
	return DataSource{Kind: SourceImplicit}, false
}

func (cpu *CPU) readWord(addr uint16) uint16 {
	lo := uint16(cpu.memory.Read(addr))
	hi := uint16(cpu.memory.Read(addr + 1))
	return (hi << 8) | lo
}

// readWordBuggy reproduces the 6502 indirect-JMP page-wrap bug: when the
// pointer's low byte is 0xFF, the high byte is fetched from the start of the
// same page rather than the next one.
func (cpu *CPU) readWordBuggy(ptr uint16) uint16 {
	lo := uint16(cpu.memory.Read(ptr))
	var hiAddr uint16
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr & 0xFF00
	} else {
		hiAddr = ptr + 1
	}
	hi := uint16(cpu.memory.Read(hiAddr))
	return (hi << 8) | lo
}

// readWordZeroPage reads a little-endian pointer that itself wraps within
// zero page (used by (zp,X) and (zp),Y).
func (cpu *CPU) readWordZeroPage(zp uint8) uint16 {
	lo := uint16(cpu.memory.Read(uint16(zp)))
	hi := uint16(cpu.memory.Read(uint16(zp + 1)))
	return (hi << 8) | lo
}
