package cartridge

// mapper1 implements MMC1: a serial 5-bit shift register loaded one bit per
// CPU write (bit 7 set resets it and forces PRG mode 3); on the 5th bit the
// accumulated value is latched into one of four internal registers selected
// by which address range received the write.
type mapper1 struct {
	prgROM []uint8
	chrMem []uint8
	prgRAM [0x2000]uint8

	prgBanks uint8
	chrBanks uint8
	chrIsRAM bool

	shiftRegister uint8
	shiftCount    uint8

	mirroring uint8 // 0=1scA 1=1scB 2=vertical 3=horizontal
	prgMode   uint8
	chrMode   uint8

	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8

	prgRAMEnabled bool
}

func newMapper1(prgROM, chrROM []uint8, chrIsRAM bool) *mapper1 {
	m := &mapper1{
		prgROM:        append([]uint8(nil), prgROM...),
		prgBanks:      uint8(len(prgROM) / 0x4000),
		shiftRegister: 0x10,
		prgMode:       3,
		prgRAMEnabled: true,
	}
	if chrIsRAM || len(chrROM) == 0 {
		m.chrMem = make([]uint8, 0x2000)
		m.chrBanks = 2
		m.chrIsRAM = true
	} else {
		m.chrMem = append([]uint8(nil), chrROM...)
		m.chrBanks = uint8(len(chrROM) / 0x1000)
	}
	return m
}

func (m *mapper1) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			return m.prgRAM[addr-0x6000]
		}
		return 0

	case addr >= 0x8000 && addr < 0xC000:
		var bank uint8
		switch m.prgMode {
		case 0, 1:
			bank = m.prgBank & 0xFE
		case 2:
			bank = 0
		case 3:
			bank = m.prgBank
		}
		offset := uint32(bank)*0x4000 + uint32(addr-0x8000)
		if int(offset) < len(m.prgROM) {
			return m.prgROM[offset]
		}

	case addr >= 0xC000:
		var bank uint8
		switch m.prgMode {
		case 0, 1:
			bank = (m.prgBank & 0xFE) | 1
		case 2:
			bank = m.prgBank
		case 3:
			bank = m.prgBanks - 1
		}
		offset := uint32(bank)*0x4000 + uint32(addr-0xC000)
		if int(offset) < len(m.prgROM) {
			return m.prgROM[offset]
		}
	}
	return 0
}

func (m *mapper1) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			m.prgRAM[addr-0x6000] = value
		}

	case addr >= 0x8000:
		if value&0x80 != 0 {
			m.shiftRegister = 0x10
			m.shiftCount = 0
			m.prgMode = 3
			return
		}
		m.shiftRegister >>= 1
		m.shiftRegister |= (value & 1) << 4
		m.shiftCount++
		if m.shiftCount == 5 {
			m.writeRegister(addr, m.shiftRegister)
			m.shiftRegister = 0x10
			m.shiftCount = 0
		}
	}
}

func (m *mapper1) writeRegister(addr uint16, value uint8) {
	switch {
	case addr < 0xA000:
		m.mirroring = value & 0x03
		m.prgMode = (value >> 2) & 0x03
		m.chrMode = (value >> 4) & 0x01
	case addr < 0xC000:
		m.chrBank0 = value & 0x1F
	case addr < 0xE000:
		m.chrBank1 = value & 0x1F
	default:
		m.prgBank = value & 0x0F
		m.prgRAMEnabled = value&0x10 == 0
	}
}

func (m *mapper1) chrOffset(addr uint16) uint32 {
	if m.chrMode == 0 {
		bank := m.chrBank0 & 0xFE
		if addr >= 0x1000 {
			bank |= 1
		}
		return uint32(bank)*0x1000 + uint32(addr&0x0FFF)
	}
	if addr < 0x1000 {
		return uint32(m.chrBank0)*0x1000 + uint32(addr)
	}
	return uint32(m.chrBank1)*0x1000 + uint32(addr-0x1000)
}

func (m *mapper1) ReadCHR(addr uint16) uint8 {
	offset := m.chrOffset(addr)
	if int(offset) < len(m.chrMem) {
		return m.chrMem[offset]
	}
	return 0
}

func (m *mapper1) WriteCHR(addr uint16, value uint8) {
	if !m.chrIsRAM {
		return
	}
	offset := m.chrOffset(addr)
	if int(offset) < len(m.chrMem) {
		m.chrMem[offset] = value
	}
}

func (m *mapper1) Mirroring() MirrorMode {
	switch m.mirroring {
	case 0:
		return MirrorSingleScreen0
	case 1:
		return MirrorSingleScreen1
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mapper1) Scanline()        {}
func (m *mapper1) IRQPending() bool { return false }
func (m *mapper1) ClearIRQ()        {}
func (m *mapper1) Clock()           {}

func (m *mapper1) Reset() {
	m.shiftRegister = 0x10
	m.shiftCount = 0
	m.prgMode = 3
}
