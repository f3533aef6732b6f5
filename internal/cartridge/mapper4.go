package cartridge

// mapper4 implements MMC3: two independently-configurable 8 KiB PRG windows
// plus a mode-selected fixed/swappable pair, six CHR windows (two 2 KiB +
// four 1 KiB, with a mode bit swapping which half gets the finer
// granularity), a scanline-counted IRQ, and a mirroring/PRG-RAM control
// register pair.
type mapper4 struct {
	prgROM []uint8
	chrBuf []uint8
	prgRAM [0x2000]uint8

	prgBanks uint8
	chrIsRAM bool

	bankSelect uint8
	prgMode    uint8
	chrMode    uint8

	registers [8]uint8

	mirroring MirrorMode

	prgRAMEnabled      bool
	prgRAMWriteProtect bool

	irqLatch      uint8
	irqCounter    uint8
	irqEnabled    bool
	irqPending    bool
	irqReloadFlag bool
}

func newMapper4(prgROM, chrROM []uint8, chrIsRAM bool, mirror MirrorMode) *mapper4 {
	m := &mapper4{
		prgROM:        append([]uint8(nil), prgROM...),
		prgBanks:      uint8(len(prgROM) / 0x2000),
		mirroring:     mirror,
		prgRAMEnabled: true,
	}
	if chrIsRAM || len(chrROM) == 0 {
		m.chrBuf = make([]uint8, 0x2000)
		m.chrIsRAM = true
	} else {
		m.chrBuf = append([]uint8(nil), chrROM...)
	}
	return m
}

func (m *mapper4) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			return m.prgRAM[addr-0x6000]
		}
		return 0

	case addr >= 0x8000 && addr < 0xA000:
		var bank uint8
		if m.prgMode == 0 {
			bank = m.registers[6]
		} else {
			bank = m.prgBanks - 2
		}
		return m.prgAt(bank, addr-0x8000)

	case addr >= 0xA000 && addr < 0xC000:
		return m.prgAt(m.registers[7], addr-0xA000)

	case addr >= 0xC000 && addr < 0xE000:
		var bank uint8
		if m.prgMode == 0 {
			bank = m.prgBanks - 2
		} else {
			bank = m.registers[6]
		}
		return m.prgAt(bank, addr-0xC000)

	case addr >= 0xE000:
		return m.prgAt(m.prgBanks-1, addr-0xE000)
	}
	return 0
}

func (m *mapper4) prgAt(bank uint8, offsetInBank uint16) uint8 {
	offset := uint32(bank)*0x2000 + uint32(offsetInBank)
	if int(offset) < len(m.prgROM) {
		return m.prgROM[offset]
	}
	return 0
}

func (m *mapper4) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled && !m.prgRAMWriteProtect {
			m.prgRAM[addr-0x6000] = value
		}

	case addr >= 0x8000 && addr < 0xA000:
		if addr&1 == 0 {
			m.bankSelect = value & 0x07
			m.prgMode = (value >> 6) & 0x01
			m.chrMode = (value >> 7) & 0x01
		} else {
			m.registers[m.bankSelect] = value
		}

	case addr >= 0xA000 && addr < 0xC000:
		if addr&1 == 0 {
			if value&1 == 0 {
				m.mirroring = MirrorVertical
			} else {
				m.mirroring = MirrorHorizontal
			}
		} else {
			m.prgRAMWriteProtect = value&0x40 != 0
			m.prgRAMEnabled = value&0x80 != 0
		}

	case addr >= 0xC000 && addr < 0xE000:
		if addr&1 == 0 {
			m.irqLatch = value
		} else {
			m.irqCounter = 0
			m.irqReloadFlag = true
		}

	case addr >= 0xE000:
		if addr&1 == 0 {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mapper4) chrOffset(addr uint16) uint32 {
	if m.chrMode == 0 {
		switch {
		case addr < 0x0800:
			return uint32(m.registers[0]&0xFE)*0x400 + uint32(addr)
		case addr < 0x1000:
			return uint32(m.registers[1]&0xFE)*0x400 + uint32(addr-0x0800)
		case addr < 0x1400:
			return uint32(m.registers[2])*0x400 + uint32(addr-0x1000)
		case addr < 0x1800:
			return uint32(m.registers[3])*0x400 + uint32(addr-0x1400)
		case addr < 0x1C00:
			return uint32(m.registers[4])*0x400 + uint32(addr-0x1800)
		default:
			return uint32(m.registers[5])*0x400 + uint32(addr-0x1C00)
		}
	}
	switch {
	case addr < 0x0400:
		return uint32(m.registers[2])*0x400 + uint32(addr)
	case addr < 0x0800:
		return uint32(m.registers[3])*0x400 + uint32(addr-0x0400)
	case addr < 0x0C00:
		return uint32(m.registers[4])*0x400 + uint32(addr-0x0800)
	case addr < 0x1000:
		return uint32(m.registers[5])*0x400 + uint32(addr-0x0C00)
	case addr < 0x1800:
		return uint32(m.registers[0]&0xFE)*0x400 + uint32(addr-0x1000)
	default:
		return uint32(m.registers[1]&0xFE)*0x400 + uint32(addr-0x1800)
	}
}

func (m *mapper4) ReadCHR(addr uint16) uint8 {
	offset := m.chrOffset(addr)
	if int(offset) < len(m.chrBuf) {
		return m.chrBuf[offset]
	}
	return 0
}

func (m *mapper4) WriteCHR(addr uint16, value uint8) {
	if !m.chrIsRAM {
		return
	}
	offset := m.chrOffset(addr)
	if int(offset) < len(m.chrBuf) {
		m.chrBuf[offset] = value
	}
}

func (m *mapper4) Mirroring() MirrorMode { return m.mirroring }

// Scanline implements the MMC3 IRQ counter: reload (from the latch) when it
// is zero or a reload was requested, otherwise decrement; assert IRQ when
// the decrement lands on zero and IRQs are enabled.
func (m *mapper4) Scanline() {
	if m.irqCounter == 0 || m.irqReloadFlag {
		m.irqCounter = m.irqLatch
		m.irqReloadFlag = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mapper4) IRQPending() bool { return m.irqPending }
func (m *mapper4) ClearIRQ()        { m.irqPending = false }
func (m *mapper4) Clock()           {}

func (m *mapper4) Reset() {
	m.bankSelect = 0
	m.prgMode = 0
	m.chrMode = 0
	m.registers = [8]uint8{}
	m.irqLatch = 0
	m.irqCounter = 0
	m.irqEnabled = false
	m.irqPending = false
	m.irqReloadFlag = false
}
