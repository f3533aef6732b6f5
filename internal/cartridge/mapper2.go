package cartridge

// mapper2 implements UxROM: a switchable 16 KiB PRG bank at $8000 and a
// fixed-to-last 16 KiB bank at $C000; any write to $8000+ selects the
// switchable bank. CHR is always RAM.
type mapper2 struct {
	prgROM  []uint8
	chrRAM  [0x2000]uint8
	prgBanks uint8
	prgBank  uint8
	mirror   MirrorMode
}

func newMapper2(prgROM, chrROM []uint8, mirror MirrorMode) *mapper2 {
	return &mapper2{
		prgROM:   append([]uint8(nil), prgROM...),
		prgBanks: uint8(len(prgROM) / 0x4000),
		mirror:   mirror,
	}
}

func (m *mapper2) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xC000:
		offset := uint32(m.prgBank)*0x4000 + uint32(addr-0x8000)
		if int(offset) < len(m.prgROM) {
			return m.prgROM[offset]
		}
	case addr >= 0xC000:
		offset := uint32(m.prgBanks-1)*0x4000 + uint32(addr-0xC000)
		if int(offset) < len(m.prgROM) {
			return m.prgROM[offset]
		}
	}
	return 0
}

func (m *mapper2) WritePRG(addr uint16, value uint8) {
	if addr >= 0x8000 {
		m.prgBank = value & (m.prgBanks - 1)
	}
}

func (m *mapper2) ReadCHR(addr uint16) uint8 {
	if addr < 0x2000 {
		return m.chrRAM[addr]
	}
	return 0
}

func (m *mapper2) WriteCHR(addr uint16, value uint8) {
	if addr < 0x2000 {
		m.chrRAM[addr] = value
	}
}

func (m *mapper2) Mirroring() MirrorMode { return m.mirror }
func (m *mapper2) Scanline()             {}
func (m *mapper2) IRQPending() bool      { return false }
func (m *mapper2) ClearIRQ()             {}
func (m *mapper2) Clock()                {}
func (m *mapper2) Reset()                { m.prgBank = 0 }
