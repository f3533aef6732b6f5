// Package memory implements the NES CPU address space: internal RAM,
// PPU/APU register mirroring, controller ports, and cartridge PRG
// routing. PPU-side VRAM (nametables, palette, pattern tables) lives on
// the PPU itself and the cartridge, not here.
package memory

// PPUInterface is the PPU's CPU-facing register surface.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface is the APU's CPU-facing register surface.
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface is the controller ports' CPU-facing surface.
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface is the PRG-side surface a mapper exposes to the CPU.
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
}

// Memory is the NES CPU memory map.
type Memory struct {
	ram [0x800]uint8

	ppuRegisters PPUInterface
	apuRegisters APUInterface
	inputSystem  InputInterface
	cartridge    CartridgeInterface

	dmaCallback func(page uint8)

	// openBusValue is the last byte that crossed the bus, returned for
	// reads of write-only or unhandled registers in $4000-$401F. Unmapped
	// regions, including cartridge space with no cartridge loaded, read 0.
	openBusValue uint8
}

// New creates a Memory instance wired to the given components. cart may be
// nil before a cartridge is loaded.
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	return &Memory{
		ppuRegisters: ppu,
		apuRegisters: apu,
		cartridge:    cart,
	}
}

// SetInputSystem wires the controller ports.
func (m *Memory) SetInputSystem(input InputInterface) { m.inputSystem = input }

// SetDMACallback installs the handler invoked on a write to $4014 (OAM
// DMA). The bus orchestrator uses this to start its cycle-stepped DMA
// state machine rather than performing the transfer inline.
func (m *Memory) SetDMACallback(callback func(page uint8)) { m.dmaCallback = callback }

// Read reads a byte from CPU address space.
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		value = m.ppuRegisters.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch address {
		case 0x4015:
			value = m.apuRegisters.ReadStatus()
		case 0x4016, 0x4017:
			if m.inputSystem != nil {
				value = m.inputSystem.Read(address)
			}
		default:
			value = m.openBusValue
		}

	case address >= 0x6000 && address < 0x8000:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
		}

	case address < 0x8000:
		// Cartridge expansion area ($4020-$5FFF): unmapped, reads as 0.

	default:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
		}
	}

	m.openBusValue = value
	return value
}

// Write writes a byte to CPU address space.
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppuRegisters.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			}
		case address == 0x4016:
			if m.inputSystem != nil {
				m.inputSystem.Write(address, value)
			}
		case address >= 0x4000 && address <= 0x4013, address == 0x4015, address == 0x4017:
			m.apuRegisters.WriteRegister(address, value)
		}
		// $4018-$401F (APU/IO test mode) are ignored.

	case address >= 0x6000 && address < 0x8000:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}

	case address < 0x8000:
		// Cartridge expansion area ($4020-$5FFF), unmapped on all
		// supported mappers.

	default:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}
	}
}
