// Package ppu implements the NES Picture Processing Unit (2C02): a
// 341-dot by 262-scanline shift-register pipeline driving a 256x240 frame
// buffer, independent of the CPU's clock but ticked 3 times per CPU cycle
// by the bus.
package ppu

import "nescore/internal/cartridge"

// Screen and timing constants (NTSC).
const (
	ScreenWidth  = 256
	ScreenHeight = 240

	CyclesPerScanline = 341
	ScanlinesPerFrame = 262
)

// ChrMapper is the subset of cartridge.Mapper the PPU needs: pattern-table
// access and the mapper's current nametable mirroring mode.
type ChrMapper interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	Mirroring() cartridge.MirrorMode
	Scanline()
}

// PPU is the NES 2C02 picture processing unit.
type PPU struct {
	// CPU-visible registers ($2000-$2007).
	ctrl       uint8
	mask       uint8
	status     uint8
	oamAddr    uint8
	readBuffer uint8 // internal $2007 read-ahead buffer
	busLatch   uint8 // decayed open-bus value from the last register access

	// Loopy scroll registers.
	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address / scroll latch (15 bits)
	x uint8  // fine X scroll (3 bits)
	w bool   // write toggle for $2005/$2006

	oam          [256]uint8
	secondaryOAM [32]uint8

	nametable  [2048]uint8
	paletteRAM [32]uint8

	mapper ChrMapper

	scanline int
	cycle    int
	frame    uint64
	oddFrame bool

	frameComplete bool
	nmiAsserted   bool

	// Background fetch pipeline.
	bgNextTileID   uint8
	bgNextAttrib   uint8
	bgNextLow      uint8
	bgNextHigh     uint8
	bgShiftLow     uint16
	bgShiftHigh    uint16
	bgShiftAttrLow uint16
	bgShiftAttrHi  uint16

	// Sprite pipeline.
	spriteCount      uint8
	sprite0Present   bool
	spriteShiftLow   [8]uint8
	spriteShiftHigh  [8]uint8
	spriteAttributes [8]uint8
	spriteX          [8]uint8
	spriteIsZero     [8]bool

	frameBuffer [ScreenWidth * ScreenHeight]uint32
}

// New creates a PPU at power-on state.
func New() *PPU {
	return &PPU{scanline: 0, cycle: 0}
}

// SetMapper connects the cartridge's CHR access and mirroring mode.
func (p *PPU) SetMapper(mapper ChrMapper) { p.mapper = mapper }

// Reset restores power-on register state without clearing OAM or VRAM.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.readBuffer = 0
	p.busLatch = 0
	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false
	p.scanline = 0
	p.cycle = 0
	p.nmiAsserted = false
}

// NMI reports and clears the pending NMI edge raised at VBlank start or on
// an enable-bit 0->1 transition while VBlank is already asserted.
func (p *PPU) NMI() bool {
	n := p.nmiAsserted
	p.nmiAsserted = false
	return n
}

// FrameBuffer returns the current RGB frame buffer.
func (p *PPU) FrameBuffer() *[ScreenWidth * ScreenHeight]uint32 { return &p.frameBuffer }

// FrameComplete reports and clears whether a frame just finished.
func (p *PPU) FrameComplete() bool {
	c := p.frameComplete
	p.frameComplete = false
	return c
}

// Scanline returns the current scanline (-1..260), for save states and
// debugging.
func (p *PPU) Scanline() int { return p.scanline }

// Cycle returns the current dot within the scanline (0..340), for save
// states and debugging.
func (p *PPU) Cycle() int { return p.cycle }

// NMIEnabled reports whether PPUCTRL bit 7 currently enables VBlank NMIs.
func (p *PPU) NMIEnabled() bool { return p.ctrl&0x80 != 0 }

// VBlankFlag reports PPUSTATUS bit 7 without the read-and-clear side
// effect a real $2002 access has.
func (p *PPU) VBlankFlag() bool { return p.status&0x80 != 0 }

// RenderingEnabled reports whether background or sprite rendering is on.
func (p *PPU) RenderingEnabled() bool { return p.renderingEnabled() }

func (p *PPU) renderingEnabled() bool { return p.mask&0x18 != 0 }

// Clock advances the PPU by one dot.
func (p *PPU) Clock() {
	if p.scanline >= 0 && p.scanline < 240 && p.cycle >= 1 && p.cycle <= 256 {
		p.renderPixel()
	}

	if p.scanline >= -1 && p.scanline < 240 {
		if p.scanline == -1 && p.cycle == 1 {
			p.status &^= 0xE0
		}

		if (p.cycle >= 2 && p.cycle < 258) || (p.cycle >= 321 && p.cycle < 338) {
			p.updateShifters()
			p.fetchBackgroundByte()
		}

		if p.cycle == 256 {
			if p.renderingEnabled() {
				p.incrementY()
			}
		}

		if p.cycle == 257 {
			p.loadBackgroundShifters()
			if p.renderingEnabled() {
				p.copyX()
			}
			p.evaluateSprites()
		}

		if p.cycle == 320 {
			p.fetchSpritePatterns()
		}

		if p.cycle == 338 || p.cycle == 340 {
			p.bgNextTileID = p.readVRAM(0x2000 | (p.v & 0x0FFF))
		}

		if p.scanline == -1 && p.cycle >= 280 && p.cycle < 305 {
			if p.renderingEnabled() {
				p.copyY()
			}
		}

		if p.mapper != nil && p.cycle == 260 && p.renderingEnabled() {
			p.mapper.Scanline()
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status |= 0x80
		if p.ctrl&0x80 != 0 {
			p.nmiAsserted = true
		}
	}

	p.cycle++
	if p.cycle >= CyclesPerScanline {
		p.cycle = 0
		p.scanline++
		if p.scanline == 0 && p.frame&1 == 1 && p.renderingEnabled() {
			p.cycle = 1
		}
		if p.scanline >= ScanlinesPerFrame-1 {
			p.scanline = -1
			p.frame++
			p.oddFrame = !p.oddFrame
			p.frameComplete = true
		}
	}
}
