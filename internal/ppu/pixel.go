package ppu

// renderPixel composes the background and sprite shift-register outputs
// into one frame-buffer pixel, per NES priority rules, and updates
// sprite-zero hit.
func (p *PPU) renderPixel() {
	x := p.cycle - 1
	y := p.scanline

	var bgPixel, bgPalette uint8
	if p.mask&0x08 != 0 && (x >= 8 || p.mask&0x02 != 0) {
		bitMux := uint16(0x8000) >> p.x
		var p0, p1 uint8
		if p.bgShiftLow&bitMux != 0 {
			p0 = 1
		}
		if p.bgShiftHigh&bitMux != 0 {
			p1 = 1
		}
		bgPixel = (p1 << 1) | p0

		var a0, a1 uint8
		if p.bgShiftAttrLow&bitMux != 0 {
			a0 = 1
		}
		if p.bgShiftAttrHi&bitMux != 0 {
			a1 = 1
		}
		bgPalette = (a1 << 1) | a0
	}

	spritePixel, spritePalette, spriteBehind, isZero := p.spritePixelAt(x)

	var finalPixel, finalPalette uint8
	var fromSprite bool

	switch {
	case bgPixel == 0 && spritePixel == 0:
		finalPixel, finalPalette = 0, 0
	case bgPixel == 0:
		finalPixel, finalPalette, fromSprite = spritePixel, spritePalette, true
	case spritePixel == 0:
		finalPixel, finalPalette = bgPixel, bgPalette
	default:
		if isZero && x != 255 && p.mask&0x18 == 0x18 {
			p.status |= 0x40
		}
		if spriteBehind {
			finalPixel, finalPalette = bgPixel, bgPalette
		} else {
			finalPixel, finalPalette, fromSprite = spritePixel, spritePalette, true
		}
	}

	var paletteBase uint16 = 0x3F00
	if fromSprite {
		paletteBase = 0x3F10
	}
	var addr uint16
	if finalPixel == 0 {
		addr = 0x3F00
	} else {
		addr = paletteBase + uint16(finalPalette)*4 + uint16(finalPixel)
	}
	colorIndex := p.readVRAM(addr) & 0x3F

	p.frameBuffer[y*ScreenWidth+x] = nesColorToRGB(colorIndex)
}
