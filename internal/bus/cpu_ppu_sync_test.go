package bus

import (
	"testing"

	"nescore/internal/cartridge"
)

// buildROM assembles a minimal NROM cartridge whose PRG starts with program
// at $8000, with a given reset vector (defaulting to $8000) and optional NMI
// vector.
func buildROM(t *testing.T, program []uint8, nmiVector uint16, extra map[uint16][]uint8) *cartridge.Cartridge {
	t.Helper()
	builder := cartridge.NewTestROMBuilder().
		WithPRGSize(1).
		WithCHRSize(1).
		WithResetVector(0x8000).
		WithInstructions(program)
	if nmiVector != 0 {
		builder = builder.WithNMIVector(nmiVector)
	}
	for addr, data := range extra {
		builder = builder.WithData(addr, data)
	}
	cart, err := builder.BuildCartridge()
	if err != nil {
		t.Fatalf("failed to build test cartridge: %v", err)
	}
	return cart
}

// TestStepCycleCounts checks that Step() advances the CPU's cycle count by
// exactly the documented cost of each instruction, including the page-cross
// penalty, grounded on the 6502's official timing table.
func TestStepCycleCounts(t *testing.T) {
	program := []uint8{
		0xEA,             // NOP (2)
		0xA9, 0x42,       // LDA #$42 (2)
		0x85, 0x10,       // STA $10 (3)
		0xA2, 0x10,       // LDX #$10 (2)
		0xBD, 0xF0, 0x20, // LDA $20F0,X -> $2100, page cross (5)
		0xA2, 0x05,       // LDX #$05 (2)
		0xBD, 0x00, 0x20, // LDA $2000,X -> $2005, no page cross (4)
		0x4C, 0x00, 0x80, // JMP $8000 (3)
	}
	expected := []uint64{2, 2, 3, 2, 5, 2, 4, 3}

	b := New()
	b.LoadCartridge(buildROM(t, program, 0, nil))
	b.Reset()
	b.Step() // the 8-cycle reset sequence Reset leaves in flight

	for i, want := range expected {
		before := b.GetCycleCount()
		b.Step()
		got := b.GetCycleCount() - before
		if got != want {
			t.Errorf("instruction %d: cycles = %d, want %d", i, got, want)
		}
	}
}

// TestOAMDMATiming validates that an OAM DMA transfer holds the CPU off the
// bus for 513 cycles (even start) or 514 cycles (odd start), per SPEC_FULL's
// DMA timing invariant.
func TestOAMDMATiming(t *testing.T) {
	program := []uint8{
		0xA9, 0x02, // LDA #$02 (2)
		0x8D, 0x14, 0x40, // STA $4014 (4), triggers OAM DMA from page $02
		0xEA,             // NOP
		0x4C, 0x05, 0x80, // JMP back to the NOP
	}

	b := New()
	b.LoadCartridge(buildROM(t, program, 0, nil))
	b.Reset()

	b.Step() // the 8-cycle reset sequence Reset leaves in flight
	b.Step() // LDA #$02

	before := b.GetCycleCount()
	b.Step() // STA $4014 triggers the DMA, then Step holds until it drains

	if b.IsDMAInProgress() {
		t.Fatal("DMA should have fully drained by the time Step returns")
	}

	elapsed := b.GetCycleCount() - before
	// 4 cycles for the STA itself, plus 513 or 514 DMA cycles.
	if elapsed != 4+513 && elapsed != 4+514 {
		t.Errorf("STA $4014 + DMA took %d cycles, want %d or %d", elapsed, 4+513, 4+514)
	}
}

// TestNMIDelivery validates that enabling NMI in PPUCTRL and reaching VBlank
// vectors the CPU to the cartridge's NMI handler.
func TestNMIDelivery(t *testing.T) {
	program := []uint8{
		0xA9, 0x80, // LDA #$80
		0x8D, 0x00, 0x20, // STA $2000 (enable NMI generation)
		0xEA,             // NOP
		0x4C, 0x05, 0x80, // JMP back to the NOP (idle loop waiting for NMI)
	}
	handler := []uint8{
		0xA9, 0x02, // LDA #$02
		0x85, 0x21, // STA $21
		0x40, // RTI
	}

	b := New()
	b.LoadCartridge(buildROM(t, program, 0x8100, map[uint16][]uint8{0x0100: handler}))
	b.Reset()

	reachedHandler := false
	for i := 0; i < 200000; i++ {
		b.Step()
		if b.GetCPUState().PC == 0x8100 {
			reachedHandler = true
			break
		}
	}

	if !reachedHandler {
		t.Fatal("NMI handler at $8100 was never reached")
	}
}
