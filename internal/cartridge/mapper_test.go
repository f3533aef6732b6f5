package cartridge

import "testing"

func fillBanks(size int, stride int) []uint8 {
	data := make([]uint8, size)
	for bank := 0; bank*stride < size; bank++ {
		for i := 0; i < stride && bank*stride+i < size; i++ {
			data[bank*stride+i] = uint8(bank)
		}
	}
	return data
}

func TestMapper0MirrorsSingleBank(t *testing.T) {
	prg := make([]uint8, 0x4000)
	prg[0] = 0xAB
	m := newMapper0(prg, make([]uint8, 0x2000), true, MirrorHorizontal)

	if got := m.ReadPRG(0x8000); got != 0xAB {
		t.Errorf("ReadPRG(0x8000) = 0x%02X, want 0xAB", got)
	}
	if got := m.ReadPRG(0xC000); got != 0xAB {
		t.Errorf("ReadPRG(0xC000) = 0x%02X, want 0xAB (single bank mirrors into $C000)", got)
	}
}

func TestMapper0CHRRAMIsWritable(t *testing.T) {
	m := newMapper0(make([]uint8, 0x4000), make([]uint8, 0x2000), true, MirrorHorizontal)
	m.WriteCHR(0x0010, 0x55)
	if got := m.ReadCHR(0x0010); got != 0x55 {
		t.Errorf("ReadCHR(0x0010) = 0x%02X, want 0x55", got)
	}
}

func TestMapper0CHRROMIsNotWritable(t *testing.T) {
	chr := make([]uint8, 0x2000)
	chr[0x0010] = 0xAA
	m := newMapper0(make([]uint8, 0x4000), chr, false, MirrorHorizontal)
	m.WriteCHR(0x0010, 0x55)
	if got := m.ReadCHR(0x0010); got != 0xAA {
		t.Errorf("ReadCHR(0x0010) = 0x%02X, want unchanged 0xAA (CHR ROM should reject writes)", got)
	}
}

func TestMapper0PRGRAMPersists(t *testing.T) {
	m := newMapper0(make([]uint8, 0x4000), make([]uint8, 0x2000), true, MirrorHorizontal)
	m.WritePRG(0x6000, 0x77)
	if got := m.ReadPRG(0x6000); got != 0x77 {
		t.Errorf("ReadPRG(0x6000) = 0x%02X, want 0x77", got)
	}
}

func TestMapper1ShiftRegisterLatchesOnFifthWrite(t *testing.T) {
	prg := fillBanks(0x20000, 0x4000) // 8 banks of 16KB
	m := newMapper1(prg, nil, true)

	// Select PRG mode 3 (fixed last bank at $C000, switchable at $8000) via
	// the control register, then write bank 5 to the PRG bank register
	// ($E000-$FFFF).
	writeShift(m, 0x8000, 0x0C)
	writeShift(m, 0xE000, 5)

	if got := m.ReadPRG(0x8000); got != 5 {
		t.Errorf("ReadPRG(0x8000) = %d, want bank 5", got)
	}
}

// writeShift feeds an MMC1 5-bit shift register one bit at a time, LSB
// first, as the real CPU write sequence would.
func writeShift(m *mapper1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		m.WritePRG(addr, (value>>uint(i))&1)
	}
}

func TestMapper1ResetBitReinitializesShiftRegister(t *testing.T) {
	m := newMapper1(make([]uint8, 0x4000), nil, true)
	m.WritePRG(0x8000, 1)
	m.WritePRG(0x8000, 0x80) // bit 7 set: reset
	if m.shiftRegister != 0x10 || m.shiftCount != 0 {
		t.Error("a write with bit 7 set should reset the shift register")
	}
	if m.prgMode != 3 {
		t.Errorf("prgMode = %d, want 3 after reset", m.prgMode)
	}
}

func TestMapper1MirroringModes(t *testing.T) {
	cases := []struct {
		value uint8
		want  MirrorMode
	}{
		{0, MirrorSingleScreen0},
		{1, MirrorSingleScreen1},
		{2, MirrorVertical},
		{3, MirrorHorizontal},
	}
	for _, c := range cases {
		m := newMapper1(make([]uint8, 0x4000), nil, true)
		writeShift(m, 0x8000, c.value)
		if got := m.Mirroring(); got != c.want {
			t.Errorf("control value %d: Mirroring() = %v, want %v", c.value, got, c.want)
		}
	}
}

func TestMapper2BankSwitchAndFixedLastBank(t *testing.T) {
	prg := fillBanks(0x10000, 0x4000) // 4 banks of 16KB
	m := newMapper2(prg, nil, MirrorHorizontal)

	m.WritePRG(0x8000, 2)
	if got := m.ReadPRG(0x8000); got != 2 {
		t.Errorf("ReadPRG(0x8000) = %d, want switched bank 2", got)
	}
	if got := m.ReadPRG(0xC000); got != 3 {
		t.Errorf("ReadPRG(0xC000) = %d, want fixed last bank 3", got)
	}
}

func TestMapper3CHRBankSwitch(t *testing.T) {
	chr := fillBanks(0x8000, 0x2000) // 4 banks of 8KB
	m := newMapper3(make([]uint8, 0x4000), chr, MirrorHorizontal)

	m.WritePRG(0x8000, 3)
	if got := m.ReadCHR(0x0000); got != 3 {
		t.Errorf("ReadCHR(0x0000) = %d, want switched CHR bank 3", got)
	}
}

func TestMapper4PRGModeSwapsWindows(t *testing.T) {
	prg := fillBanks(0x10000, 0x2000) // 8 banks of 8KB
	m := newMapper4(prg, nil, true, MirrorHorizontal)

	m.WritePRG(0x8000, 0x06) // select register 6, PRG mode 0
	m.WritePRG(0x8001, 2)    // register 6 = bank 2

	if got := m.ReadPRG(0x8000); got != 2 {
		t.Errorf("PRG mode 0: ReadPRG(0x8000) = %d, want bank 2", got)
	}
	if got := m.ReadPRG(0xC000); got != m.prgBanks-2 {
		t.Errorf("PRG mode 0: ReadPRG(0xC000) = %d, want second-to-last bank", got)
	}

	m.WritePRG(0x8000, 0x46) // same register, PRG mode 1 (bit 6 set)
	m.WritePRG(0x8001, 2)
	if got := m.ReadPRG(0xC000); got != 2 {
		t.Errorf("PRG mode 1: ReadPRG(0xC000) = %d, want bank 2", got)
	}
}

func TestMapper4IRQCounterReloadsAndFires(t *testing.T) {
	m := newMapper4(make([]uint8, 0x10000), nil, true, MirrorHorizontal)

	m.WritePRG(0xC000, 2) // IRQ latch = 2
	m.WritePRG(0xC001, 0) // reload request
	m.WritePRG(0xE001, 0) // IRQ enable

	m.Scanline() // reload: counter = 2
	if m.IRQPending() {
		t.Fatal("IRQ should not fire on the reload scanline")
	}
	m.Scanline() // counter = 1
	if m.IRQPending() {
		t.Fatal("IRQ should not fire before the counter reaches 0")
	}
	m.Scanline() // counter = 0, enabled -> pending
	if !m.IRQPending() {
		t.Error("IRQ should fire when the counter reaches 0 while enabled")
	}

	m.ClearIRQ()
	if m.IRQPending() {
		t.Error("ClearIRQ should clear the pending IRQ")
	}
}

func TestMapper9CHRLatchSwitchesBank(t *testing.T) {
	chr := fillBanks(0x20000, 0x1000) // 32 banks of 4KB
	m := newMapper9(make([]uint8, 0x2000), chr, MirrorHorizontal)

	m.WritePRG(0xB000, 5) // chrBank[0] (latch FD) = 5
	m.WritePRG(0xC000, 9) // chrBank[1] (latch FE) = 9

	if got := m.ReadCHR(0x0000); got != 5 {
		t.Errorf("default latch state: ReadCHR(0x0000) = %d, want bank 5 (FD)", got)
	}

	m.ReadCHR(0x0FE8) // latches FE for window 0
	if got := m.ReadCHR(0x0000); got != 9 {
		t.Errorf("after FE latch trigger: ReadCHR(0x0000) = %d, want bank 9 (FE)", got)
	}
}

func TestMapper69IRQCounterUnderflows(t *testing.T) {
	m := newMapper69(make([]uint8, 0x2000), nil, MirrorHorizontal)

	m.WritePRG(0x8000, 0x0D) // select IRQ control register
	m.WritePRG(0xA000, 0x81) // enable IRQ + counter

	m.WritePRG(0x8000, 0x0E)
	m.WritePRG(0xA000, 0x01) // counter low = 1, high stays 0 -> counter = 1

	m.Clock() // counter 1 -> 0, no IRQ yet
	if m.IRQPending() {
		t.Fatal("IRQ should not fire before the counter underflows")
	}
	m.Clock() // counter 0 -> underflow -> 0xFFFF, IRQ pending
	if !m.IRQPending() {
		t.Error("IRQ should fire on counter underflow while enabled")
	}
}

func TestMapper69PRGRAMSelection(t *testing.T) {
	m := newMapper69(make([]uint8, 0x2000), nil, MirrorHorizontal)

	m.WritePRG(0x8000, 0x08) // select command 8 (RAM/bank-0 control)
	m.WritePRG(0xA000, 0xC0) // RAM selected + enabled, bank 0

	m.WritePRG(0x6000, 0x42)
	if got := m.ReadPRG(0x6000); got != 0x42 {
		t.Errorf("ReadPRG(0x6000) = 0x%02X, want 0x42 (PRG RAM selected and enabled)", got)
	}
}

func TestCreateMapperDispatchesByID(t *testing.T) {
	prg := make([]uint8, 0x4000)
	chr := make([]uint8, 0x2000)

	ids := []uint8{0, 1, 2, 3, 4, 9, 69}
	for _, id := range ids {
		mapper, err := createMapper(id, prg, chr, true, MirrorHorizontal)
		if err != nil {
			t.Errorf("createMapper(%d) error = %v", id, err)
			continue
		}
		if mapper == nil {
			t.Errorf("createMapper(%d) returned a nil mapper", id)
		}
	}
}

func TestCreateMapperRejectsUnknownID(t *testing.T) {
	_, err := createMapper(250, make([]uint8, 0x4000), make([]uint8, 0x2000), true, MirrorHorizontal)
	if err == nil {
		t.Fatal("expected an error for an unsupported mapper ID")
	}
	unsupported, ok := err.(*UnsupportedMapperError)
	if !ok {
		t.Fatalf("got %T, want *UnsupportedMapperError", err)
	}
	if unsupported.MapperID != 250 {
		t.Errorf("MapperID = %d, want 250", unsupported.MapperID)
	}
}
