package cartridge

import (
	"bytes"
	"errors"
	"testing"
)

func TestLoadFromReaderRejectsShortHeader(t *testing.T) {
	_, err := LoadFromReader(bytes.NewReader([]byte{0x4E, 0x45, 0x53}))
	if !errors.Is(err, ErrTooSmall) {
		t.Errorf("got %v, want ErrTooSmall", err)
	}
}

func TestLoadFromReaderRejectsBadMagic(t *testing.T) {
	header := make([]byte, 16)
	copy(header, "BAD\x1A")
	header[4] = 1 // PRG size, so the magic check fails first

	_, err := LoadFromReader(bytes.NewReader(header))
	if !errors.Is(err, ErrFormat) {
		t.Errorf("got %v, want ErrFormat", err)
	}
}

func TestLoadFromReaderRejectsZeroPRGSize(t *testing.T) {
	header := make([]byte, 16)
	copy(header, "NES\x1A")

	_, err := LoadFromReader(bytes.NewReader(header))
	if !errors.Is(err, ErrTooSmall) {
		t.Errorf("got %v, want ErrTooSmall", err)
	}
}

func TestLoadFromReaderRejectsTruncatedPRG(t *testing.T) {
	header := make([]byte, 16)
	copy(header, "NES\x1A")
	header[4] = 1 // one 16KB PRG bank promised

	_, err := LoadFromReader(bytes.NewReader(header)) // but none supplied
	if !errors.Is(err, ErrTooSmall) {
		t.Errorf("got %v, want ErrTooSmall", err)
	}
}

func TestLoadFromReaderRejectsUnsupportedMapper(t *testing.T) {
	rom, err := NewTestROMBuilder().WithMapper(200).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	_, err = LoadFromReader(bytes.NewReader(rom))
	var unsupported *UnsupportedMapperError
	if !errors.As(err, &unsupported) {
		t.Fatalf("got %v, want *UnsupportedMapperError", err)
	}
	if unsupported.MapperID != 200 {
		t.Errorf("MapperID = %d, want 200", unsupported.MapperID)
	}
}

func TestLoadFromReaderNoCHRROMAllocatesCHRRAM(t *testing.T) {
	rom, err := NewTestROMBuilder().WithCHRSize(0).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	cart, err := LoadFromReader(bytes.NewReader(rom))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if !cart.hasCHRRAM {
		t.Error("a ROM with zero CHR banks should fall back to CHR RAM")
	}

	cart.WriteCHR(0x0000, 0x42)
	if got := cart.ReadCHR(0x0000); got != 0x42 {
		t.Errorf("ReadCHR(0x0000) = 0x%02X, want 0x42 (CHR RAM should be writable)", got)
	}
}

func TestLoadFromReaderSkipsTrainer(t *testing.T) {
	rom, err := NewTestROMBuilder().
		WithTrainer([]uint8{0xAA, 0xBB}).
		WithData(0x0000, []uint8{0x11}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	cart, err := LoadFromReader(bytes.NewReader(rom))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if got := cart.ReadPRG(0x8000); got != 0x11 {
		t.Errorf("ReadPRG(0x8000) = 0x%02X, want 0x11 (trainer bytes must not shift PRG data)", got)
	}
}

func TestLoadFromReaderMirroringFlags(t *testing.T) {
	cases := []struct {
		name    string
		build   func(*TestROMBuilder) *TestROMBuilder
		want    MirrorMode
	}{
		{"vertical", func(b *TestROMBuilder) *TestROMBuilder { return b.WithMirroring(MirrorVertical) }, MirrorVertical},
		{"horizontal", func(b *TestROMBuilder) *TestROMBuilder { return b.WithMirroring(MirrorHorizontal) }, MirrorHorizontal},
		{"four-screen", func(b *TestROMBuilder) *TestROMBuilder { return b.WithMirroring(MirrorFourScreen) }, MirrorFourScreen},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rom, err := c.build(NewTestROMBuilder()).Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			cart, err := LoadFromReader(bytes.NewReader(rom))
			if err != nil {
				t.Fatalf("LoadFromReader() error = %v", err)
			}
			if cart.MirrorMode() != c.want {
				t.Errorf("MirrorMode() = %v, want %v", cart.MirrorMode(), c.want)
			}
		})
	}
}

func TestLoadFromReaderBatteryFlag(t *testing.T) {
	rom, err := NewTestROMBuilder().WithBattery().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	cart, err := LoadFromReader(bytes.NewReader(rom))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if !cart.hasBattery {
		t.Error("WithBattery() should set the cartridge's battery-backed flag")
	}
}

func TestLoadFromBytesDelegatesToLoadFromReader(t *testing.T) {
	rom, err := NewTestROMBuilder().WithMapper(2).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	cart, err := LoadFromBytes(rom)
	if err != nil {
		t.Fatalf("LoadFromBytes() error = %v", err)
	}
	if cart.MapperID() != 2 {
		t.Errorf("MapperID() = %d, want 2", cart.MapperID())
	}
}

func TestUnsupportedMapperErrorMessage(t *testing.T) {
	err := &UnsupportedMapperError{MapperID: 99}
	if got, want := err.Error(), "cartridge: unsupported mapper 99"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
