package cartridge

import "bytes"

// LoadFromBytes creates a cartridge from a raw iNES image held in memory,
// for tests that build ROMs on the fly rather than reading them from disk.
func LoadFromBytes(data []byte) (*Cartridge, error) {
	return LoadFromReader(bytes.NewReader(data))
}
