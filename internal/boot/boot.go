// Package boot provides the boot ROM mapped over 0x0000-0x00FF at
// power on.
package boot

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/thelolagemann/dmgcore/internal/types"
)

// Size is the only accepted boot ROM length.
const Size = types.BootROMSize

// ROM represents a boot ROM. It stays mapped until the bus is told
// to unmap it with mmu.Bus.DisableBootROM.
type ROM struct {
	raw      [Size]byte
	checksum string
}

// LoadBootROM copies b into a new ROM. b must be exactly Size bytes.
func LoadBootROM(b []byte) (*ROM, error) {
	if len(b) != Size {
		return nil, fmt.Errorf("boot: invalid boot rom length: %d (expected %d)", len(b), Size)
	}

	r := &ROM{}
	copy(r.raw[:], b)
	sum := md5.Sum(b)
	r.checksum = hex.EncodeToString(sum[:])

	return r, nil
}

// Read returns the byte at the given offset.
func (b *ROM) Read(addr uint16) byte {
	return b.raw[addr]
}

// Checksum returns the MD5 checksum of the boot rom.
func (b *ROM) Checksum() string {
	if b == nil {
		return ""
	}
	return b.checksum
}

// Model returns the model of the boot rom, determined by its
// checksum.
func (b *ROM) Model() string {
	if b == nil {
		return "none"
	}
	if model, ok := knownBootROMChecksums[b.checksum]; ok {
		return model
	}
	return "unknown"
}

const (
	// DMG0 is the early DMG boot ROM, only sold in Japan.
	DMG0 = "a8f84a0ac44da5d3f0ee19f9cea80a8c"
	// DMG is the common DMG-01 boot ROM.
	DMG = "32fbbd84168d3482956eb3c5051637f5"
	// MGB differs from DMG by one byte: it loads 0xFF into A.
	MGB = "71a378e71ff30b2d8a1f02bf5c7896aa"
	// SGB sends the header to the SNES instead of scrolling the logo.
	SGB = "d574d4f9c12f305074798f54c091a8b4"
	// SGB2 differs from SGB by the value loaded into A.
	SGB2 = "e0430bca9925fb9882148fd2dc2418c1"
)

var knownBootROMChecksums = map[string]string{
	DMG0: "Game Boy (DMG-0)",
	DMG:  "Game Boy (DMG-01)",
	MGB:  "Game Boy Pocket",
	SGB:  "Super Game Boy",
	SGB2: "Super Game Boy 2",
}
