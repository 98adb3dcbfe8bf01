// Package cartridge provides the flat ROM image consumed by the bus.
// No memory bank controller is modelled: the image is addressed
// directly, offset equals CPU address.
package cartridge

import "fmt"

// HeaderEnd is the first offset past the cartridge header. Images
// shorter than this carry no header.
const HeaderEnd = 0x150

// Cartridge represents a loaded cartridge image.
type Cartridge struct {
	rom    []byte
	header Header
}

// NewCartridge wraps rom. The slice is retained, not copied.
func NewCartridge(rom []byte) *Cartridge {
	c := &Cartridge{rom: rom}
	if len(rom) >= HeaderEnd {
		c.header = parseHeader(rom[0x100:HeaderEnd])
	}
	return c
}

// NewEmptyCartridge returns a cartridge with no ROM at all.
func NewEmptyCartridge() *Cartridge {
	return &Cartridge{}
}

// Read returns the byte at offset. Callers must bounds check
// against Len first.
func (c *Cartridge) Read(offset uint32) uint8 {
	return c.rom[offset]
}

// Len returns the number of addressable ROM bytes.
func (c *Cartridge) Len() int {
	return len(c.rom)
}

// Header returns the parsed header.
func (c *Cartridge) Header() Header {
	return c.header
}

// Title returns the cartridge title.
func (c *Cartridge) Title() string {
	return c.header.Title
}

// Valid reports whether the image carries a header whose checksum
// byte (0x014D) matches the checksum of 0x0134-0x014C.
func (c *Cartridge) Valid() bool {
	if len(c.rom) < HeaderEnd {
		return false
	}
	return HeaderChecksum(c.rom) == c.rom[0x14D]
}

// GlobalChecksum sums every byte of the image except the two
// checksum bytes themselves.
func (c *Cartridge) GlobalChecksum() uint16 {
	var sum uint16
	for i, b := range c.rom {
		if i == 0x14E || i == 0x14F {
			continue
		}
		sum += uint16(b)
	}
	return sum
}

func (c *Cartridge) String() string {
	status := "checksum failed"
	if c.Valid() {
		status = "checksum passed"
	}
	return fmt.Sprintf("%s | %s | global checksum %04X", c.header.String(), status, c.GlobalChecksum())
}

// HeaderChecksum computes the header checksum over rom[0x134:0x14D].
func HeaderChecksum(rom []byte) uint8 {
	var x uint8
	for _, b := range rom[0x134:0x14D] {
		x = x - b - 1
	}
	return x
}
