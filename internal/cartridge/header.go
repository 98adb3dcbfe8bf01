package cartridge

import (
	"fmt"
	"strings"
)

// Type is the cartridge type byte found at 0x0147.
type Type uint8

const (
	ROM         Type = 0x00
	MBC1        Type = 0x01
	MBC1RAM     Type = 0x02
	MBC1RAMBATT Type = 0x03
	MBC2        Type = 0x05
	MBC3        Type = 0x11
	MBC5        Type = 0x19
)

// Header represents the header of a cartridge, located at
// 0x0100-0x014F.
type Header struct {
	// 0x0134-0x0143 - Title of the game
	Title string

	CartridgeType  Type
	ROMSize        uint
	HeaderChecksum uint8
	GlobalChecksum uint16
}

// parseHeader parses the 0x50 header bytes starting at 0x0100.
func parseHeader(header []byte) Header {
	h := Header{}

	// titles are NUL padded; CGB carts reuse 0x0143 as a flag
	title := header[0x34:0x44]
	if header[0x43]&0x80 != 0 {
		title = header[0x34:0x43]
	}
	h.Title = strings.TrimRight(string(title), "\x00")

	h.CartridgeType = Type(header[0x47])

	// 32kB x (1 << n)
	h.ROMSize = (32 * 1024) << (header[0x48] & 0x0F)

	h.HeaderChecksum = header[0x4D]
	h.GlobalChecksum = uint16(header[0x4E])<<8 | uint16(header[0x4F])

	return h
}

func (h Header) String() string {
	return fmt.Sprintf("%s | type: %02X | ROM Size: %dkB", h.Title, uint8(h.CartridgeType), h.ROMSize/1024)
}
