// Package lcd decodes the LCD control (types.LCDC) and status
// (types.STAT) registers.
package lcd

import "github.com/thelolagemann/dmgcore/internal/types"

// Controller is the decoded LCD control register. It controls
// various aspects of the LCD, such as enabling the background and
// window display.
//
// Its value is stored in the LCD Control Register (0xFF40) as follows:
//
//	Bit 7 - LCD Enable             (0=Off, 1=On)
//	Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 5 - Window Display Enable          (0=Off, 1=On)
//	Bit 4 - BG & Window Tile Data Select   (0=8800-97FF, 1=8000-8FFF)
//	Bit 3 - BG Tile Map Display Select     (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 2 - OBJ (Sprite) Size              (0=8x8, 1=8x16)
//	Bit 1 - OBJ (Sprite) Display Enable    (0=Off, 1=On)
//	Bit 0 - BG/Window Display/Priority     (0=Off, 1=On)
type Controller struct {
	// Enabled is the LCD Enable bit. When clear the video
	// controller is stopped.
	Enabled bool
	// WindowTileMapAddress is the start address of the window tile
	// map, 0x9800 or 0x9C00.
	WindowTileMapAddress uint16
	// WindowEnabled is the Window Display Enable bit.
	WindowEnabled bool
	// TileDataAddress is the start address of the BG & Window tile
	// data. At 0x8800 tile numbers are signed and relative to
	// 0x9000.
	TileDataAddress uint16
	// BackgroundTileMapAddress is the start address of the
	// background tile map, 0x9800 or 0x9C00.
	BackgroundTileMapAddress uint16
	// SpriteSize is the height of a sprite, 8 or 16.
	SpriteSize uint8
	// SpriteEnabled is the OBJ (Sprite) Display Enable bit.
	SpriteEnabled bool
	// BackgroundEnabled is the BG/Window Display/Priority bit.
	BackgroundEnabled bool
}

// DecodeController decodes the value of the LCDC register.
func DecodeController(value uint8) Controller {
	c := Controller{
		Enabled:                  types.TestBit(value, types.Bit7),
		WindowTileMapAddress:     0x9800,
		WindowEnabled:            types.TestBit(value, types.Bit5),
		TileDataAddress:          0x8800,
		BackgroundTileMapAddress: 0x9800,
		SpriteSize:               8,
		SpriteEnabled:            types.TestBit(value, types.Bit1),
		BackgroundEnabled:        types.TestBit(value, types.Bit0),
	}
	if types.TestBit(value, types.Bit6) {
		c.WindowTileMapAddress = 0x9C00
	}
	if types.TestBit(value, types.Bit4) {
		c.TileDataAddress = 0x8000
	}
	if types.TestBit(value, types.Bit3) {
		c.BackgroundTileMapAddress = 0x9C00
	}
	if types.TestBit(value, types.Bit2) {
		c.SpriteSize = 16
	}
	return c
}

// Value encodes the controller back into the LCDC register.
func (c Controller) Value() uint8 {
	var value uint8
	if c.Enabled {
		value |= types.Bit7
	}
	if c.WindowTileMapAddress == 0x9C00 {
		value |= types.Bit6
	}
	if c.WindowEnabled {
		value |= types.Bit5
	}
	if c.TileDataAddress == 0x8000 {
		value |= types.Bit4
	}
	if c.BackgroundTileMapAddress == 0x9C00 {
		value |= types.Bit3
	}
	if c.SpriteSize == 16 {
		value |= types.Bit2
	}
	if c.SpriteEnabled {
		value |= types.Bit1
	}
	if c.BackgroundEnabled {
		value |= types.Bit0
	}
	return value
}

// UsingSignedTileData returns true if tile numbers are signed.
func (c Controller) UsingSignedTileData() bool {
	return c.TileDataAddress == 0x8800
}

// TileAddress returns the address of the first byte of tile n.
func (c Controller) TileAddress(n uint8) uint16 {
	if c.UsingSignedTileData() {
		return uint16(int32(0x9000) + int32(int8(n))*16)
	}
	return c.TileDataAddress + uint16(n)*16
}
