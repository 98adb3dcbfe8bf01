package ppu

import (
	"github.com/thelolagemann/dmgcore/internal/mmu"
	"github.com/thelolagemann/dmgcore/internal/ppu/lcd"
	"github.com/thelolagemann/dmgcore/internal/types"
)

// Snapshot is a copy of everything needed to render the background
// of a frame. It shares no memory with the bus.
type Snapshot struct {
	VRAM [types.VRAMSize]byte

	LCDC uint8
	STAT uint8
	SCY  uint8
	SCX  uint8
	LY   uint8
	LYC  uint8
	BGP  uint8
	WY   uint8
	WX   uint8

	// Frame is the number of frames completed when the snapshot
	// was taken.
	Frame uint64
}

// Snapshot copies the video memory and display registers while
// holding the bus's shared lock once, so the copy is never torn by a
// concurrent write.
func (p *PPU) Snapshot() (*Snapshot, error) {
	s := &Snapshot{Frame: p.frames.Load()}
	err := p.bus.View(func(v mmu.View) error {
		vram, err := v.ReadRange(types.VRAMStart, types.VRAMEnd+1)
		if err != nil {
			return err
		}
		copy(s.VRAM[:], vram)

		for _, r := range []struct {
			addr uint16
			dst  *uint8
		}{
			{types.LCDC, &s.LCDC},
			{types.STAT, &s.STAT},
			{types.SCY, &s.SCY},
			{types.SCX, &s.SCX},
			{types.LY, &s.LY},
			{types.LYC, &s.LYC},
			{types.BGP, &s.BGP},
			{types.WY, &s.WY},
			{types.WX, &s.WX},
		} {
			if *r.dst, err = v.Read(r.addr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Controller decodes the snapshot's LCDC.
func (s *Snapshot) Controller() lcd.Controller {
	return lcd.DecodeController(s.LCDC)
}

// VRAMByte returns the byte of the snapshot at bus address addr,
// which must lie in 0x8000 - 0x9FFF.
func (s *Snapshot) VRAMByte(addr uint16) uint8 {
	return s.VRAM[addr-types.VRAMStart]
}
