package lcd

import "testing"

func TestController(t *testing.T) {
	c := DecodeController(0x91)
	if !c.Enabled || !c.BackgroundEnabled || c.TileDataAddress != 0x8000 || c.BackgroundTileMapAddress != 0x9800 {
		t.Errorf("unexpected decode of 0x91: %+v", c)
	}
	if c.Value() != 0x91 {
		t.Errorf("expected 0x91, got 0x%02X", c.Value())
	}
	if c.TileAddress(1) != 0x8010 {
		t.Errorf("expected tile 1 at 0x8010, got 0x%04X", c.TileAddress(1))
	}

	signed := DecodeController(0x81)
	if !signed.UsingSignedTileData() {
		t.Errorf("expected signed tile data")
	}
	if signed.TileAddress(0xFF) != 0x8FF0 || signed.TileAddress(0x00) != 0x9000 {
		t.Errorf("expected signed tiles around 0x9000, got 0x%04X 0x%04X", signed.TileAddress(0xFF), signed.TileAddress(0x00))
	}
}

func TestStatus(t *testing.T) {
	s := DecodeStatus(0x4B)
	if !s.CoincidenceInterrupt || !s.HBlankInterrupt || s.Mode != VRAM {
		t.Errorf("unexpected decode of 0x4B: %+v", s)
	}
	if !s.InterruptOn(HBlank) || s.InterruptOn(OAM) {
		t.Errorf("expected only the HBlank interrupt to be enabled")
	}
	if s.Value() != 0xCB {
		t.Errorf("expected 0xCB, got 0x%02X", s.Value())
	}
}
