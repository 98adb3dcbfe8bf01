package render

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/ppu"
	"github.com/thelolagemann/dmgcore/internal/ppu/palette"
	"golang.org/x/image/bmp"
)

// testSnapshot maps tile 1, whose first row is colour 1, to the top
// left of the background.
func testSnapshot() *ppu.Snapshot {
	s := &ppu.Snapshot{LCDC: 0x91, BGP: 0xE4}
	s.VRAM[0x1800] = 1    // map 0x9800, entry 0
	s.VRAM[0x0010] = 0xFF // tile 1, row 0, low plane
	s.VRAM[0x0011] = 0x00
	return s
}

func colourOf(p palette.Palette, index uint8) color.RGBA {
	c := p.GetColour(index)
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
}

func TestBackground(t *testing.T) {
	p, _ := palette.Lookup(palette.Greyscale)
	img := Background(testSnapshot(), p)

	if b := img.Bounds(); b.Dx() != ppu.ScreenWidth || b.Dy() != ppu.ScreenHeight {
		t.Fatalf("expected %dx%d, got %dx%d", ppu.ScreenWidth, ppu.ScreenHeight, b.Dx(), b.Dy())
	}
	if got := img.RGBAAt(0, 0); got != colourOf(p, 1) {
		t.Errorf("expected %v at (0,0), got %v", colourOf(p, 1), got)
	}
	if got := img.RGBAAt(7, 0); got != colourOf(p, 1) {
		t.Errorf("expected %v at (7,0), got %v", colourOf(p, 1), got)
	}
	if got := img.RGBAAt(0, 1); got != colourOf(p, 0) {
		t.Errorf("expected %v at (0,1), got %v", colourOf(p, 0), got)
	}
	if got := img.RGBAAt(8, 0); got != colourOf(p, 0) {
		t.Errorf("expected %v at (8,0), got %v", colourOf(p, 0), got)
	}
}

func TestBackground_Scroll(t *testing.T) {
	p, _ := palette.Lookup(palette.Greyscale)
	s := testSnapshot()
	s.SCX = 8
	img := Background(s, p)
	if got := img.RGBAAt(0, 0); got != colourOf(p, 0) {
		t.Errorf("expected %v at (0,0), got %v", colourOf(p, 0), got)
	}

	// the map wraps after 256 pixels
	s.SCX = 248
	img = Background(s, p)
	if got := img.RGBAAt(8, 0); got != colourOf(p, 1) {
		t.Errorf("expected %v at (8,0), got %v", colourOf(p, 1), got)
	}
}

func TestBackground_Palette(t *testing.T) {
	p, _ := palette.Lookup(palette.Green)
	s := testSnapshot()
	s.BGP = 0xE7 // colour 0 -> shade 3
	img := Background(s, p)
	if got := img.RGBAAt(0, 1); got != colourOf(p, 3) {
		t.Errorf("expected %v at (0,1), got %v", colourOf(p, 3), got)
	}
}

func TestBackground_Disabled(t *testing.T) {
	p, _ := palette.Lookup(palette.Greyscale)
	s := testSnapshot()
	s.LCDC = 0x00
	img := Background(s, p)
	if got := img.RGBAAt(0, 0); got != colourOf(p, 0) {
		t.Errorf("expected %v, got %v", colourOf(p, 0), got)
	}
}

func TestRenderer(t *testing.T) {
	if _, err := New("sepia", 1); err == nil {
		t.Errorf("expected an error for an unknown palette")
	}

	r, err := New(palette.Greyscale, 100)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r.Scale() != MaxScale {
		t.Errorf("expected scale %d, got %d", MaxScale, r.Scale())
	}

	r, _ = New(palette.Greyscale, 2)
	img := r.Frame(testSnapshot())
	if b := img.Bounds(); b.Dx() != ppu.ScreenWidth*2 || b.Dy() != ppu.ScreenHeight*2 {
		t.Errorf("expected %dx%d, got %dx%d", ppu.ScreenWidth*2, ppu.ScreenHeight*2, b.Dx(), b.Dy())
	}
	if img.At(1, 1) != img.At(0, 0) {
		t.Errorf("expected (1,1) to match (0,0)")
	}
}

func TestWriteBMP(t *testing.T) {
	p, _ := palette.Lookup(palette.Greyscale)
	img := Background(testSnapshot(), p)

	var buf bytes.Buffer
	if err := WriteBMP(&buf, img); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	decoded, err := bmp.Decode(&buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decoded.Bounds() != image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight) {
		t.Errorf("expected %v, got %v", img.Bounds(), decoded.Bounds())
	}

	path := filepath.Join(t.TempDir(), "shot.bmp")
	if err := SaveBMP(path, img); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist, got %v", path, err)
	}
}
