// Package render turns video snapshots into images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/thelolagemann/dmgcore/internal/ppu"
	"github.com/thelolagemann/dmgcore/internal/ppu/palette"
	"github.com/thelolagemann/dmgcore/pkg/utils"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// MaxScale is the largest supported scale factor.
const MaxScale = 8

// Renderer rasterises snapshots with a fixed palette and scale.
type Renderer struct {
	palette palette.Palette
	scale   int
}

// New returns a Renderer for the named palette. scale is clamped to
// [1, MaxScale].
func New(paletteName string, scale int) (*Renderer, error) {
	p, err := palette.Lookup(paletteName)
	if err != nil {
		return nil, err
	}
	return &Renderer{palette: p, scale: utils.Clamp(1, scale, MaxScale)}, nil
}

// Scale returns the scale factor.
func (r *Renderer) Scale() int {
	return r.scale
}

// Frame renders the background of s at the renderer's scale.
func (r *Renderer) Frame(s *ppu.Snapshot) image.Image {
	img := Background(s, r.palette)
	if r.scale == 1 {
		return img
	}
	return Scale(img, r.scale)
}

// Background rasterises the background layer of s. With the display
// or the background disabled every pixel takes shade 0.
func Background(s *ppu.Snapshot, p palette.Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	ctl := s.Controller()
	if !ctl.Enabled || !ctl.BackgroundEnabled {
		draw.Draw(img, img.Bounds(), image.NewUniform(rgba(p.GetColour(0))), image.Point{}, draw.Src)
		return img
	}

	bgp := p.Apply(s.BGP)
	for y := 0; y < ppu.ScreenHeight; y++ {
		bgY := uint8(y) + s.SCY
		for x := 0; x < ppu.ScreenWidth; x++ {
			bgX := uint8(x) + s.SCX

			mapAddr := ctl.BackgroundTileMapAddress + uint16(bgY/8)*32 + uint16(bgX/8)
			tileAddr := ctl.TileAddress(s.VRAMByte(mapAddr)) + uint16(bgY%8)*2
			low, high := s.VRAMByte(tileAddr), s.VRAMByte(tileAddr+1)

			bit := 7 - bgX%8
			index := (high>>bit&1)<<1 | low>>bit&1
			img.SetRGBA(x, y, rgba(bgp.GetColour(index)))
		}
	}
	return img
}

// Scale enlarges img by factor with nearest neighbour sampling.
func Scale(img image.Image, factor int) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

// WriteBMP encodes img as a BMP to w.
func WriteBMP(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}

// SaveBMP writes img to filename as a BMP.
func SaveBMP(filename string, img image.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteBMP(f, img); err != nil {
		f.Close()
		return fmt.Errorf("render: encoding %s: %w", filename, err)
	}
	return f.Close()
}

func rgba(c [3]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
}
