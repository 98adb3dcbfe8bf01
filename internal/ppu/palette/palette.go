// Package palette maps the four DMG shades onto RGB colours.
package palette

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// Greyscale is the default greyscale palette.
	Greyscale = "greyscale"
	// Green attempts to emulate the colours of the original
	// Game Boy screen.
	Green = "green"
)

// Palette represents a palette. A palette is an array of 4 RGB values,
// shade 0 (lightest) to shade 3 (darkest).
type Palette struct {
	Colors [4][3]uint8
}

var palettes = map[string]Palette{
	Greyscale: {
		Colors: [4][3]uint8{
			{0xFF, 0xFF, 0xFF},
			{0xCC, 0xCC, 0xCC},
			{0x77, 0x77, 0x77},
			{0x00, 0x00, 0x00},
		},
	},
	Green: {
		Colors: [4][3]uint8{
			{0x9B, 0xBC, 0x0F},
			{0x8B, 0xAC, 0x0F},
			{0x30, 0x62, 0x30},
			{0x0F, 0x38, 0x0F},
		},
	},
}

// Lookup returns the palette with the given name.
func Lookup(name string) (Palette, error) {
	p, ok := palettes[strings.ToLower(name)]
	if !ok {
		return Palette{}, fmt.Errorf("palette: unknown palette %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names returns the names of the available palettes.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Shade returns the shade that a palette register such as BGP
// assigns to colour index.
func Shade(register, index uint8) uint8 {
	return register >> (index * 2) & 0x03
}

// Apply returns a palette with the shades of register already
// resolved, so that GetColour can be indexed by colour index.
func (p Palette) Apply(register uint8) Palette {
	var out Palette
	for i := uint8(0); i < 4; i++ {
		out.Colors[i] = p.Colors[Shade(register, i)]
	}
	return out
}

// GetColour returns the RGB value of index.
func (p Palette) GetColour(index uint8) [3]uint8 {
	return p.Colors[index&0x03]
}
