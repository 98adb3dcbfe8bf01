package palette

import "testing"

func TestPalette_Apply(t *testing.T) {
	grey, err := Lookup("Greyscale")
	if err != nil {
		t.Fatal(err)
	}
	// 0xE4 is the identity mapping 3,2,1,0
	if grey.Apply(0xE4) != grey {
		t.Errorf("expected 0xE4 to leave the palette unchanged")
	}
	inverted := grey.Apply(0x1B)
	if inverted.GetColour(0) != grey.GetColour(3) {
		t.Errorf("expected colour 0 to map to shade 3, got %v", inverted.GetColour(0))
	}
	if Shade(0x1B, 0) != 3 || Shade(0x1B, 3) != 0 {
		t.Errorf("unexpected shades for 0x1B")
	}

	if _, err := Lookup("purple"); err == nil {
		t.Errorf("expected unknown palette to fail")
	}
}
