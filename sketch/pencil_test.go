package sketch

import "testing"

func TestColoredPencilGrayOriginalFollowsSketch(t *testing.T) {
	original := &Image{
		Pix:    []uint32{Pack(0, 0, 0), Pack(90, 90, 90), Pack(255, 255, 255), Pack(10, 10, 10)},
		Width:  2,
		Height: 2,
	}
	sketch := &Image{Pix: []uint32{255, 0, 128, 64}, Width: 2, Height: 2}

	out, err := NewProcessor(Serial{}).ColoredPencil(original, sketch, 1.0, 0.8)
	if err != nil {
		t.Fatalf("ColoredPencil() error = %v", err)
	}

	for i, v := range sketch.Pix {
		want := v<<16 | v<<8 | v
		if out.Pix[i] != want {
			t.Errorf("pixel %d = %#06x, want %#06x", i, out.Pix[i], want)
		}
	}
}

func TestColoredPencilKeepsHue(t *testing.T) {
	original := &Image{Pix: []uint32{Pack(200, 40, 40)}, Width: 1, Height: 1}
	sketch := &Image{Pix: []uint32{255}, Width: 1, Height: 1}

	out, err := NewProcessor(Serial{}).ColoredPencil(original, sketch, 1.0, 1.0)
	if err != nil {
		t.Fatalf("ColoredPencil() error = %v", err)
	}

	r, g, b := Unpack(out.Pix[0])
	// Value becomes 1.0 so the dominant channel saturates; saturation 0.8 is kept.
	if r != 255 || g != b || g != 51 {
		t.Errorf("got (%d,%d,%d), want (255,51,51)", r, g, b)
	}
	if original.Pix[0] != Pack(200, 40, 40) {
		t.Error("ColoredPencil() modified the original image")
	}
}

func TestColoredPencilSaturationExponent(t *testing.T) {
	original := &Image{Pix: []uint32{Pack(0, 128, 0)}, Width: 1, Height: 1}
	sketch := &Image{Pix: []uint32{255}, Width: 1, Height: 1}
	proc := NewProcessor(Serial{})

	// A fully saturated pixel stays fully saturated under any exponent.
	out, err := proc.ColoredPencil(original, sketch, 1.0, 0.5)
	if err != nil {
		t.Fatalf("ColoredPencil() error = %v", err)
	}
	if out.Pix[0] != Pack(0, 255, 0) {
		t.Errorf("got %#06x, want %#06x", out.Pix[0], Pack(0, 255, 0))
	}
}

func TestColoredPencilShapeMismatch(t *testing.T) {
	_, err := NewProcessor(Serial{}).ColoredPencil(NewImage(3, 1), NewImage(1, 3), 1, 1)
	if err == nil {
		t.Fatal("ColoredPencil() expected error for mismatched shapes")
	}
}
