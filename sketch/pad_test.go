package sketch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPadReplicatesEdges(t *testing.T) {
	src := &Image{
		Pix: []uint32{
			1, 2, 3,
			4, 5, 6,
			7, 8, 9,
		},
		Width:  3,
		Height: 3,
	}
	dst := NewPadded(src, 3)

	if err := NewProcessor(Serial{}).Pad(dst, src, 3); err != nil {
		t.Fatalf("Pad() error = %v", err)
	}

	want := []uint32{
		1, 1, 2, 3, 3, 3,
		1, 1, 2, 3, 3, 3,
		4, 4, 5, 6, 6, 6,
		7, 7, 8, 9, 9, 9,
		7, 7, 8, 9, 9, 9,
		7, 7, 8, 9, 9, 9,
	}
	if diff := cmp.Diff(want, dst.Pix); diff != "" {
		t.Errorf("Pad() mismatch (-want +got):\n%s", diff)
	}

	corners := map[string][2]uint32{
		"top-left":     {dst.At(0, 0), src.At(0, 0)},
		"top-right":    {dst.At(5, 0), src.At(2, 0)},
		"bottom-left":  {dst.At(0, 5), src.At(0, 2)},
		"bottom-right": {dst.At(5, 5), src.At(2, 2)},
	}
	for name, c := range corners {
		if c[0] != c[1] {
			t.Errorf("%s corner = %d, want %d", name, c[0], c[1])
		}
	}
}

func TestPadZeroSizeCopies(t *testing.T) {
	src := gradientImage(4, 3)
	dst := NewPadded(src, 0)

	if err := NewProcessor(Serial{}).Pad(dst, src, 0); err != nil {
		t.Fatalf("Pad() error = %v", err)
	}
	if diff := cmp.Diff(src.Pix, dst.Pix); diff != "" {
		t.Errorf("Pad(size=0) mismatch (-want +got):\n%s", diff)
	}
}

func TestPadRejectsWrongDestination(t *testing.T) {
	src := gradientImage(4, 4)
	dst := NewImage(5, 5)
	if err := NewProcessor(Serial{}).Pad(dst, src, 3); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Pad() error = %v, want ErrDimensionMismatch", err)
	}
	for i, p := range dst.Pix {
		if p != 0 {
			t.Fatalf("pixel %d = %d, destination written despite mismatch", i, p)
		}
	}
}

func TestPadEmptySource(t *testing.T) {
	src := NewImage(0, 0)
	dst := NewPadded(src, 3)
	if err := NewProcessor(Serial{}).Pad(dst, src, 3); err != nil {
		t.Fatalf("Pad() error = %v", err)
	}
	for i, p := range dst.Pix {
		if p != 0 {
			t.Fatalf("pixel %d = %d, want untouched border", i, p)
		}
	}
}

func TestPadSinglePixel(t *testing.T) {
	src := &Image{Pix: []uint32{42}, Width: 1, Height: 1}
	dst := NewPadded(src, 5)

	if err := NewProcessor(Serial{}).Pad(dst, src, 5); err != nil {
		t.Fatalf("Pad() error = %v", err)
	}
	for i, p := range dst.Pix {
		if p != 42 {
			t.Fatalf("pixel %d = %d, want 42", i, p)
		}
	}
}
