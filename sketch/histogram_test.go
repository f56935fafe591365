package sketch

import "testing"

func TestEqualizeConstantImage(t *testing.T) {
	for _, v := range []uint32{0, 1, 77, 254, 255} {
		img := grayImage(5, 4, v)
		NewProcessor(Serial{}).EqualizeHistogram(img)

		// cumulative[v] equals the pixel count, so the ratio is exactly 1.
		for i, p := range img.Pix {
			if p != 255 {
				t.Fatalf("intensity %d: pixel %d = %d, want 255", v, i, p)
			}
		}
	}
}

func TestEqualizeIsMonotonic(t *testing.T) {
	img := noiseImage(t, 40, 30, 7)
	proc := NewProcessor(Serial{})
	proc.Grayscale(img)
	before := img.Clone()
	proc.EqualizeHistogram(img)

	mapping := make(map[uint32]uint32)
	for i, in := range before.Pix {
		out := img.Pix[i]
		if out > 255 {
			t.Fatalf("pixel %d = %d out of range", i, out)
		}
		if prev, ok := mapping[in]; ok && prev != out {
			t.Fatalf("intensity %d mapped to both %d and %d", in, prev, out)
		}
		mapping[in] = out
	}

	for a, outA := range mapping {
		for b, outB := range mapping {
			if a < b && outA > outB {
				t.Errorf("not monotonic: %d->%d but %d->%d", a, outA, b, outB)
			}
		}
	}
}

func TestEqualizationTable(t *testing.T) {
	var hist [HistogramBins]int
	hist[0] = 1
	hist[128] = 2
	hist[255] = 1

	EqualizationTable(&hist)

	tests := []struct {
		v    int
		want int
	}{
		{0, 64},   // 255*1/4 = 63.75
		{127, 64}, // unchanged cumulative
		{128, 191},
		{254, 191},
		{255, 255},
	}
	for _, tt := range tests {
		if hist[tt.v] != tt.want {
			t.Errorf("table[%d] = %d, want %d", tt.v, hist[tt.v], tt.want)
		}
	}
}

func TestEqualizationTableEmpty(t *testing.T) {
	var hist [HistogramBins]int
	EqualizationTable(&hist)
	for v, out := range hist {
		if out != 0 {
			t.Fatalf("table[%d] = %d, want 0", v, out)
		}
	}
}

func TestEqualizeEmptyImage(t *testing.T) {
	img := NewImage(0, 0)
	NewProcessor(Serial{}).EqualizeHistogram(img)
	if img.Len() != 0 {
		t.Errorf("Len() = %d, want 0", img.Len())
	}
}
