package sketch

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGaussianKernel1D(t *testing.T) {
	tests := []struct {
		size    int
		sigma   float64
		wantLen int
	}{
		{1, 1.0, 1},
		{2, 1.0, 3},
		{3, 0.5, 3},
		{31, 6.0, 31},
		{8, 2.5, 9},
	}

	for _, tt := range tests {
		kernel := GaussianKernel1D(tt.size, tt.sigma)
		if len(kernel) != tt.wantLen {
			t.Errorf("GaussianKernel1D(%d) len = %d, want %d", tt.size, len(kernel), tt.wantLen)
			continue
		}

		sum := 0.0
		for i, k := range kernel {
			sum += k
			if k != kernel[len(kernel)-1-i] {
				t.Errorf("GaussianKernel1D(%d) not symmetric at %d", tt.size, i)
			}
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("GaussianKernel1D(%d) sums to %v, want 1", tt.size, sum)
		}

		centre := len(kernel) / 2
		for i := 1; i <= centre; i++ {
			if kernel[centre-i] > kernel[centre-i+1] {
				t.Errorf("GaussianKernel1D(%d) not peaked at centre", tt.size)
			}
		}
	}
}

func TestGaussianFilterZeroSizeIsNoop(t *testing.T) {
	img := noiseImage(t, 13, 7, 3)
	NewProcessor(Serial{}).Grayscale(img)
	want := img.Clone()

	NewProcessor(Serial{}).GaussianFilter(img, 0, 6.0)

	if diff := cmp.Diff(want.Pix, img.Pix); diff != "" {
		t.Errorf("GaussianFilter(size=0) changed the image (-want +got):\n%s", diff)
	}
}

func TestGaussianFilterUniformImage(t *testing.T) {
	img := grayImage(9, 6, 137)
	NewProcessor(Serial{}).GaussianFilter(img, 5, 1.5)

	for i, p := range img.Pix {
		if p != 137 {
			t.Fatalf("pixel %d = %d, want 137", i, p)
		}
	}
}

func TestGaussianFilterSmoothsImpulse(t *testing.T) {
	img := grayImage(7, 7, 0)
	img.Set(3, 3, 255)

	NewProcessor(Serial{}).GaussianFilter(img, 3, 1.0)

	centre := img.At(3, 3)
	if centre == 0 || centre >= 255 {
		t.Errorf("centre = %d, want blurred value in (0,255)", centre)
	}
	if img.At(2, 3) != img.At(4, 3) || img.At(3, 2) != img.At(3, 4) {
		t.Error("blurred impulse is not symmetric")
	}
	if img.At(0, 0) != 0 {
		t.Errorf("far corner = %d, want 0", img.At(0, 0))
	}
}

func TestGaussianFilterEvenSizeMatchesNextOdd(t *testing.T) {
	base := noiseImage(t, 12, 10, 11)
	proc := NewProcessor(Serial{})
	proc.Grayscale(base)

	even := base.Clone()
	odd := base.Clone()
	proc.GaussianFilter(even, 4, 2.0)
	proc.GaussianFilter(odd, 5, 2.0)

	if diff := cmp.Diff(odd.Pix, even.Pix); diff != "" {
		t.Errorf("size 4 and size 5 differ (-odd +even):\n%s", diff)
	}
}
