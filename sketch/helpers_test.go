package sketch

import (
	"math/rand"
	"testing"
)

// gradientImage creates an RGB image with a deterministic colour gradient.
func gradientImage(width, height int) *Image {
	img := NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / max(width-1, 1))
			g := uint8((y * 255) / max(height-1, 1))
			img.Set(x, y, Pack(r, g, 128))
		}
	}
	return img
}

// noiseImage creates an RGB image filled with seeded random pixels.
func noiseImage(t *testing.T, width, height int, seed int64) *Image {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	img := NewImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = Pack(uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)))
	}
	return img
}

// grayImage creates a grayscale buffer filled with a single intensity.
func grayImage(width, height int, v uint32) *Image {
	img := NewImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}
