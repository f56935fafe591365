package sketch

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when two buffers that must share a shape do not.
var ErrDimensionMismatch = errors.New("sketch: image dimensions do not match")

// Channel masks and shifts for the packed pixel word 0x00RRGGBB.
const (
	redShift   = 16
	greenShift = 8
	channelMax = 0xFF
)

// Image is a dense row-major buffer of Width*Height packed pixels.
// Each word holds three 8-bit channels: the most significant byte is unused,
// followed by red, green and blue.
//
// A grayscale buffer is an Image whose words hold a single intensity in
// [0,255]; GrayToRGB broadcasts that intensity into all three channels.
type Image struct {
	Pix    []uint32
	Width  int
	Height int
}

// NewImage allocates a zeroed (black) image.
func NewImage(width, height int) *Image {
	return &Image{
		Pix:    make([]uint32, width*height),
		Width:  width,
		Height: height,
	}
}

// FromPixels wraps an existing pixel slice. The slice is not copied.
func FromPixels(pix []uint32, width, height int) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrDimensionMismatch, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrDimensionMismatch, len(pix), width, height)
	}
	return &Image{Pix: pix, Width: width, Height: height}, nil
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	pix := make([]uint32, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{Pix: pix, Width: img.Width, Height: img.Height}
}

// Len returns the number of pixels.
func (img *Image) Len() int {
	return len(img.Pix)
}

// At returns the packed pixel at (x, y).
func (img *Image) At(x, y int) uint32 {
	return img.Pix[y*img.Width+x]
}

// Set stores a packed pixel at (x, y).
func (img *Image) Set(x, y int, p uint32) {
	img.Pix[y*img.Width+x] = p
}

// SameShape reports whether both images have identical dimensions.
func (img *Image) SameShape(other *Image) bool {
	return img.Width == other.Width && img.Height == other.Height
}

// Pack assembles a pixel word from channel values in [0,255].
func Pack(r, g, b uint8) uint32 {
	return uint32(r)<<redShift | uint32(g)<<greenShift | uint32(b)
}

// Unpack splits a pixel word into its red, green and blue channels.
func Unpack(p uint32) (r, g, b uint8) {
	return uint8(p >> redShift & channelMax), uint8(p >> greenShift & channelMax), uint8(p & channelMax)
}

func checkShape(a, b *Image) error {
	if !a.SameShape(b) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	return nil
}

// clampByte limits v to the channel range.
func clampByte(v int) uint32 {
	if v < 0 {
		return 0
	}
	if v > channelMax {
		return channelMax
	}
	return uint32(v)
}
