// Package imageio converts between encoded image files and the packed pixel
// buffers of the sketch package.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image I/O errors
var (
	ErrInputUnreadable   = errors.New("imageio: input unreadable")
	ErrInvalidImage      = errors.New("imageio: invalid image data")
	ErrUnsupportedFormat = errors.New("imageio: unsupported image format")
	ErrEmptyImage        = errors.New("imageio: empty image data")
)

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP data.
// The returned string is the format name reported by the registered decoder.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", ErrEmptyImage
	}
	return img, format, nil
}

// ReadFile loads and decodes the image at path. Any failure to open, read or
// decode the file is reported as ErrInputUnreadable wrapping the cause.
func ReadFile(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrInputUnreadable, path, err)
	}

	img, format, err := DecodeImage(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrInputUnreadable, path, err)
	}
	return img, format, nil
}
