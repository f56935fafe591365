package imageio

import (
	"bufio"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"pencilsketch/sketch"
)

// Format names an output encoding.
type Format string

// Supported output formats
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// DefaultJPEGQuality is used when EncodeOptions leaves Quality unset.
const DefaultJPEGQuality = 90

// EncodeOptions tunes lossy encoders.
type EncodeOptions struct {
	// Quality is the JPEG quality, 1..100.
	Quality int
}

// ParseFormat maps a format name or file extension (with or without the dot)
// to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromPath picks the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Extension returns the canonical file extension for the format, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tiff"
	}
	return "." + string(f)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img *sketch.Image, format Format, opts EncodeOptions) error {
	rgba := ToImage(img)

	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, rgba)
	case FormatJPEG:
		quality := opts.Quality
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(w, rgba, &jpeg.Options{Quality: min(quality, 100)})
	case FormatGIF:
		err = gif.Encode(w, rgba, nil)
	case FormatBMP:
		err = bmp.Encode(w, rgba)
	case FormatTIFF:
		err = tiff.Encode(w, rgba, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("imageio: encode %s: %w", format, err)
	}
	return nil
}

// WriteFile encodes img into path, choosing the encoder from the extension.
// The file is written to a temporary sibling and renamed into place.
func WriteFile(path string, img *sketch.Image, opts EncodeOptions) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, img, format, opts); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("imageio: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("imageio: write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("imageio: write %s: %w", path, err)
	}
	return nil
}
