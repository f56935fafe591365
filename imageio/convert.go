package imageio

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"pencilsketch/sketch"
)

// ToPacked converts any image into a packed sketch buffer. Alpha is dropped;
// colors are taken unpremultiplied.
func ToPacked(img image.Image) *sketch.Image {
	b := img.Bounds()
	out := sketch.NewImage(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.RGBA:
		if src.Opaque() {
			for y := 0; y < out.Height; y++ {
				row := src.Pix[y*src.Stride : y*src.Stride+out.Width*4]
				for x := 0; x < out.Width; x++ {
					out.Pix[y*out.Width+x] = sketch.Pack(row[x*4], row[x*4+1], row[x*4+2])
				}
			}
			return out
		}
	case *image.NRGBA:
		for y := 0; y < out.Height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+out.Width*4]
			for x := 0; x < out.Width; x++ {
				out.Pix[y*out.Width+x] = sketch.Pack(row[x*4], row[x*4+1], row[x*4+2])
			}
		}
		return out
	}

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out.Pix[y*out.Width+x] = sketch.Pack(c.R, c.G, c.B)
		}
	}
	return out
}

// ToImage converts a packed buffer into an opaque RGBA image.
func ToImage(img *sketch.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i, p := range img.Pix {
		r, g, b := sketch.Unpack(p)
		o := i * 4
		dst.Pix[o] = r
		dst.Pix[o+1] = g
		dst.Pix[o+2] = b
		dst.Pix[o+3] = 0xFF
	}
	return dst
}

// DownscaleToFit shrinks img so that neither side exceeds maxDim, keeping the
// aspect ratio. Images already within bounds, or a maxDim <= 0, are returned
// unchanged.
func DownscaleToFit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return img
	}

	scale := float64(maxDim) / float64(max(width, height))
	newWidth := max(int(float64(width)*scale+0.5), 1)
	newHeight := max(int(float64(height)*scale+0.5), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
