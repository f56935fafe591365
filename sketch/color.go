package sketch

import "math"

// Luma returns the integer grayscale intensity (3R + 4G + B) / 8 of a pixel.
func Luma(p uint32) uint32 {
	r, g, b := Unpack(p)
	return (3*uint32(r) + 4*uint32(g) + uint32(b)) / 8
}

// Grayscale replaces every pixel of img with its luma intensity.
func (p *Processor) Grayscale(img *Image) {
	pix := img.Pix
	p.exec.ParallelFor(len(pix), func(start, end int) {
		for i := start; i < end; i++ {
			pix[i] = Luma(pix[i])
		}
	})
}

// GrayToRGB broadcasts each intensity of a grayscale buffer into all three channels.
func (p *Processor) GrayToRGB(img *Image) {
	pix := img.Pix
	p.exec.ParallelFor(len(pix), func(start, end int) {
		for i := start; i < end; i++ {
			v := pix[i] & channelMax
			pix[i] = v<<redShift | v<<greenShift | v
		}
	})
}

// HSV is a hue/saturation/value triple. Hue lies in [0,1) and covers the full
// 360 degree wheel; saturation and value lie in [0,1].
type HSV struct {
	H float64
	S float64
	V float64
}

// PixelToHSV converts a packed RGB pixel to HSV.
//
// Saturation is 0 for pure black and hue is 0 for achromatic pixels. The hue
// sector is chosen by the dominant channel, checked red first, then green.
func PixelToHSV(p uint32) HSV {
	r8, g8, b8 := Unpack(p)
	r := float64(r8) / 255.0
	g := float64(g8) / 255.0
	b := float64(b8) / 255.0

	value := max(r, g, b)
	c := value - min(r, g, b)

	saturation := 0.0
	if value != 0 {
		saturation = c / value
	}

	var hue float64
	switch {
	case c == 0:
		hue = 0
	case value == r:
		hue = (g - b) / c
	case value == g:
		hue = (b-r)/c + 2.0
	default:
		hue = (r-g)/c + 4.0
	}

	if hue < 0 {
		hue = hue/6.0 + 1.0
	} else {
		hue /= 6.0
	}

	return HSV{H: hue, S: saturation, V: value}
}

// HSVToPixel converts an HSV triple back to a packed pixel using the six
// 60 degree sector decomposition, rounding each channel to nearest.
func HSVToPixel(c HSV) uint32 {
	h := c.H * 360.0
	chroma := c.S * c.V
	x := chroma * (1.0 - math.Abs(math.Mod(h/60.0, 2.0)-1.0))
	m := c.V - chroma

	var r, g, b float64
	switch {
	case h >= 300:
		r, g, b = chroma, 0, x
	case h >= 240:
		r, g, b = x, 0, chroma
	case h >= 180:
		r, g, b = 0, x, chroma
	case h >= 120:
		r, g, b = 0, chroma, x
	case h >= 60:
		r, g, b = x, chroma, 0
	default:
		r, g, b = chroma, x, 0
	}

	ri := clampByte(int((r+m)*255.0 + 0.5))
	gi := clampByte(int((g+m)*255.0 + 0.5))
	bi := clampByte(int((b+m)*255.0 + 0.5))
	return ri<<redShift | gi<<greenShift | bi
}

// RGBToHSV converts every pixel of img into a freshly allocated HSV buffer.
func (p *Processor) RGBToHSV(img *Image) []HSV {
	hsv := make([]HSV, len(img.Pix))
	pix := img.Pix
	p.exec.ParallelFor(len(pix), func(start, end int) {
		for i := start; i < end; i++ {
			hsv[i] = PixelToHSV(pix[i])
		}
	})
	return hsv
}

// HSVToRGB writes the RGB form of hsv into dst, which must hold len(hsv) pixels.
func (p *Processor) HSVToRGB(dst *Image, hsv []HSV) error {
	if len(dst.Pix) != len(hsv) {
		return ErrDimensionMismatch
	}
	pix := dst.Pix
	p.exec.ParallelFor(len(hsv), func(start, end int) {
		for i := start; i < end; i++ {
			pix[i] = HSVToPixel(hsv[i])
		}
	})
	return nil
}
