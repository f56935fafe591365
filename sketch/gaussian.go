package sketch

import "math"

// OddSize returns size, or size+1 when size is even. Kernels only support
// odd-width windows so that they have a centre tap.
func OddSize(size int) int {
	if size%2 == 0 {
		return size + 1
	}
	return size
}

// GaussianKernel1D returns a normalized 1-D Gaussian kernel of OddSize(size)
// taps. Entries sum to 1 and are symmetric about the centre.
func GaussianKernel1D(size int, sigma float64) []float64 {
	n := OddSize(size)
	variance := sigma * sigma * 2.0
	coefficient := 1.0 / math.Sqrt(variance*math.Pi)

	kernel := make([]float64, n)
	sum := 0.0
	for i := range kernel {
		x := float64(i - n/2)
		kernel[i] = coefficient * math.Exp(-(x*x)/variance)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianFilter blurs a grayscale image in place with a separable Gaussian of
// the given window size: one horizontal pass then one vertical pass, each
// reading a replicate-edge padded copy of the previous result.
//
// A size of zero leaves the image untouched.
func (p *Processor) GaussianFilter(img *Image, size int, sigma float64) {
	if size == 0 || img.Len() == 0 {
		return
	}

	n := OddSize(size)
	half := n / 2
	kernel := GaussianKernel1D(n, sigma)
	width, height := img.Width, img.Height
	stride := width + n
	padded := NewPadded(img, n)
	pix := img.Pix

	p.pad(padded, img, n)
	p.exec.ParallelFor(height, func(start, end int) {
		for y := start; y < end; y++ {
			row := padded.Pix[(y+half)*stride:]
			for x := 0; x < width; x++ {
				sum := 0.5
				for i, k := range kernel {
					sum += k * float64(row[x+i])
				}
				pix[y*width+x] = uint32(sum)
			}
		}
	})

	p.pad(padded, img, n)
	p.exec.ParallelFor(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				sum := 0.5
				col := y*stride + x + half
				for i, k := range kernel {
					sum += k * float64(padded.Pix[col+i*stride])
				}
				pix[y*width+x] = uint32(sum)
			}
		}
	})
}
