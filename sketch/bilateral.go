package sketch

import "math"

// GaussianKernel2D returns a normalized OddSize(size) x OddSize(size) Gaussian
// kernel, flattened row-major. It is the spatial term of the bilateral filter.
func GaussianKernel2D(size int, sigma float64) []float64 {
	n := OddSize(size)
	variance := sigma * sigma * 2.0
	coefficient := 1.0 / (variance * math.Pi)

	kernel := make([]float64, n*n)
	sum := 0.0
	for i := 0; i < n; i++ {
		x := float64(i - n/2)
		for j := 0; j < n; j++ {
			y := float64(j - n/2)
			v := coefficient * math.Exp(-(x*x+y*y)/variance)
			kernel[i*n+j] = v
			sum += v
		}
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// RangeKernel returns the 1-D Gaussian density evaluated at every possible
// absolute intensity difference 0..255. It is the edge-preserving term of the
// bilateral filter.
func RangeKernel(sigmaC float64) [HistogramBins]float64 {
	variance := sigmaC * sigmaC * 2.0
	coefficient := 1.0 / math.Sqrt(variance*math.Pi)

	var kernel [HistogramBins]float64
	for d := range kernel {
		fd := float64(d)
		kernel[d] = coefficient * math.Exp(-(fd*fd)/variance)
	}
	return kernel
}

// BilateralFilter smooths a grayscale image in place while preserving edges.
// Every neighbour in the size x size window is weighted by its spatial
// Gaussian weight times the range weight of its intensity difference to the
// centre pixel. The output is the rounded weighted mean.
//
// A size of zero leaves the image untouched.
func (p *Processor) BilateralFilter(img *Image, size int, sigmaC, sigmaS float64) {
	if size == 0 || img.Len() == 0 {
		return
	}

	n := OddSize(size)
	spatial := GaussianKernel2D(n, sigmaS)
	rng := RangeKernel(sigmaC)
	width, height := img.Width, img.Height
	stride := width + n
	padded := NewPadded(img, n)
	p.pad(padded, img, n)
	pix := img.Pix

	p.exec.ParallelFor(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				index := y*width + x
				current := int(pix[index])
				var weights, total float64
				for i := 0; i < n; i++ {
					row := padded.Pix[(y+i)*stride+x:]
					for j := 0; j < n; j++ {
						neighbour := int(row[j])
						diff := current - neighbour
						if diff < 0 {
							diff = -diff
						}
						w := spatial[i*n+j] * rng[diff&channelMax]
						weights += w
						total += float64(neighbour) * w
					}
				}
				pix[index] = uint32(total/weights + 0.5)
			}
		}
	})
}
