package sketch

import "math"

// Blend combines the grayscale layer with the blurred layer into the sketch
// silhouette, writing the result into sketch. It is a simplified dodge blend:
// gray*256/sketch clamped to 255, with a zero blurred value saturating to 255.
func (p *Processor) Blend(gray, sketch *Image) error {
	if err := checkShape(gray, sketch); err != nil {
		return err
	}
	src, dst := gray.Pix, sketch.Pix
	p.exec.ParallelFor(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = BlendPixel(src[i], dst[i])
		}
	})
	return nil
}

// BlendPixel dodges one gray intensity against one blurred intensity.
func BlendPixel(gray, blurred uint32) uint32 {
	if blurred == 0 {
		return channelMax
	}
	return min(gray*256/blurred, channelMax)
}

// GammaTable precomputes table[v] = round(255 * (v/255)^gamma).
func GammaTable(gamma float64) [HistogramBins]uint32 {
	var table [HistogramBins]uint32
	for v := range table {
		table[v] = uint32(math.Pow(float64(v)/255.0, gamma)*255.0 + 0.5)
	}
	return table
}

// GammaCorrect remaps every intensity of a grayscale image through GammaTable.
// A gamma above 1 darkens midtones.
func (p *Processor) GammaCorrect(img *Image, gamma float64) {
	table := GammaTable(gamma)
	pix := img.Pix
	p.exec.ParallelFor(len(pix), func(start, end int) {
		for i := start; i < end; i++ {
			pix[i] = table[pix[i]&channelMax]
		}
	})
}
