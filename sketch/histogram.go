package sketch

// HistogramBins is the number of distinct 8-bit intensities.
const HistogramBins = 256

// EqualizationTable turns a histogram into the lookup table
// table[v] = round(255 * cumulative[v] / cumulative[255]).
//
// The histogram is overwritten in place: it first becomes the cumulative
// sum and then the remap table. An all-zero histogram maps to zero.
func EqualizationTable(hist *[HistogramBins]int) {
	for i := 1; i < HistogramBins; i++ {
		hist[i] += hist[i-1]
	}
	total := hist[HistogramBins-1]
	if total == 0 {
		return
	}
	for i, v := range hist {
		hist[i] = int(255.0*float64(v)/float64(total) + 0.5)
	}
}

// EqualizeHistogram spreads the intensities of a grayscale image over the full
// [0,255] range using its cumulative distribution.
//
// Each worker counts into its own private histogram; the private histograms
// are summed on the calling goroutine after every worker has finished.
func (p *Processor) EqualizeHistogram(img *Image) {
	pix := img.Pix
	n := len(pix)
	if n == 0 {
		return
	}

	chunks := chunkCount(n, 64)
	per := (n + chunks - 1) / chunks
	partial := make([][HistogramBins]int, chunks)

	p.exec.ParallelFor(chunks, func(cs, ce int) {
		for c := cs; c < ce; c++ {
			hist := &partial[c]
			end := min((c+1)*per, n)
			for i := c * per; i < end; i++ {
				hist[pix[i]&channelMax]++
			}
		}
	})

	var table [HistogramBins]int
	for c := range partial {
		for v, count := range partial[c] {
			table[v] += count
		}
	}
	EqualizationTable(&table)

	p.exec.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			pix[i] = uint32(table[pix[i]&channelMax])
		}
	})
}
