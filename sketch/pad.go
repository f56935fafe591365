package sketch

// PaddedSize returns the dimensions of the buffer Pad writes for a window of size.
func PaddedSize(width, height, size int) (int, int) {
	return width + size, height + size
}

// NewPadded allocates a buffer large enough to hold src padded by size.
func NewPadded(src *Image, size int) *Image {
	w, h := PaddedSize(src.Width, src.Height, size)
	return NewImage(w, h)
}

// Pad copies src into the centre of dst and extends the nearest edge or corner
// pixel outward into a border of size/2 pixels. dst must be
// (src.Width+size) x (src.Height+size). With an odd size the trailing border is
// one pixel wider than the leading one; it replicates the same edge.
//
// A size of zero degenerates to a plain copy.
func (p *Processor) Pad(dst, src *Image, size int) error {
	w, h := PaddedSize(src.Width, src.Height, size)
	if dst.Width != w || dst.Height != h {
		return ErrDimensionMismatch
	}
	p.pad(dst, src, size)
	return nil
}

// pad is Pad without the shape check; dst must come from NewPadded(src, size).
func (p *Processor) pad(dst, src *Image, size int) {
	if src.Width == 0 || src.Height == 0 {
		return
	}

	w, h := dst.Width, dst.Height
	half := size / 2
	p.exec.ParallelFor(h, func(start, end int) {
		for y := start; y < end; y++ {
			srcRow := src.Pix[clampIndex(y-half, src.Height)*src.Width:]
			dstRow := dst.Pix[y*w : (y+1)*w]

			for x := 0; x < half; x++ {
				dstRow[x] = srcRow[0]
			}
			copy(dstRow[half:half+src.Width], srcRow[:src.Width])
			edge := srcRow[src.Width-1]
			for x := half + src.Width; x < w; x++ {
				dstRow[x] = edge
			}
		}
	})
}

// clampIndex limits i to [0, n-1].
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
