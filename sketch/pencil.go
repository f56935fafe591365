package sketch

import "math"

// ColoredPencil recolors a sketch with the hue and saturation of the original
// photograph. The original is converted to HSV; hue is multiplied by hue,
// saturation is raised to the power saturation, and value is replaced by the
// sketch intensity. The result is returned as a new RGB image; neither input
// is modified.
func (p *Processor) ColoredPencil(original, sketch *Image, hue, saturation float64) (*Image, error) {
	if err := checkShape(original, sketch); err != nil {
		return nil, err
	}

	hsv := p.RGBToHSV(original)
	pix := sketch.Pix
	p.exec.ParallelFor(len(hsv), func(start, end int) {
		for i := start; i < end; i++ {
			c := &hsv[i]
			c.H *= hue
			c.S = math.Pow(c.S, saturation)
			c.V = float64(pix[i]&channelMax) / 255.0
		}
	})

	out := NewImage(original.Width, original.Height)
	if err := p.HSVToRGB(out, hsv); err != nil {
		return nil, err
	}
	return out, nil
}
