package sketch

// Result holds the two renderings produced by Run.
type Result struct {
	// Sketch is the monochrome pencil sketch as an RGB image.
	Sketch *Image
	// Colored is the colored-pencil rendering.
	Colored *Image
}

// Run executes the full pipeline on src and returns both renderings.
// src is not modified. Each stage finishes completely before the next starts.
func (p *Processor) Run(src *Image, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(src.Pix) != src.Width*src.Height {
		return nil, ErrDimensionMismatch
	}

	gray := src.Clone()
	p.timed(StageGrayscale, func() { p.Grayscale(gray) })
	p.timed(StageEqualize, func() { p.EqualizeHistogram(gray) })

	sketch := gray.Clone()
	p.timed(StageGaussian, func() { p.GaussianFilter(sketch, params.GaussianSize, params.Sigma) })

	var err error
	p.timed(StageBlend, func() { err = p.Blend(gray, sketch) })
	if err != nil {
		return nil, err
	}

	p.timed(StageBilateral, func() {
		p.BilateralFilter(sketch, params.BilateralSize, params.SigmaC, params.SigmaS)
	})
	p.timed(StageGamma, func() { p.GammaCorrect(sketch, params.Gamma) })

	var colored *Image
	p.timed(StageColoredPencil, func() {
		colored, err = p.ColoredPencil(src, sketch, params.Hue, params.Saturation)
	})
	if err != nil {
		return nil, err
	}

	p.timed(StageGrayToRGB, func() { p.GrayToRGB(sketch) })

	return &Result{Sketch: sketch, Colored: colored}, nil
}
