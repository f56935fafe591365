// Package sketch turns a packed RGB photograph into a pencil-sketch rendering.
//
// The pipeline is a fixed chain of per-pixel and neighborhood filters:
//
//	decoded pixels -> grayscale -> equalized -> blurred -> blended
//	    -> bilateral-filtered -> gamma-corrected -> (optionally) recolored
//
// Every filter is total over well-formed input. Work inside a filter is split
// across an Executor; each stage waits for all of its workers before the next
// stage starts, and the output is bit-identical whatever executor is used.
//
// Usage:
//
//	proc := sketch.NewProcessor(sketch.Serial{})
//	res, err := proc.Run(img, sketch.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	// res.Sketch is the monochrome sketch, res.Colored the colored-pencil image
package sketch
