package sketch

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams reports a parameter outside the domain the filters accept.
var ErrInvalidParams = errors.New("sketch: invalid parameters")

// Params holds every tunable of the pipeline. None has an implicit default
// inside the filters; DefaultParams returns the reference pencil settings.
type Params struct {
	// GaussianSize is the blur window width. Even sizes are widened by one;
	// zero disables the blur.
	GaussianSize int `yaml:"gaussian_size" json:"gaussian_size"`
	// Sigma is the Gaussian spread of the blur.
	Sigma float64 `yaml:"sigma" json:"sigma"`
	// BilateralSize is the edge-preserving window width; zero disables it.
	BilateralSize int `yaml:"bilateral_size" json:"bilateral_size"`
	// SigmaC is the intensity-difference sensitivity. Larger values preserve
	// fewer edges.
	SigmaC float64 `yaml:"sigma_c" json:"sigma_c"`
	// SigmaS is the spatial falloff of the bilateral window.
	SigmaS float64 `yaml:"sigma_s" json:"sigma_s"`
	// Gamma is the contrast curve exponent applied to the sketch.
	Gamma float64 `yaml:"gamma" json:"gamma"`
	// Hue scales the hue of the colored-pencil output.
	Hue float64 `yaml:"hue" json:"hue"`
	// Saturation is the exponent applied to saturation; below 1 boosts it.
	Saturation float64 `yaml:"saturation" json:"saturation"`
}

// DefaultParams returns the classic pencil settings.
func DefaultParams() Params {
	return Params{
		GaussianSize:  31,
		Sigma:         6.0,
		BilateralSize: 3,
		SigmaC:        230.0,
		SigmaS:        230.0,
		Gamma:         6.0,
		Hue:           1.0,
		Saturation:    0.8,
	}
}

// Validate rejects parameters the filters are not defined for.
// Sigmas of disabled stages are not checked.
func (p Params) Validate() error {
	var errs []error

	if p.GaussianSize < 0 {
		errs = append(errs, fmt.Errorf("gaussian size must be >= 0, got %d", p.GaussianSize))
	}
	if p.GaussianSize > 0 && !positive(p.Sigma) {
		errs = append(errs, fmt.Errorf("sigma must be > 0, got %v", p.Sigma))
	}
	if p.BilateralSize < 0 {
		errs = append(errs, fmt.Errorf("bilateral size must be >= 0, got %d", p.BilateralSize))
	}
	if p.BilateralSize > 0 {
		if !positive(p.SigmaC) {
			errs = append(errs, fmt.Errorf("sigma_c must be > 0, got %v", p.SigmaC))
		}
		if !positive(p.SigmaS) {
			errs = append(errs, fmt.Errorf("sigma_s must be > 0, got %v", p.SigmaS))
		}
	}
	if !positive(p.Gamma) {
		errs = append(errs, fmt.Errorf("gamma must be > 0, got %v", p.Gamma))
	}
	if p.Hue < 0 || math.IsNaN(p.Hue) || math.IsInf(p.Hue, 0) {
		errs = append(errs, fmt.Errorf("hue must be a finite value >= 0, got %v", p.Hue))
	}
	if !positive(p.Saturation) {
		errs = append(errs, fmt.Errorf("saturation must be > 0, got %v", p.Saturation))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
