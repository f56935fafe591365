package sketch

import "time"

// Stage names a step of the pencil-sketch pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageGrayscale     Stage = "grayscale"
	StageEqualize      Stage = "equalize"
	StageGaussian      Stage = "gaussian"
	StageBlend         Stage = "blend"
	StageBilateral     Stage = "bilateral"
	StageGamma         Stage = "gamma"
	StageColoredPencil Stage = "colored_pencil"
	StageGrayToRGB     Stage = "gray_to_rgb"
)

// Stages lists every stage in the order Run executes them.
var Stages = []Stage{
	StageGrayscale,
	StageEqualize,
	StageGaussian,
	StageBlend,
	StageBilateral,
	StageGamma,
	StageColoredPencil,
	StageGrayToRGB,
}

// Observer receives the wall time of each completed stage.
type Observer func(stage Stage, elapsed time.Duration)

// Processor applies the filters of the pipeline using an Executor to spread
// each filter's iteration space over workers.
type Processor struct {
	exec     Executor
	observer Observer
}

// Option configures a Processor.
type Option func(*Processor)

// WithObserver installs a callback invoked after each stage of Run.
func WithObserver(obs Observer) Option {
	return func(p *Processor) {
		p.observer = obs
	}
}

// NewProcessor creates a Processor. A nil executor runs everything serially.
func NewProcessor(exec Executor, opts ...Option) *Processor {
	if exec == nil {
		exec = Serial{}
	}
	p := &Processor{exec: exec}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// chunkCount returns how many private accumulators a reduction should use.
// It never exceeds n so every chunk owns at least one element.
func chunkCount(n, want int) int {
	if want < 1 {
		want = 1
	}
	if want > n {
		want = n
	}
	return want
}

// timed runs fn and reports its duration to the observer.
func (p *Processor) timed(stage Stage, fn func()) {
	if p.observer == nil {
		fn()
		return
	}
	start := time.Now()
	fn()
	p.observer(stage, time.Since(start))
}
