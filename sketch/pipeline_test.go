package sketch

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pencilsketch/workerpool"
)

func TestRunBlackImageRendersWhite(t *testing.T) {
	src := NewImage(2, 2)
	params := DefaultParams()
	params.GaussianSize = 0

	res, err := NewProcessor(Serial{}).Run(src, params)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []uint32{0xFFFFFF, 0xFFFFFF, 0xFFFFFF, 0xFFFFFF}
	if diff := cmp.Diff(want, res.Sketch.Pix); diff != "" {
		t.Errorf("sketch mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, res.Colored.Pix); diff != "" {
		t.Errorf("colored mismatch (-want +got):\n%s", diff)
	}
}

func TestRunParallelMatchesSerial(t *testing.T) {
	src := noiseImage(t, 37, 23, 99)
	params := DefaultParams()
	params.GaussianSize = 7
	params.Sigma = 2.0

	serial, err := NewProcessor(Serial{}).Run(src, params)
	if err != nil {
		t.Fatalf("serial Run() error = %v", err)
	}

	for _, workers := range []int{2, 4, 7} {
		pool := workerpool.New(workers)
		parallel, err := NewProcessor(pool).Run(src, params)
		pool.Close()
		if err != nil {
			t.Fatalf("Run() with %d workers error = %v", workers, err)
		}
		if diff := cmp.Diff(serial, parallel); diff != "" {
			t.Errorf("%d workers differ from serial (-serial +parallel):\n%s", workers, diff)
		}
	}
}

func TestRunLeavesSourceUntouched(t *testing.T) {
	src := noiseImage(t, 9, 9, 3)
	before := src.Clone()

	if _, err := NewProcessor(Serial{}).Run(src, DefaultParams()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(before, src); diff != "" {
		t.Errorf("source modified (-before +after):\n%s", diff)
	}
}

func TestRunOutputsArePacked(t *testing.T) {
	src := noiseImage(t, 11, 8, 21)
	res, err := NewProcessor(Serial{}).Run(src, DefaultParams())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, p := range res.Sketch.Pix {
		r, g, b := Unpack(p)
		if p>>24 != 0 || r != g || g != b {
			t.Fatalf("sketch pixel %d = %#x, want gray packed word", i, p)
		}
	}
	for i, p := range res.Colored.Pix {
		if p>>24 != 0 {
			t.Fatalf("colored pixel %d = %#x has high byte set", i, p)
		}
	}
}

func TestRunReportsEveryStage(t *testing.T) {
	var seen []Stage
	obs := func(stage Stage, elapsed time.Duration) {
		if elapsed < 0 {
			t.Errorf("stage %s: negative duration", stage)
		}
		seen = append(seen, stage)
	}

	if _, err := NewProcessor(nil, WithObserver(obs)).Run(gradientImage(6, 5), DefaultParams()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(Stages, seen); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	params := DefaultParams()
	params.Gamma = -1
	if _, err := NewProcessor(Serial{}).Run(NewImage(2, 2), params); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Run() error = %v, want ErrInvalidParams", err)
	}

	bad := &Image{Pix: make([]uint32, 3), Width: 2, Height: 2}
	if _, err := NewProcessor(Serial{}).Run(bad, DefaultParams()); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Run() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestRunEmptyImage(t *testing.T) {
	res, err := NewProcessor(Serial{}).Run(NewImage(0, 0), DefaultParams())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Sketch.Len() != 0 || res.Colored.Len() != 0 {
		t.Errorf("expected empty outputs, got %d and %d pixels", res.Sketch.Len(), res.Colored.Len())
	}
}
