package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// JobID tags an entry with the render job identifier.
func JobID(id string) zap.Field {
	return zap.String("job_id", id)
}

// InputPath tags an entry with the source image path.
func InputPath(path string) zap.Field {
	return zap.String("input", path)
}

// OutputPath tags an entry with a written output path.
func OutputPath(path string) zap.Field {
	return zap.String("output", path)
}

// Preset tags an entry with the parameter preset name.
func Preset(name string) zap.Field {
	return zap.String("preset", name)
}

// Dimensions records image size as a nested {width, height} object.
func Dimensions(width, height int) zap.Field {
	return zap.Object("dimensions", dimensions{width, height})
}

// StageDuration records how long one pipeline stage took.
func StageDuration(stage string, d time.Duration) zap.Field {
	return zap.Object("stage", stageTiming{stage, d})
}

type dimensions struct {
	width, height int
}

func (d dimensions) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("width", d.width)
	enc.AddInt("height", d.height)
	return nil
}

type stageTiming struct {
	name     string
	duration time.Duration
}

func (s stageTiming) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", s.name)
	enc.AddFloat64("duration_ms", float64(s.duration.Microseconds())/1000.0)
	return nil
}
