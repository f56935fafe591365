package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"pencilsketch/sketch"
)

// DefaultPreset is used when SKETCH_PRESET is not set.
const DefaultPreset = "pencil"

// Presets maps preset names to pipeline parameters.
type Presets map[string]sketch.Params

// BuiltinPresets returns the presets compiled into the binary.
func BuiltinPresets() Presets {
	return Presets{
		"pencil": sketch.DefaultParams(),
		"soft": {
			GaussianSize:  15,
			Sigma:         3.0,
			BilateralSize: 5,
			SigmaC:        40.0,
			SigmaS:        8.0,
			Gamma:         3.0,
			Hue:           1.0,
			Saturation:    1.0,
		},
		"charcoal": {
			GaussianSize:  41,
			Sigma:         10.0,
			BilateralSize: 7,
			SigmaC:        120.0,
			SigmaS:        30.0,
			Gamma:         9.0,
			Hue:           1.0,
			Saturation:    1.5,
		},
	}
}

// presetDocument is the YAML layout of a presets file:
//
//	presets:
//	  fine:
//	    base: pencil
//	    gaussian_size: 11
//	    gamma: 4
type presetDocument struct {
	Presets map[string]yaml.Node `yaml:"presets"`
}

type presetEntry struct {
	Base          string `yaml:"base"`
	sketch.Params `yaml:",inline"`
}

// LoadPresets returns the built-in presets merged with those defined in the
// YAML file at path. A preset in the file starts from its "base" preset (or
// the built-in of the same name, or pencil) and overrides only the fields it
// sets. A base may name another preset of the same file; a base equal to the
// preset's own name refers to the built-in. Unknown keys are rejected. An
// empty path returns the built-ins. Every preset is validated.
func LoadPresets(path string) (Presets, error) {
	presets := BuiltinPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrPresetFileUnreadable(path, err)
	}

	var doc presetDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrPresetFileUnreadable(path, err)
	}

	l := &presetLoader{
		builtin:  BuiltinPresets(),
		file:     doc.Presets,
		resolved: make(Presets, len(doc.Presets)),
		active:   make(map[string]bool),
	}
	for _, name := range slices.Sorted(maps.Keys(doc.Presets)) {
		if _, err := l.resolve(name); err != nil {
			return nil, err
		}
	}
	maps.Copy(presets, l.resolved)

	for _, name := range presets.Names() {
		if err := presets[name].Validate(); err != nil {
			return nil, ErrInvalidPreset(name, err)
		}
	}
	return presets, nil
}

// presetLoader resolves file presets depth first so a base is always
// complete before the presets built on it.
type presetLoader struct {
	builtin  Presets
	file     map[string]yaml.Node
	resolved Presets
	active   map[string]bool
}

func (l *presetLoader) resolve(name string) (sketch.Params, error) {
	if p, ok := l.resolved[name]; ok {
		return p, nil
	}
	if l.active[name] {
		return sketch.Params{}, ErrInvalidPreset(name, errors.New("base presets form a cycle"))
	}
	l.active[name] = true
	defer delete(l.active, name)

	node := l.file[name]
	var head presetEntry
	if err := decodeStrict(&node, &head); err != nil {
		return sketch.Params{}, ErrInvalidPreset(name, err)
	}

	start, err := l.start(name, head.Base)
	if err != nil {
		return sketch.Params{}, err
	}

	entry := presetEntry{Params: start}
	if err := decodeStrict(&node, &entry); err != nil {
		return sketch.Params{}, ErrInvalidPreset(name, err)
	}
	l.resolved[name] = entry.Params
	return entry.Params, nil
}

func (l *presetLoader) start(name, base string) (sketch.Params, error) {
	if base == "" {
		if p, ok := l.builtin[name]; ok {
			return p, nil
		}
		return l.builtin[DefaultPreset], nil
	}
	if _, ok := l.file[base]; ok && base != name {
		return l.resolve(base)
	}
	if p, ok := l.builtin[base]; ok {
		return p, nil
	}
	return sketch.Params{}, ErrInvalidPreset(name, fmt.Errorf("unknown base preset %q", base))
}

// decodeStrict decodes node into out, rejecting keys out does not declare.
func decodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Resolve returns the parameters of the named preset.
func (p Presets) Resolve(name string) (sketch.Params, error) {
	params, ok := p[name]
	if !ok {
		return sketch.Params{}, ErrPresetNotFound(name, p.Names())
	}
	return params, nil
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	return slices.Sorted(maps.Keys(p))
}
