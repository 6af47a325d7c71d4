package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ldsec/approxnn/layers"
)

// Settings captures the knobs of an evaluation run
type Settings struct {
	RootDir    string `toml:"root_dir"`
	Pattern    string `toml:"pattern"`
	Version    string `toml:"version"`
	Golden     string `toml:"golden"`
	LabelsPath string `toml:"labels"`

	WordBits   int `toml:"word_bits"`
	Layers     int `toml:"layers"`
	BatchStart int `toml:"batch_start"`
	BatchCount int `toml:"batch_count"`
	Workers    int `toml:"workers"`

	Debug      int    `toml:"debug"`
	Time       bool   `toml:"time"`
	ReportPath string `toml:"report"`
	PlotDir    string `toml:"plot_dir"`

	Reference ReferenceSettings `toml:"reference"`
}

// ReferenceSettings locates the float model and its inputs
type ReferenceSettings struct {
	WeightsPattern string       `toml:"weights"`
	InputsPattern  string       `toml:"inputs"`
	LabelsPath     string       `toml:"labels"`
	Shapes         []LayerShape `toml:"shape"`
}

// LayerShape is the declared (out, in) of one weight blob
type LayerShape struct {
	Out int `toml:"out"`
	In  int `toml:"in"`
}

// Overrides captures CLI supplied values, zero values are ignored.
// BatchStart is a pointer since 0 is a valid start.
type Overrides struct {
	RootDir    string
	Version    string
	Golden     string
	LabelsPath string
	BatchStart *int
	BatchCount int
	Workers    int
	Debug      int
	ReportPath string
	PlotDir    string
}

// DefaultSettings returns the settings used when no file is given
func DefaultSettings() *Settings {
	return &Settings{
		RootDir:    ROOT_DIR,
		Pattern:    DUMP_PATTERN,
		LabelsPath: LABELS_FILE,
		WordBits:   WORD_BITS,
		Layers:     NLAYERS,
		BatchStart: BATCH_START,
		BatchCount: BATCH_COUNT,
		Workers:    WORKERS,
		Debug:      DEBUG_LEVEL,
		Reference: ReferenceSettings{
			WeightsPattern: REFERENCE_WEIGHTS,
			InputsPattern:  REFERENCE_INPUTS,
			LabelsPath:     REFERENCE_LABELS,
		},
	}
}

// LoadSettings decodes a TOML file over the defaults. Unknown keys are an error.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	md, err := toml.DecodeFile(path, s)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("settings %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return s, nil
}

// ApplyOverrides updates s using any non-zero override
func (s *Settings) ApplyOverrides(o Overrides) {
	if o.RootDir != "" {
		s.RootDir = o.RootDir
	}
	if o.Version != "" {
		s.Version = o.Version
	}
	if o.Golden != "" {
		s.Golden = o.Golden
	}
	if o.LabelsPath != "" {
		s.LabelsPath = o.LabelsPath
	}
	if o.BatchStart != nil {
		s.BatchStart = *o.BatchStart
	}
	if o.BatchCount > 0 {
		s.BatchCount = o.BatchCount
	}
	if o.Workers > 0 {
		s.Workers = o.Workers
	}
	if o.Debug > 0 {
		s.Debug = o.Debug
	}
	if o.ReportPath != "" {
		s.ReportPath = o.ReportPath
	}
	if o.PlotDir != "" {
		s.PlotDir = o.PlotDir
	}
}

// Validate checks the hardware evaluation part of the settings
func (s *Settings) Validate() error {
	if s == nil {
		return errors.New("settings are nil")
	}
	if s.Version == "" {
		return errors.New("version to test must be set")
	}
	if s.Golden == "" {
		return errors.New("golden reference tag must be set")
	}
	if !strings.Contains(s.Pattern, "{version}") || !strings.Contains(s.Pattern, "{sample}") ||
		!strings.Contains(s.Pattern, "{layer}") {
		return fmt.Errorf("pattern %q must contain {version}, {sample} and {layer}", s.Pattern)
	}
	if s.WordBits <= 0 || s.WordBits > 62 {
		return fmt.Errorf("word_bits must be in [1, 62] (got %d)", s.WordBits)
	}
	if s.Layers <= 0 {
		return fmt.Errorf("layers must be > 0 (got %d)", s.Layers)
	}
	if s.BatchStart < 0 {
		return fmt.Errorf("batch_start must be >= 0 (got %d)", s.BatchStart)
	}
	if s.BatchCount <= 0 {
		return fmt.Errorf("batch_count must be > 0 (got %d)", s.BatchCount)
	}
	if s.Workers <= 0 {
		s.Workers = 1
	}
	return nil
}

// ValidateReference checks the float reference part of the settings
func (s *Settings) ValidateReference() error {
	r := s.Reference
	if !strings.Contains(r.WeightsPattern, "{layer}") {
		return fmt.Errorf("reference weights %q must contain {layer}", r.WeightsPattern)
	}
	if !strings.Contains(r.InputsPattern, "{sample}") {
		return fmt.Errorf("reference inputs %q must contain {sample}", r.InputsPattern)
	}
	if len(r.Shapes) != s.Layers {
		return fmt.Errorf("reference declares %d layer shapes for %d layers", len(r.Shapes), s.Layers)
	}
	for l, shape := range r.Shapes {
		if shape.Out <= 0 || shape.In <= 0 {
			return fmt.Errorf("reference layer %d: invalid shape (%d, %d)", l, shape.Out, shape.In)
		}
	}
	if s.BatchCount <= 0 {
		return fmt.Errorf("batch_count must be > 0 (got %d)", s.BatchCount)
	}
	return nil
}

// LayerShapes converts the declared shapes
func (r ReferenceSettings) LayerShapes() []layers.Shape {
	shapes := make([]layers.Shape, len(r.Shapes))
	for i, s := range r.Shapes {
		shapes[i] = layers.Shape{Out: s.Out, In: s.In}
	}
	return shapes
}
