package evaluation

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/ldsec/approxnn/utils"
	"github.com/montanaflynn/stats"
	"github.com/pelletier/go-toml"
)

// Report is the outcome of one evaluation run
type Report struct {
	Version        string  `toml:"version"`
	Golden         string  `toml:"golden"`
	WordBits       int     `toml:"word_bits"`
	Samples        int     `toml:"samples"`
	Accuracy       float64 `toml:"accuracy_percent"`
	GoldenAccuracy float64 `toml:"golden_accuracy_percent"`
	EmptyOutputs   int     `toml:"empty_outputs"`
	Unscored       int     `toml:"unscored"`

	Layers []LayerReport `toml:"layer"`
}

// LayerReport summarises the error of one layer
type LayerReport struct {
	Layer       int     `toml:"layer"`
	MED         float64 `toml:"med"`
	NMED        float64 `toml:"nmed"`
	NMEDPercent float64 `toml:"nmed_percent"`
	MaxError    float64 `toml:"max_error"`
	StdDev      float64 `toml:"std_dev"`
	P99         float64 `toml:"p99"`
	Count       int     `toml:"count"`
	Truncated   int     `toml:"truncated"`
	Skipped     int     `toml:"skipped"`

	Distances []float64 `toml:"-"`
}

func newLayerReport(s *LayerErrorStats, bits int) LayerReport {
	r := LayerReport{
		Layer:     s.Layer,
		MED:       s.MED(),
		NMED:      s.NMED(bits),
		Count:     s.Count,
		Truncated: s.Truncated,
		Skipped:   s.Skipped,
		Distances: s.Distances(),
	}
	r.NMEDPercent = 100 * r.NMED

	if len(r.Distances) > 0 {
		data := stats.Float64Data(r.Distances)
		r.MaxError, _ = stats.Max(data)
		r.StdDev, _ = stats.StandardDeviation(data)
		r.P99, _ = stats.Percentile(data, 99)
	}
	return r
}

func (r *Report) String() string {
	s := fmt.Sprintf("Acc: %v\n", r.Accuracy)
	s += fmt.Sprintf("Golden acc: %v\n", r.GoldenAccuracy)
	if r.EmptyOutputs > 0 || r.Unscored > 0 {
		s += fmt.Sprintf("Empty outputs: %d, unscored: %d\n", r.EmptyOutputs, r.Unscored)
	}
	for _, l := range r.Layers {
		s += fmt.Sprintf("Layer %d MED: %v NMED: %v NMED%%: %v%%\n", l.Layer, l.MED, l.NMED, l.NMEDPercent)
	}
	return s
}

// WriteTOML saves the report
func (r *Report) WriteTOML(path string) error {
	b, err := toml.Marshal(*r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return ioutil.WriteFile(path, b, 0o644)
}

// PlotHistograms saves one error histogram per layer in dir
func (r *Report) PlotHistograms(dir string) error {
	for _, l := range r.Layers {
		if len(l.Distances) == 0 {
			continue
		}
		fname := filepath.Join(dir, fmt.Sprintf("%s_layer%d_error", r.Version, l.Layer))
		title := fmt.Sprintf("%s layer %d absolute error", r.Version, l.Layer)
		if err := utils.Histogram(l.Distances, title, fname); err != nil {
			return fmt.Errorf("layer %d histogram: %w", l.Layer, err)
		}
	}
	return nil
}
