package evaluation

import (
	"fmt"
	"math"
)

// LayerErrorStats accumulates the absolute error of one layer
type LayerErrorStats struct {
	Layer      int
	TotalError float64
	Count      int
	Truncated  int // units whose streams had different lengths
	Skipped    int // units that could not be read or decoded

	distances []float64
}

// Add accumulates |approx_i - golden_i| over the common prefix. A length
// mismatch is returned as a *DimensionMismatchError once the prefix has
// been accumulated.
func (s *LayerErrorStats) Add(approx, golden []int) error {
	n := len(approx)
	if len(golden) < n {
		n = len(golden)
	}
	for i := 0; i < n; i++ {
		d := math.Abs(float64(approx[i] - golden[i]))
		s.TotalError += d
		s.distances = append(s.distances, d)
	}
	s.Count += n

	if len(approx) != len(golden) {
		s.Truncated++
		return &DimensionMismatchError{Layer: s.Layer, Approx: len(approx), Golden: len(golden)}
	}
	return nil
}

// Merge folds o into s. Merging is associative and commutative up to the
// order of the recorded distances.
func (s *LayerErrorStats) Merge(o *LayerErrorStats) {
	s.TotalError += o.TotalError
	s.Count += o.Count
	s.Truncated += o.Truncated
	s.Skipped += o.Skipped
	s.distances = append(s.distances, o.distances...)
}

// MED is the mean error distance, 0 when nothing was accumulated
func (s *LayerErrorStats) MED() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.TotalError / float64(s.Count)
}

// NMED is MED normalised by the 2^bits output range
func (s *LayerErrorStats) NMED(bits int) float64 {
	return s.MED() / math.Ldexp(1, bits)
}

// Distances returns every accumulated absolute error
func (s *LayerErrorStats) Distances() []float64 {
	return s.distances
}

// ErrorAccumulator holds one LayerErrorStats per layer
type ErrorAccumulator struct {
	layers []*LayerErrorStats
}

func NewErrorAccumulator(nlayers int) *ErrorAccumulator {
	acc := &ErrorAccumulator{layers: make([]*LayerErrorStats, nlayers)}
	for l := range acc.layers {
		acc.layers[l] = &LayerErrorStats{Layer: l}
	}
	return acc
}

func (acc *ErrorAccumulator) Add(layer int, approx, golden []int) error {
	if layer < 0 || layer >= len(acc.layers) {
		return fmt.Errorf("layer %d out of range [0, %d)", layer, len(acc.layers))
	}
	return acc.layers[layer].Add(approx, golden)
}

// Skip records a unit of layer that could not be decoded
func (acc *ErrorAccumulator) Skip(layer int) {
	acc.layers[layer].Skipped++
}

func (acc *ErrorAccumulator) Merge(o *ErrorAccumulator) {
	for l := range acc.layers {
		acc.layers[l].Merge(o.layers[l])
	}
}

func (acc *ErrorAccumulator) Layer(l int) *LayerErrorStats {
	return acc.layers[l]
}

func (acc *ErrorAccumulator) Len() int {
	return len(acc.layers)
}
