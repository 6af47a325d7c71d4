package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Relu is the rectifier max(0, x)
func Relu(x float64) float64 {
	return math.Max(0, x)
}

// Id is the identity activation
func Id(x float64) float64 {
	return x
}

// ToApply wraps an element-wise function for mat.Dense.Apply
func ToApply(f func(float64) float64) func(i, j int, v float64) float64 {
	return func(i, j int, v float64) float64 {
		return f(v)
	}
}

// Softmax returns exp(v) / sum(exp(v)). The maximum is subtracted before
// exponentiation, which leaves the result unchanged up to rounding.
func Softmax(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) == 0 {
		return out
	}
	m := floats.Max(v)
	for i, x := range v {
		out[i] = math.Exp(x - m)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// Argmax returns the index of the first maximum, false if v is empty
func Argmax(v []float64) (int, bool) {
	if len(v) == 0 {
		return 0, false
	}
	return floats.MaxIdx(v), true
}

// ArgmaxInt is Argmax for integer vectors
func ArgmaxInt(v []int) (int, bool) {
	if len(v) == 0 {
		return 0, false
	}
	idx := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[idx] {
			idx = i
		}
	}
	return idx, true
}

func Max(a []float64) float64 {
	return floats.Max(a)
}

func Min(a []float64) float64 {
	return floats.Min(a)
}
