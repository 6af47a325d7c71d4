package evaluation

import "fmt"

// DimensionMismatchError reports approximate and golden streams of
// different lengths. Both were truncated to the shorter one.
type DimensionMismatchError struct {
	Layer  int
	Approx int
	Golden int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("layer %d: approximate output has %d values, golden has %d", e.Layer, e.Approx, e.Golden)
}

// EmptyOutputError reports a final layer output without any value
type EmptyOutputError struct {
	Label int
}

func (e *EmptyOutputError) Error() string {
	return fmt.Sprintf("empty final layer output (label %d)", e.Label)
}
