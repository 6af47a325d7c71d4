package utils

import (
	"errors"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Histogram saves a histogram of v to filename+".png", one bin per unit of range
func Histogram(v []float64, title, filename string) error {
	if len(v) == 0 {
		return errors.New("histogram: no values")
	}
	n := int(math.Abs(Max(v) - Min(v)))
	if n < 1 {
		n = 1
	}

	p := plot.New()
	p.Title.Text = title

	h, err := plotter.NewHist(plotter.Values(v), n)
	if err != nil {
		return err
	}
	p.Add(h)

	return p.Save(4*vg.Inch, 4*vg.Inch, filename+".png")
}
