package layers

import (
	"fmt"

	"github.com/ldsec/approxnn/utils"
	"gonum.org/v1/gonum/mat"
)

// Shape is the (out, in) geometry of a fully connected layer
type Shape struct {
	Out int
	In  int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Out, s.In)
}

// a fully connected layer without bias, weights stored out x in
type Dense struct {
	shape      Shape
	weights    *mat.Dense
	activation func(float64) float64
}

// NewDense builds a layer from a row-major weight blob of the given shape.
// activation may be nil for a linear layer.
func NewDense(shape Shape, blob []float64, activation func(float64) float64) (*Dense, error) {
	if shape.Out <= 0 || shape.In <= 0 {
		return nil, fmt.Errorf("layers: invalid shape %v", shape)
	}
	if len(blob) != shape.Out*shape.In {
		return nil, fmt.Errorf("layers: blob of %d weights does not fit shape %v", len(blob), shape)
	}
	if activation == nil {
		activation = utils.Id
	}
	w := make([]float64, len(blob))
	copy(w, blob)
	return &Dense{
		shape:      shape,
		weights:    mat.NewDense(shape.Out, shape.In, w),
		activation: activation,
	}, nil
}

// Forward computes activation(input · Wᵗ) for a nsamples x in input
func (dense *Dense) Forward(input mat.Matrix) (*mat.Dense, error) {
	nsamples, nfeatures := input.Dims()
	if nfeatures != dense.shape.In {
		return nil, fmt.Errorf("layers: input width %d, layer expects %d", nfeatures, dense.shape.In)
	}

	output := mat.NewDense(nsamples, dense.shape.Out, nil)
	output.Mul(input, dense.weights.T())
	output.Apply(utils.ToApply(dense.activation), output)
	return output, nil
}

func (dense *Dense) Shape() Shape {
	return dense.shape
}
