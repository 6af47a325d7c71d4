// Package network is the floating-point reference of the fully connected
// classifier simulated in hardware: every layer but the last is
// ReLU(x · Wᵗ), the last one is softmax(x · Wᵗ).
package network

import (
	"errors"
	"fmt"

	"github.com/ldsec/approxnn/layers"
	"github.com/ldsec/approxnn/utils"
	"go.dedis.ch/onet/v3/log"
	"gonum.org/v1/gonum/mat"
)

// WeightBlob is one layer's flat row-major weights with their shape
type WeightBlob struct {
	Shape   layers.Shape
	Weights []float64
}

type Network struct {
	layers []*layers.Dense
}

// New chains the blobs into a network. Widths must line up: the input of
// layer l is the output of layer l-1.
func New(blobs []WeightBlob) (*Network, error) {
	if len(blobs) == 0 {
		return nil, errors.New("network: no layers")
	}
	net := &Network{layers: make([]*layers.Dense, len(blobs))}
	for l, blob := range blobs {
		if l > 0 && blob.Shape.In != blobs[l-1].Shape.Out {
			return nil, fmt.Errorf("network: layer %d expects %d inputs, layer %d produces %d",
				l, blob.Shape.In, l-1, blobs[l-1].Shape.Out)
		}
		activation := utils.Relu
		if l == len(blobs)-1 {
			activation = nil
		}
		dense, err := layers.NewDense(blob.Shape, blob.Weights, activation)
		if err != nil {
			return nil, fmt.Errorf("network: layer %d: %w", l, err)
		}
		net.layers[l] = dense
	}
	return net, nil
}

// InputSize is the width expected by the first layer
func (net *Network) InputSize() int {
	return net.layers[0].Shape().In
}

// Classes is the width of the final layer
func (net *Network) Classes() int {
	return net.layers[len(net.layers)-1].Shape().Out
}

// Forward returns the softmax output for one input vector
func (net *Network) Forward(input []float64) ([]float64, error) {
	if len(input) != net.InputSize() {
		return nil, fmt.Errorf("network: input has %d values, expected %d", len(input), net.InputSize())
	}
	x := make([]float64, len(input))
	copy(x, input)

	var out mat.Matrix = mat.NewDense(1, len(x), x)
	for l, dense := range net.layers {
		next, err := dense.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("network: layer %d: %w", l, err)
		}
		out = next
	}
	return utils.Softmax(mat.Row(nil, 0, out)), nil
}

// Predict returns the argmax of Forward. Softmax is monotonic so the class
// equals the argmax of the final logits.
func (net *Network) Predict(input []float64) (int, error) {
	probs, err := net.Forward(input)
	if err != nil {
		return 0, err
	}
	class, _ := utils.Argmax(probs)
	return class, nil
}

// Evaluate predicts every input and returns the predictions and the
// accuracy in percent against labels
func (net *Network) Evaluate(inputs [][]float64, labels []int) ([]int, float64, error) {
	if len(inputs) != len(labels) {
		return nil, 0, fmt.Errorf("network: %d inputs for %d labels", len(inputs), len(labels))
	}
	classes := net.Classes()
	for i, label := range labels {
		if label < 0 || label >= classes {
			return nil, 0, fmt.Errorf("network: label %d of sample %d is outside the %d classes", label, i, classes)
		}
	}
	predictions := make([]int, len(inputs))
	for i, input := range inputs {
		class, err := net.Predict(input)
		if err != nil {
			return nil, 0, fmt.Errorf("sample %d: %w", i, err)
		}
		predictions[i] = class
		log.Lvlf3("sample %d: predicted %d, label %d", i, class, labels[i])
	}
	return predictions, utils.ComputeAccuracy(predictions, labels), nil
}
