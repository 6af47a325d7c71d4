package common

import (
	"fmt"
	"strings"

	"github.com/ldsec/approxnn/network"
	"github.com/ldsec/approxnn/utils"
	"go.dedis.ch/onet/v3/log"
)

// LoadReferenceNetwork loads one weight blob per declared layer shape
func LoadReferenceNetwork(s *Settings) (*network.Network, error) {
	shapes := s.Reference.LayerShapes()
	blobs := make([]network.WeightBlob, len(shapes))
	for l, shape := range shapes {
		fname := Expand(s.Reference.WeightsPattern, "", -1, l)
		weights, dims, err := utils.LoadNpy(fname)
		if err != nil {
			return nil, err
		}
		log.Lvl2("layer", l, "weights", fname, "npy shape", dims, "declared", shape)
		blobs[l] = network.WeightBlob{Shape: shape, Weights: weights}
	}
	return network.New(blobs)
}

// LoadReferenceInputs loads the flattened inputs of the configured batch
func LoadReferenceInputs(s *Settings) ([][]float64, error) {
	inputs := make([][]float64, s.BatchCount)
	for i := range inputs {
		fname := Expand(s.Reference.InputsPattern, "", s.BatchStart+i, -1)
		values, _, err := utils.LoadNpy(fname)
		if err != nil {
			return nil, err
		}
		inputs[i] = values
	}
	return inputs, nil
}

// LoadLabelFile reads labels from a .npy array or an idx1 label file
func LoadLabelFile(fname string) ([]int, error) {
	if strings.HasSuffix(fname, ".npy") {
		values, _, err := utils.LoadNpy(fname)
		if err != nil {
			return nil, err
		}
		return utils.FloatsToLabels(values), nil
	}
	return utils.LoadLabels(fname)
}

// BatchLabels returns the labels of samples [start, start+count)
func BatchLabels(labels []int, start, count int) ([]int, error) {
	if start < 0 || start+count > len(labels) {
		return nil, fmt.Errorf("batch [%d, %d) exceeds the %d available labels", start, start+count, len(labels))
	}
	return labels[start : start+count], nil
}
