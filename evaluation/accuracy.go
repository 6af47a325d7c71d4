package evaluation

import "github.com/ldsec/approxnn/utils"

// AccuracyEvaluator counts correctly classified samples
type AccuracyEvaluator struct {
	Correct int
	Total   int

	Empty    int // final layer decoded to no value
	Unscored int // final layer unreadable or undecodable
}

// Observe scores one final layer output against its label. An empty output
// counts towards Total and Empty and is reported as *EmptyOutputError.
func (a *AccuracyEvaluator) Observe(output []int, label int) error {
	a.Total++
	class, ok := utils.ArgmaxInt(output)
	if !ok {
		a.Empty++
		return &EmptyOutputError{Label: label}
	}
	if class == label {
		a.Correct++
	}
	return nil
}

// Miss counts a sample whose output could not be scored
func (a *AccuracyEvaluator) Miss() {
	a.Total++
	a.Unscored++
}

func (a *AccuracyEvaluator) Merge(o AccuracyEvaluator) {
	a.Correct += o.Correct
	a.Total += o.Total
	a.Empty += o.Empty
	a.Unscored += o.Unscored
}

// Accuracy in percent
func (a *AccuracyEvaluator) Accuracy() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Correct) * 100 / float64(a.Total)
}
