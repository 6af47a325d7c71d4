package utils

// ComputeAccuracy returns the percentage of predictions c equal to labels y
func ComputeAccuracy(c []int, y []int) float64 {
	if len(y) == 0 {
		return 0
	}
	accuracy := 0.
	for i := range y {
		if i < len(c) && c[i] == y[i] {
			accuracy++
		}
	}
	accuracy = 100 * accuracy / float64(len(y))
	return accuracy
}
