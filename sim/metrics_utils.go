// sim/metrics_utils.go
package sim

import (
	"math"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculateMean is a util function that calculates the mean of a data list.
// Returns 0 for an empty list.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}

	return sum / float64(len(numbers))
}

// RoundTo2 rounds v to two decimal places, half away from zero.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Slowdown returns turnaround / burst for a finished process, 0 when the
// burst is not positive.
func (pr ProcessResult) Slowdown() float64 {
	if pr.BurstTime <= 0 {
		return 0
	}
	return pr.TurnaroundTime / pr.BurstTime
}

// MaxSlowdown returns the process with the largest slowdown. Ties keep the
// first encountered. ok is false for an empty slice.
func MaxSlowdown(results []ProcessResult) (worst ProcessResult, ok bool) {
	for i, pr := range results {
		if i == 0 || pr.Slowdown() > worst.Slowdown() {
			worst = pr
			ok = true
		}
	}
	return worst, ok
}
