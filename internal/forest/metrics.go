package forest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics are the three evaluation numbers every training run reports.
type Metrics struct {
	R2       float64 // goodness of fit, at most 1
	MAE      float64 // mean absolute error
	Within10 float64 // percentage of predictions within 10% of actual, in [0, 100]
}

// Evaluate computes the evaluation metrics for predictions against actuals.
func Evaluate(predicted, actual []float64) (Metrics, error) {
	if len(predicted) != len(actual) || len(predicted) == 0 {
		return Metrics{}, fmt.Errorf("predicted and actual must be equal-length non-empty slices, got %d and %d", len(predicted), len(actual))
	}

	return Metrics{
		R2:       stat.RSquaredFrom(predicted, actual, nil),
		MAE:      meanAbsoluteError(predicted, actual),
		Within10: WithinPct(predicted, actual, 0.10),
	}, nil
}

func meanAbsoluteError(predicted, actual []float64) float64 {
	sum := 0.0
	for i := range predicted {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(len(predicted))
}

// WithinPct returns the percentage of predictions whose absolute error is
// within pct of the actual value. An actual value of zero only matches an
// exact prediction.
func WithinPct(predicted, actual []float64, pct float64) float64 {
	hits := 0
	for i := range predicted {
		if math.Abs(predicted[i]-actual[i]) <= pct*math.Abs(actual[i]) {
			hits++
		}
	}
	return 100 * float64(hits) / float64(len(predicted))
}
