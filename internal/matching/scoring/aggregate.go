// internal/matching/scoring/aggregate.go
package scoring

import "forgelink/internal/models"

// Aggregator combines per-dimension sub-scores into a weighted total.
// Weights are validated once at construction, not per call; given sub-scores
// in [0,1] and weights summing to 1.0 the total is in [0,1] by construction.
type Aggregator struct {
	weights Weights
}

func NewAggregator(w Weights) (*Aggregator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{weights: w}, nil
}

// Weights returns the validated weight configuration.
func (a *Aggregator) Weights() Weights {
	return a.weights
}

// Aggregate computes the weighted sum over the configured dimensions.
// Dimensions missing from subScores contribute zero.
func (a *Aggregator) Aggregate(subScores map[models.Dimension]float64) float64 {
	total := 0.0
	for dim, weight := range a.weights {
		total += weight * subScores[dim]
	}
	return total
}
