// internal/matching/scoring/weights.go
package scoring

import (
	"fmt"
	"math"
	"sort"

	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/models"
)

// WeightEpsilon is the tolerance when checking that weights sum to 1.0.
const WeightEpsilon = 1e-6

// Weights maps scoring dimensions to their share of the total score.
// The map is open so that new dimension sets can be configured without
// code changes; Validate enforces the invariants.
type Weights map[models.Dimension]float64

// DefaultWeights is the baseline three-dimension configuration.
func DefaultWeights() Weights {
	return Weights{
		models.DimensionCapability:  0.80,
		models.DimensionGeographic:  0.15,
		models.DimensionPerformance: 0.05,
	}
}

// ExtendedWeights is the richer eight-dimension configuration.
func ExtendedWeights() Weights {
	return Weights{
		models.DimensionCapability:        0.25,
		models.DimensionPerformance:       0.20,
		models.DimensionGeographic:        0.15,
		models.DimensionQuality:           0.15,
		models.DimensionCost:              0.10,
		models.DimensionAvailability:      0.08,
		models.DimensionSpecialization:    0.05,
		models.DimensionHistoricalSuccess: 0.02,
	}
}

// FromConfig converts a string-keyed weight map (as loaded from
// configuration) into Weights. Keys are dimension names.
func FromConfig(raw map[string]float64) Weights {
	if len(raw) == 0 {
		return DefaultWeights()
	}
	w := make(Weights, len(raw))
	for k, v := range raw {
		w[models.Dimension(k)] = v
	}
	return w
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Dimensions returns the weighted dimensions in deterministic order.
func (w Weights) Dimensions() []models.Dimension {
	dims := make([]models.Dimension, 0, len(w))
	for d := range w {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}

// Validate checks that weights are non-negative and sum to 1.0 within
// tolerance. Returns an INVALID_WEIGHTS error otherwise.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return apperrors.NewInvalidWeightsError("no weights configured")
	}
	for dim, v := range w {
		if v < 0 {
			return apperrors.NewInvalidWeightsError(fmt.Sprintf("negative weight %.4f for dimension %q", v, dim))
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightEpsilon {
		return apperrors.NewInvalidWeightsError(fmt.Sprintf("weights sum to %.6f, must sum to 1.0", sum))
	}
	return nil
}
