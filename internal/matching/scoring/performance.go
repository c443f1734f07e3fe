// internal/matching/scoring/performance.go
package scoring

import (
	"fmt"

	"forgelink/internal/common/logger"
	"forgelink/internal/models"
)

const (
	// DefaultExperienceSaturation is the completed-order count at which the
	// experience component saturates at 1.0.
	DefaultExperienceSaturation = 50

	// NewManufacturerExperienceScore is the neutral experience score for
	// manufacturers with zero completed orders. They are surfaced with a
	// risk factor instead of being scored out of contention.
	NewManufacturerExperienceScore = 0.3

	ratingWeight        = 0.40
	onTimeWeight        = 0.30
	experienceWeight    = 0.20
	communicationWeight = 0.10
)

// PerformanceScorer scores historical track record. Malformed ratings are
// clamped at this boundary with a logged warning; one corrupt candidate must
// never abort ranking of the rest of the pool.
type PerformanceScorer struct {
	saturationPoint int
	logger          logger.Logger
}

func NewPerformanceScorer(saturationPoint int, log logger.Logger) *PerformanceScorer {
	if saturationPoint <= 0 {
		saturationPoint = DefaultExperienceSaturation
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PerformanceScorer{saturationPoint: saturationPoint, logger: log}
}

// Score produces the performance sub-score.
func (s *PerformanceScorer) Score(_ *models.Order, p *models.ManufacturerProfile) Result {
	perf := p.Performance

	rating := s.clampWarn(perf.OverallRating, 0, 5, "overallRating", p.ID)
	onTime := s.clampWarn(perf.OnTimeRate, 0, 100, "onTimeRate", p.ID)
	communication := s.clampWarn(perf.CommunicationRating, 0, 5, "communicationRating", p.ID)

	var res Result

	experience := 0.0
	if perf.CompletedOrders <= 0 {
		experience = NewManufacturerExperienceScore
		res.RiskFactors = append(res.RiskFactors, "New manufacturer with no completed orders")
	} else {
		experience = float64(perf.CompletedOrders) / float64(s.saturationPoint)
		if experience > 1 {
			experience = 1
		}
	}

	res.Score = clamp(
		rating/5*ratingWeight+
			onTime/100*onTimeWeight+
			experience*experienceWeight+
			communication/5*communicationWeight,
		0, 1)

	if rating >= 4.5 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Outstanding overall rating %.1f/5", rating))
	}
	if onTime >= 95 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Excellent on-time delivery rate %.0f%%", onTime))
	}
	if perf.CompletedOrders >= s.saturationPoint {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Extensive production history, %d completed orders", perf.CompletedOrders))
	}

	return res
}

func (s *PerformanceScorer) clampWarn(v, lo, hi float64, field, manufacturerID string) float64 {
	if v < lo || v > hi {
		s.logger.Warn("clamped out-of-range performance value", map[string]interface{}{
			"manufacturerId": manufacturerID,
			"field":          field,
			"value":          v,
		})
		return clamp(v, lo, hi)
	}
	return v
}
