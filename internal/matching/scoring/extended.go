// internal/matching/scoring/extended.go
//
// Scorers for the extended weight variant: quality, cost, availability,
// specialization and historical success. The baseline variant weighs only
// capability, geographic and performance; these dimensions activate when a
// weight configuration references them.
package scoring

import (
	"fmt"
	"time"

	"forgelink/internal/matching/fuzzy"
	"forgelink/internal/models"
)

// QualityScorer scores the quality rating dimension.
type QualityScorer struct{}

func NewQualityScorer() *QualityScorer { return &QualityScorer{} }

func (s *QualityScorer) Score(_ *models.Order, p *models.ManufacturerProfile) Result {
	quality := clamp(p.Performance.QualityRating, 0, 5)

	var res Result
	res.Score = quality / 5
	if quality >= 4.5 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Top quality rating %.1f/5", quality))
	}
	return res
}

// CostScorer scores how well the manufacturer's order-value envelope fits
// the buyer's budget.
type CostScorer struct{}

func NewCostScorer() *CostScorer { return &CostScorer{} }

func (s *CostScorer) Score(order *models.Order, p *models.ManufacturerProfile) Result {
	var res Result
	if order.Budget == nil {
		res.Score = 0.5
		return res
	}

	budgetMin := order.Budget.EffectiveMin()
	budgetMax := order.Budget.EffectiveMax()
	minValue := p.Capacity.MinOrderValue
	maxValue := p.Capacity.MaxOrderValue

	switch {
	case minValue == 0 && maxValue == 0:
		res.Score = 0.5
	case maxValue > 0 && budgetMin > maxValue:
		res.Score = 0.3
		res.RiskFactors = append(res.RiskFactors, "Budget floor exceeds manufacturer's maximum order value")
	case budgetMax >= minValue:
		res.Score = 1.0
		res.Reasons = append(res.Reasons, "Budget fits manufacturer's order value range")
	case budgetMax >= minValue*0.8:
		res.Score = 0.6
	case budgetMax >= minValue*0.5:
		res.Score = 0.4
	default:
		res.Score = 0.2
		res.RiskFactors = append(res.RiskFactors, "Budget well below manufacturer's minimum order value")
	}
	return res
}

// AvailabilityScorer scores production headroom and lead-time fit against
// the order deadline.
type AvailabilityScorer struct {
	now func() time.Time
}

func NewAvailabilityScorer(now func() time.Time) *AvailabilityScorer {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityScorer{now: now}
}

func (s *AvailabilityScorer) Score(order *models.Order, p *models.ManufacturerProfile) Result {
	var res Result

	utilization := clamp(p.Capacity.UtilizationPct, 0, 100)
	utilScore := 0.0
	switch {
	case utilization < 50:
		utilScore = 1.0
	case utilization < 70:
		utilScore = 0.8
	case utilization < 85:
		utilScore = 0.6
	case utilization < 95:
		utilScore = 0.3
	default:
		utilScore = 0.1
	}

	leadScore := 0.5
	if !order.Deadline.IsZero() {
		leadDays := p.LeadTime.StandardDays
		if order.Rush && p.LeadTime.RushAvailable && p.LeadTime.RushDays > 0 {
			leadDays = p.LeadTime.RushDays
		}
		daysUntil := int(order.Deadline.Sub(s.now()).Hours() / 24)
		switch {
		case leadDays <= daysUntil:
			leadScore = 1.0
		case leadDays <= daysUntil+order.FlexibilityDays:
			leadScore = 0.5
			res.RiskFactors = append(res.RiskFactors, "Lead time only fits within the deadline flexibility window")
		default:
			leadScore = 0.0
			res.RiskFactors = append(res.RiskFactors, "Standard lead time exceeds the order deadline")
		}
	}

	res.Score = clamp(0.6*utilScore+0.4*leadScore, 0, 1)
	if utilization < 50 && leadScore == 1.0 {
		res.Reasons = append(res.Reasons, "Ample capacity and lead time for this order")
	}
	return res
}

// SpecializationScorer rewards manufacturers focused on the order's
// industry over generalists serving many.
type SpecializationScorer struct {
	matcher   fuzzy.Matcher
	threshold float64
}

func NewSpecializationScorer(matcher fuzzy.Matcher, threshold float64) *SpecializationScorer {
	return &SpecializationScorer{matcher: matcher, threshold: threshold}
}

func (s *SpecializationScorer) Score(order *models.Order, p *models.ManufacturerProfile) Result {
	var res Result
	industries := p.Capabilities.Industries

	if order.Industry == "" || len(industries) == 0 {
		res.Score = 0.3
		return res
	}

	_, sim := fuzzy.BestMatch(s.matcher, order.Industry, industries, s.threshold)
	switch {
	case sim > 0 && len(industries) <= 3:
		res.Score = 1.0
		res.Reasons = append(res.Reasons, fmt.Sprintf("Specialized in %s", order.Industry))
	case sim > 0:
		res.Score = 0.7
	default:
		res.Score = 0.2
	}
	return res
}

// HistoricalSuccessScorer is the deterministic proxy for the
// historical-success dimension. A predictor adjunct may override it when
// one is configured and answers in time.
type HistoricalSuccessScorer struct{}

func NewHistoricalSuccessScorer() *HistoricalSuccessScorer { return &HistoricalSuccessScorer{} }

func (s *HistoricalSuccessScorer) Score(_ *models.Order, p *models.ManufacturerProfile) Result {
	onTime := clamp(p.Performance.OnTimeRate, 0, 100) / 100
	volume := float64(p.Performance.CompletedOrders) / 100
	if volume > 1 {
		volume = 1
	}
	return Result{Score: clamp(0.5*onTime+0.5*volume, 0, 1)}
}

// StatusFor derives the availability status reported on match results.
func StatusFor(p *models.ManufacturerProfile, capacityCeilingPct float64) models.AvailabilityStatus {
	utilization := clamp(p.Capacity.UtilizationPct, 0, 100)
	switch {
	case utilization >= capacityCeilingPct:
		return models.AvailabilityUnavailable
	case utilization >= 80:
		return models.AvailabilityNearCapacity
	default:
		return models.AvailabilityAvailable
	}
}
