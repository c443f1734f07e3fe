// internal/matching/scoring/risk.go
package scoring

import (
	"fmt"
	"time"

	"forgelink/internal/models"
)

// RiskConfig holds the thresholds for qualitative risk annotation.
type RiskConfig struct {
	MaxRiskFactors       int
	UtilizationThreshold float64
	RatingThreshold      float64
	OnTimeThreshold      float64
	InactiveAfter        time.Duration
}

// DefaultRiskConfig returns the standard thresholds.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxRiskFactors:       3,
		UtilizationThreshold: 90.0,
		RatingThreshold:      3.0,
		OnTimeThreshold:      80.0,
		InactiveAfter:        180 * 24 * time.Hour,
	}
}

// RiskAssessor derives qualitative risk flags from manufacturer attributes.
// It never changes scores; it only annotates match results.
type RiskAssessor struct {
	cfg RiskConfig
	now func() time.Time
}

func NewRiskAssessor(cfg RiskConfig, now func() time.Time) *RiskAssessor {
	if cfg.MaxRiskFactors <= 0 {
		cfg.MaxRiskFactors = 3
	}
	if cfg.UtilizationThreshold <= 0 {
		cfg.UtilizationThreshold = 90.0
	}
	if cfg.RatingThreshold <= 0 {
		cfg.RatingThreshold = 3.0
	}
	if cfg.OnTimeThreshold <= 0 {
		cfg.OnTimeThreshold = 80.0
	}
	if cfg.InactiveAfter <= 0 {
		cfg.InactiveAfter = 180 * 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &RiskAssessor{cfg: cfg, now: now}
}

// Assess returns risk strings in severity order, most severe first.
func (r *RiskAssessor) Assess(p *models.ManufacturerProfile) []string {
	var risks []string
	perf := p.Performance

	if perf.CompletedOrders > 0 && perf.OverallRating < r.cfg.RatingThreshold {
		risks = append(risks, fmt.Sprintf("Overall rating %.1f below %.1f", perf.OverallRating, r.cfg.RatingThreshold))
	}
	if perf.CompletedOrders > 0 && perf.OnTimeRate < r.cfg.OnTimeThreshold {
		risks = append(risks, fmt.Sprintf("On-time delivery rate %.0f%% below %.0f%%", perf.OnTimeRate, r.cfg.OnTimeThreshold))
	}
	if p.Capacity.UtilizationPct > r.cfg.UtilizationThreshold {
		risks = append(risks, fmt.Sprintf("Capacity utilization at %.0f%%", p.Capacity.UtilizationPct))
	}
	if perf.CompletedOrders == 0 {
		risks = append(risks, "New manufacturer with no completed orders")
	}
	if !p.LastActiveAt.IsZero() && r.now().Sub(p.LastActiveAt) > r.cfg.InactiveAfter {
		risks = append(risks, fmt.Sprintf("No activity since %s", p.LastActiveAt.Format("2006-01-02")))
	}

	return risks
}

// Annotate merges assessed risks into the result's existing risk factors.
// Scorer-emitted risks (including disqualifying ones) come first so they
// survive the cap; duplicates are dropped.
func (r *RiskAssessor) Annotate(res *models.MatchResult, p *models.ManufacturerProfile) {
	seen := make(map[string]bool, len(res.RiskFactors))
	merged := make([]string, 0, len(res.RiskFactors))
	for _, f := range res.RiskFactors {
		if !seen[f] {
			seen[f] = true
			merged = append(merged, f)
		}
	}
	for _, f := range r.Assess(p) {
		if !seen[f] {
			seen[f] = true
			merged = append(merged, f)
		}
	}
	if len(merged) > r.cfg.MaxRiskFactors {
		merged = merged[:r.cfg.MaxRiskFactors]
	}
	// Empty stays nil so a result survives a JSON round trip unchanged.
	if len(merged) == 0 {
		merged = nil
	}
	res.RiskFactors = merged
}
