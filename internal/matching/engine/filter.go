// internal/matching/engine/filter.go
package engine

import (
	"forgelink/internal/common/metrics"
	"forgelink/internal/models"
)

// Exclusion reasons recorded by the pre-filter. They label the
// candidates-filtered metric, so keep the set small and stable.
const (
	ReasonInactive             = "inactive"
	ReasonUnverified           = "unverified"
	ReasonOnboardingIncomplete = "onboarding_incomplete"
	ReasonQuantityBelowMOQ     = "quantity_below_moq"
	ReasonQuantityAboveMax     = "quantity_above_max"
	ReasonBudgetBelowMinValue  = "budget_below_min_value"
	ReasonBudgetAboveMaxValue  = "budget_above_max_value"
	ReasonAtCapacity           = "at_capacity"
)

// Exclusion records why a candidate was removed before scoring.
type Exclusion struct {
	ManufacturerID string `json:"manufacturerId"`
	Reason         string `json:"reason"`
}

// FilterConfig holds the pre-filter thresholds.
type FilterConfig struct {
	RequireOnboarding  bool
	CapacityCeilingPct float64
}

// Filter performs cheap eligibility elimination before scoring. It is a pure
// function over the pool: no scoring, no mutation, include or exclude only.
type Filter struct {
	cfg FilterConfig
}

func NewFilter(cfg FilterConfig) *Filter {
	if cfg.CapacityCeilingPct <= 0 {
		cfg.CapacityCeilingPct = 95.0
	}
	return &Filter{cfg: cfg}
}

// Apply returns the candidates that survive the pre-filter along with an
// exclusion record per removed candidate.
func (f *Filter) Apply(order *models.Order, pool []*models.ManufacturerProfile) ([]*models.ManufacturerProfile, []Exclusion) {
	kept := make([]*models.ManufacturerProfile, 0, len(pool))
	var excluded []Exclusion

	for _, p := range pool {
		if reason := f.exclusionReason(order, p); reason != "" {
			excluded = append(excluded, Exclusion{ManufacturerID: p.ID, Reason: reason})
			metrics.CandidatesFiltered.WithLabelValues(reason).Inc()
			continue
		}
		kept = append(kept, p)
	}
	return kept, excluded
}

// BroadcastEligible keeps only the baseline eligibility checks. The terminal
// fallback stage uses it: every active and verified manufacturer is included
// regardless of fit.
func (f *Filter) BroadcastEligible(pool []*models.ManufacturerProfile) []*models.ManufacturerProfile {
	kept := make([]*models.ManufacturerProfile, 0, len(pool))
	for _, p := range pool {
		if p.IsActive && p.IsVerified {
			kept = append(kept, p)
		}
	}
	return kept
}

func (f *Filter) exclusionReason(order *models.Order, p *models.ManufacturerProfile) string {
	if !p.IsActive {
		return ReasonInactive
	}
	if !p.IsVerified {
		return ReasonUnverified
	}
	if f.cfg.RequireOnboarding && !p.OnboardingComplete {
		return ReasonOnboardingIncomplete
	}

	if order.Quantity > 0 {
		if p.Capacity.MinOrderQty > 0 && order.Quantity < p.Capacity.MinOrderQty {
			return ReasonQuantityBelowMOQ
		}
		if p.Capacity.MaxOrderQty > 0 && order.Quantity > p.Capacity.MaxOrderQty {
			return ReasonQuantityAboveMax
		}
	}

	if order.Budget != nil {
		if p.Capacity.MinOrderValue > 0 && order.Budget.EffectiveMax() < p.Capacity.MinOrderValue {
			return ReasonBudgetBelowMinValue
		}
		if p.Capacity.MaxOrderValue > 0 && order.Budget.EffectiveMin() > p.Capacity.MaxOrderValue {
			return ReasonBudgetAboveMaxValue
		}
	}

	if p.Capacity.UtilizationPct >= f.cfg.CapacityCeilingPct {
		if !(order.Rush && p.LeadTime.RushAvailable) {
			return ReasonAtCapacity
		}
	}
	return ""
}
