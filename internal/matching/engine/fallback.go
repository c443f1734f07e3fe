// internal/matching/engine/fallback.go
package engine

import "forgelink/internal/models"

const (
	// DefaultThresholdStep is subtracted from the capability similarity
	// threshold when entering RELAXED_CAPABILITY.
	DefaultThresholdStep = 0.15
	// DefaultRadiusFactor multiplies the order's preferred radius when
	// entering EXPANDED_GEOGRAPHY.
	DefaultRadiusFactor = 2.0
)

// StagePlan is one state of the fallback machine: the constraints to score
// under and whether the pre-filter applies.
type StagePlan struct {
	Stage               models.FallbackStage
	CapabilityThreshold float64
	RadiusFactor        float64
	SkipFilter          bool
}

// Terminal reports whether this is the last state; the machine never fails
// past it.
func (p StagePlan) Terminal() bool {
	return p.Stage == models.StageBroadcastAll
}

// Strategist plans the constraint-relaxation sequence
// DIRECT_MATCH -> RELAXED_CAPABILITY -> EXPANDED_GEOGRAPHY -> BROADCAST_ALL.
// Relaxations accumulate: each state keeps the previous relaxations and adds
// exactly one more.
type Strategist struct {
	baseThreshold float64
	thresholdStep float64
	radiusFactor  float64
}

func NewStrategist(baseThreshold, thresholdStep, radiusFactor float64) *Strategist {
	if thresholdStep <= 0 {
		thresholdStep = DefaultThresholdStep
	}
	if radiusFactor <= 1 {
		radiusFactor = DefaultRadiusFactor
	}
	return &Strategist{
		baseThreshold: baseThreshold,
		thresholdStep: thresholdStep,
		radiusFactor:  radiusFactor,
	}
}

// Plan returns the full stage sequence starting at DIRECT_MATCH.
func (s *Strategist) Plan() []StagePlan {
	relaxed := s.baseThreshold - s.thresholdStep
	if relaxed < 0 {
		relaxed = 0
	}
	return []StagePlan{
		{
			Stage:               models.StageDirectMatch,
			CapabilityThreshold: s.baseThreshold,
			RadiusFactor:        1.0,
		},
		{
			Stage:               models.StageRelaxedCapability,
			CapabilityThreshold: relaxed,
			RadiusFactor:        1.0,
		},
		{
			Stage:               models.StageExpandedGeography,
			CapabilityThreshold: relaxed,
			RadiusFactor:        s.radiusFactor,
		},
		{
			Stage:               models.StageBroadcastAll,
			CapabilityThreshold: relaxed,
			RadiusFactor:        s.radiusFactor,
			SkipFilter:          true,
		},
	}
}
