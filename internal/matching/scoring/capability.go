// internal/matching/scoring/capability.go
package scoring

import (
	"fmt"

	"forgelink/internal/matching/fuzzy"
	"forgelink/internal/models"
)

// Sub-component weights; they sum to 1.0. When an order specifies no items
// for a sub-component, its weight is redistributed proportionally among the
// remaining sub-components rather than scored as 0 or 1.
const (
	processWeight       = 0.30
	materialWeight      = 0.25
	industryWeight      = 0.20
	certificationWeight = 0.15
	specialReqWeight    = 0.10

	excellentComponentScore = 0.8
	weakComponentScore      = 0.3
)

// CapabilityScorer scores how well a manufacturer's declared capabilities
// satisfy an order's technical requirements.
type CapabilityScorer struct {
	matcher   fuzzy.Matcher
	threshold float64
}

func NewCapabilityScorer(matcher fuzzy.Matcher, threshold float64) *CapabilityScorer {
	return &CapabilityScorer{matcher: matcher, threshold: threshold}
}

// WithThreshold returns a copy scoring against a different similarity
// threshold. Used by the fallback strategist to relax capability matching.
func (s *CapabilityScorer) WithThreshold(threshold float64) *CapabilityScorer {
	return &CapabilityScorer{matcher: s.matcher, threshold: threshold}
}

// Threshold returns the similarity floor this scorer matches against.
func (s *CapabilityScorer) Threshold() float64 {
	return s.threshold
}

type capabilityComponent struct {
	name      string
	weight    float64
	requested []string
	available []string
}

// Score produces the capability sub-score with reasons and risk factors per
// sub-component.
func (s *CapabilityScorer) Score(order *models.Order, p *models.ManufacturerProfile) Result {
	var industryRequested []string
	if order.Industry != "" {
		industryRequested = []string{order.Industry}
	}

	components := []capabilityComponent{
		{"process", processWeight, order.Processes, p.Capabilities.Processes},
		{"material", materialWeight, order.Materials, p.Capabilities.Materials},
		{"industry experience", industryWeight, industryRequested, p.Capabilities.Industries},
		{"certification", certificationWeight, order.Certifications, p.Capabilities.Certifications},
		{"special requirement", specialReqWeight, order.SpecialRequirements, p.Capabilities.All()},
	}

	var res Result
	totalWeight := 0.0
	for _, c := range components {
		if len(c.requested) > 0 {
			totalWeight += c.weight
		}
	}
	if totalWeight == 0 {
		res.Score = 0.5
		res.Reasons = append(res.Reasons, "Order specifies no capability requirements")
		return res
	}

	score := 0.0
	for _, c := range components {
		if len(c.requested) == 0 {
			continue
		}
		frac := s.matchFraction(c.requested, c.available)
		score += (c.weight / totalWeight) * frac

		if frac > excellentComponentScore {
			res.Reasons = append(res.Reasons, fmt.Sprintf("Excellent %s match", c.name))
		} else if frac < weakComponentScore {
			res.RiskFactors = append(res.RiskFactors, fmt.Sprintf("Weak %s match", c.name))
		}
	}

	res.Score = clamp(score, 0, 1)
	return res
}

// matchFraction returns the fraction of requested items that fuzzy-match an
// available capability at or above the threshold.
func (s *CapabilityScorer) matchFraction(requested, available []string) float64 {
	matched := 0
	for _, req := range requested {
		if _, sim := fuzzy.BestMatch(s.matcher, req, available, s.threshold); sim > 0 {
			matched++
		}
	}
	return float64(matched) / float64(len(requested))
}
