package scoring

import (
	"testing"

	"forgelink/internal/matching/fuzzy"
	"forgelink/internal/models"

	"github.com/stretchr/testify/assert"
)

func newCapabilityScorer() *CapabilityScorer {
	return NewCapabilityScorer(fuzzy.NewTokenMatcher(), fuzzy.DefaultThreshold)
}

func profileWithCapabilities(caps models.Capabilities) *models.ManufacturerProfile {
	return &models.ManufacturerProfile{
		ID:           "mfr-1",
		Capabilities: caps,
	}
}

func TestCapabilityScorer_ExactProcessMatch(t *testing.T) {
	s := newCapabilityScorer()
	order := &models.Order{
		ID:        "order-1",
		Processes: []string{"CNC Machining"},
	}
	p := profileWithCapabilities(models.Capabilities{
		Processes: []string{"CNC machining"},
	})

	res := s.Score(order, p)

	// Only the process sub-component is present, so its full weight applies.
	assert.Equal(t, 1.0, res.Score)
	assert.Contains(t, res.Reasons, "Excellent process match")
	assert.Empty(t, res.RiskFactors)
}

func TestCapabilityScorer_TerminologyVariant(t *testing.T) {
	s := newCapabilityScorer()
	order := &models.Order{Processes: []string{"CNC Machining"}}
	p := profileWithCapabilities(models.Capabilities{
		Processes: []string{"CNC milling / machining"},
	})

	res := s.Score(order, p)
	assert.Equal(t, 1.0, res.Score)
}

func TestCapabilityScorer_PartialMatch(t *testing.T) {
	s := newCapabilityScorer()
	order := &models.Order{
		Processes: []string{"CNC Machining", "Injection Molding"},
	}
	p := profileWithCapabilities(models.Capabilities{
		Processes: []string{"CNC machining"},
	})

	res := s.Score(order, p)
	assert.InDelta(t, 0.5, res.Score, 1e-9)
}

func TestCapabilityScorer_WeightRedistribution(t *testing.T) {
	s := newCapabilityScorer()

	// Processes and materials both fully matched; the absent industry,
	// certification and special-requirement components must not drag the
	// score down or silently count as matched.
	order := &models.Order{
		Processes: []string{"CNC Machining"},
		Materials: []string{"Aluminum"},
	}
	p := profileWithCapabilities(models.Capabilities{
		Processes: []string{"CNC Machining"},
		Materials: []string{"Aluminum"},
	})

	res := s.Score(order, p)
	assert.Equal(t, 1.0, res.Score)
}

func TestCapabilityScorer_RedistributionProportions(t *testing.T) {
	s := newCapabilityScorer()

	// Process matched, material not: score = 0.30/(0.30+0.25).
	order := &models.Order{
		Processes: []string{"CNC Machining"},
		Materials: []string{"Titanium"},
	}
	p := profileWithCapabilities(models.Capabilities{
		Processes: []string{"CNC Machining"},
		Materials: []string{"ABS Plastic"},
	})

	res := s.Score(order, p)
	assert.InDelta(t, 0.30/0.55, res.Score, 1e-9)
	assert.Contains(t, res.RiskFactors, "Weak material match")
}

func TestCapabilityScorer_NoRequirements(t *testing.T) {
	s := newCapabilityScorer()
	order := &models.Order{ID: "order-empty"}
	p := profileWithCapabilities(models.Capabilities{Processes: []string{"CNC Machining"}})

	res := s.Score(order, p)
	assert.Equal(t, 0.5, res.Score)
	assert.Contains(t, res.Reasons, "Order specifies no capability requirements")
}

func TestCapabilityScorer_IndustryAndCertifications(t *testing.T) {
	s := newCapabilityScorer()
	order := &models.Order{
		Processes:      []string{"Sheet Metal Stamping"},
		Industry:       "Automotive",
		Certifications: []string{"ISO 9001", "IATF 16949"},
	}
	p := profileWithCapabilities(models.Capabilities{
		Processes:      []string{"Sheet metal stamping"},
		Industries:     []string{"Automotive", "Aerospace"},
		Certifications: []string{"ISO-9001"},
	})

	res := s.Score(order, p)

	// process 1.0 * .30 + industry 1.0 * .20 + certs 0.5 * .15, over .65
	expected := (0.30 + 0.20 + 0.5*0.15) / 0.65
	assert.InDelta(t, expected, res.Score, 1e-9)
	assert.Contains(t, res.Reasons, "Excellent process match")
	assert.Contains(t, res.Reasons, "Excellent industry experience match")
}

func TestCapabilityScorer_WithThreshold(t *testing.T) {
	s := newCapabilityScorer()
	relaxed := s.WithThreshold(0.40)

	assert.Equal(t, fuzzy.DefaultThreshold, s.Threshold())
	assert.Equal(t, 0.40, relaxed.Threshold())

	// A borderline pairing that misses the default threshold can clear the
	// relaxed one.
	order := &models.Order{Processes: []string{"3D Printing"}}
	p := profileWithCapabilities(models.Capabilities{
		Processes: []string{"FDM additive printing"},
	})

	strict := s.Score(order, p)
	loose := relaxed.Score(order, p)
	assert.GreaterOrEqual(t, loose.Score, strict.Score)
}

func TestCapabilityScorer_ScoreBounds(t *testing.T) {
	s := newCapabilityScorer()
	order := &models.Order{
		Processes:           []string{"CNC Machining", "Anodizing"},
		Materials:           []string{"Aluminum 6061"},
		Certifications:      []string{"ISO 9001"},
		SpecialRequirements: []string{"Mirror polish finish"},
		Industry:            "Aerospace",
	}
	p := profileWithCapabilities(models.Capabilities{
		Processes:      []string{"CNC machining", "anodising"},
		Materials:      []string{"aluminum"},
		Certifications: []string{"AS9100"},
		Industries:     []string{"Aerospace"},
	})

	res := s.Score(order, p)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 1.0)
}
