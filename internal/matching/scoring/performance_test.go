package scoring

import (
	"testing"

	"forgelink/internal/models"

	"github.com/stretchr/testify/assert"
)

func perfProfile(perf models.Performance) *models.ManufacturerProfile {
	return &models.ManufacturerProfile{ID: "mfr-perf", Performance: perf}
}

func TestPerformanceScorer_WeightedComposite(t *testing.T) {
	s := NewPerformanceScorer(DefaultExperienceSaturation, nil)

	tests := []struct {
		name string
		perf models.Performance
		want float64
	}{
		{
			name: "perfect record",
			perf: models.Performance{
				OverallRating:       5.0,
				OnTimeRate:          100,
				CompletedOrders:     200,
				CommunicationRating: 5.0,
			},
			want: 1.0,
		},
		{
			name: "mid record",
			perf: models.Performance{
				OverallRating:       4.0,
				OnTimeRate:          90,
				CompletedOrders:     25,
				CommunicationRating: 4.0,
			},
			// 0.8*.40 + 0.9*.30 + 0.5*.20 + 0.8*.10
			want: 0.77,
		},
		{
			name: "experience saturates at the saturation point",
			perf: models.Performance{
				OverallRating:       4.0,
				OnTimeRate:          90,
				CompletedOrders:     5000,
				CommunicationRating: 4.0,
			},
			want: 0.87,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Score(&models.Order{}, perfProfile(tt.perf))
			assert.InDelta(t, tt.want, res.Score, 1e-9)
		})
	}
}

func TestPerformanceScorer_RatingMonotonicity(t *testing.T) {
	s := NewPerformanceScorer(DefaultExperienceSaturation, nil)
	base := models.Performance{OnTimeRate: 90, CompletedOrders: 30, CommunicationRating: 4.0}

	prev := -1.0
	for _, rating := range []float64{1.0, 2.5, 3.5, 4.5, 5.0} {
		perf := base
		perf.OverallRating = rating
		res := s.Score(&models.Order{}, perfProfile(perf))
		assert.Greater(t, res.Score, prev, "rating %.1f", rating)
		prev = res.Score
	}
}

func TestPerformanceScorer_NewManufacturer(t *testing.T) {
	s := NewPerformanceScorer(DefaultExperienceSaturation, nil)
	res := s.Score(&models.Order{}, perfProfile(models.Performance{
		OverallRating:       4.0,
		OnTimeRate:          90,
		CompletedOrders:     0,
		CommunicationRating: 4.0,
	}))

	// Experience contributes the neutral score, not zero.
	want := 0.8*ratingWeight + 0.9*onTimeWeight + NewManufacturerExperienceScore*experienceWeight + 0.8*communicationWeight
	assert.InDelta(t, want, res.Score, 1e-9)
	assert.Contains(t, res.RiskFactors, "New manufacturer with no completed orders")
}

func TestPerformanceScorer_ClampsMalformedRatings(t *testing.T) {
	s := NewPerformanceScorer(DefaultExperienceSaturation, nil)
	res := s.Score(&models.Order{}, perfProfile(models.Performance{
		OverallRating:       7.2,
		OnTimeRate:          130,
		CompletedOrders:     50,
		CommunicationRating: -1.0,
	}))

	assert.InDelta(t, 1.0*ratingWeight+1.0*onTimeWeight+1.0*experienceWeight, res.Score, 1e-9)
	assert.LessOrEqual(t, res.Score, 1.0)
}

func TestPerformanceScorer_Reasons(t *testing.T) {
	s := NewPerformanceScorer(DefaultExperienceSaturation, nil)
	res := s.Score(&models.Order{}, perfProfile(models.Performance{
		OverallRating:       4.8,
		OnTimeRate:          97,
		CompletedOrders:     120,
		CommunicationRating: 4.5,
	}))

	assert.Contains(t, res.Reasons, "Outstanding overall rating 4.8/5")
	assert.Contains(t, res.Reasons, "Excellent on-time delivery rate 97%")
	assert.Contains(t, res.Reasons, "Extensive production history, 120 completed orders")
}

func TestPerformanceScorer_DefaultsSaturationPoint(t *testing.T) {
	s := NewPerformanceScorer(0, nil)
	res := s.Score(&models.Order{}, perfProfile(models.Performance{
		CompletedOrders: DefaultExperienceSaturation,
	}))
	assert.InDelta(t, 1.0*experienceWeight, res.Score, 1e-9)
}
