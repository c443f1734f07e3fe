package scoring

import (
	"testing"
	"time"

	"forgelink/internal/matching/fuzzy"
	"forgelink/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestQualityScorer(t *testing.T) {
	s := NewQualityScorer()

	tests := []struct {
		name   string
		rating float64
		want   float64
	}{
		{"top rating", 5.0, 1.0},
		{"average rating", 3.0, 0.6},
		{"unrated", 0.0, 0.0},
		{"out of range clamped", 6.5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.ManufacturerProfile{Performance: models.Performance{QualityRating: tt.rating}}
			res := s.Score(&models.Order{}, p)
			assert.InDelta(t, tt.want, res.Score, 1e-9)
		})
	}
}

func TestCostScorer(t *testing.T) {
	s := NewCostScorer()
	budget := func(min, max float64) *models.Budget {
		return &models.Budget{Min: min, Max: max, Currency: "USD"}
	}

	tests := []struct {
		name     string
		order    *models.Order
		capacity models.Capacity
		want     float64
		risky    bool
	}{
		{
			name:     "no budget is neutral",
			order:    &models.Order{},
			capacity: models.Capacity{MinOrderValue: 5000},
			want:     0.5,
		},
		{
			name:     "no declared envelope is neutral",
			order:    &models.Order{Budget: budget(1000, 2000)},
			capacity: models.Capacity{},
			want:     0.5,
		},
		{
			name:     "budget inside envelope",
			order:    &models.Order{Budget: budget(5000, 10000)},
			capacity: models.Capacity{MinOrderValue: 2000, MaxOrderValue: 50000},
			want:     1.0,
		},
		{
			name:     "open-ended envelope above minimum",
			order:    &models.Order{Budget: budget(5000, 10000)},
			capacity: models.Capacity{MinOrderValue: 2000},
			want:     1.0,
		},
		{
			name:     "budget floor above envelope maximum",
			order:    &models.Order{Budget: budget(60000, 80000)},
			capacity: models.Capacity{MinOrderValue: 2000, MaxOrderValue: 50000},
			want:     0.3,
			risky:    true,
		},
		{
			name:     "budget overlaps top of envelope",
			order:    &models.Order{Budget: budget(40000, 80000)},
			capacity: models.Capacity{MinOrderValue: 2000, MaxOrderValue: 50000},
			want:     1.0,
		},
		{
			name:     "slightly under minimum",
			order:    &models.Order{Budget: budget(0, 1700)},
			capacity: models.Capacity{MinOrderValue: 2000},
			want:     0.6,
		},
		{
			name:     "half the minimum",
			order:    &models.Order{Budget: budget(0, 1100)},
			capacity: models.Capacity{MinOrderValue: 2000},
			want:     0.4,
		},
		{
			name:     "far below minimum",
			order:    &models.Order{Budget: budget(0, 500)},
			capacity: models.Capacity{MinOrderValue: 2000},
			want:     0.2,
			risky:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.ManufacturerProfile{Capacity: tt.capacity}
			res := s.Score(tt.order, p)
			assert.InDelta(t, tt.want, res.Score, 1e-9)
			if tt.risky {
				assert.NotEmpty(t, res.RiskFactors)
			} else {
				assert.Empty(t, res.RiskFactors)
			}
		})
	}
}

func TestCostScorer_FixedPrice(t *testing.T) {
	s := NewCostScorer()
	fixed := 8000.0
	order := &models.Order{Budget: &models.Budget{FixedPrice: &fixed, Currency: "USD"}}
	p := &models.ManufacturerProfile{Capacity: models.Capacity{MinOrderValue: 2000, MaxOrderValue: 50000}}

	res := s.Score(order, p)
	assert.Equal(t, 1.0, res.Score)
}

func TestAvailabilityScorer(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s := NewAvailabilityScorer(func() time.Time { return now })

	tests := []struct {
		name     string
		order    *models.Order
		capacity models.Capacity
		lead     models.LeadTime
		want     float64
	}{
		{
			name:     "idle shop comfortable deadline",
			order:    &models.Order{Deadline: now.AddDate(0, 0, 30)},
			capacity: models.Capacity{UtilizationPct: 20},
			lead:     models.LeadTime{StandardDays: 14},
			want:     0.6*1.0 + 0.4*1.0,
		},
		{
			name:     "no deadline scores lead time neutral",
			order:    &models.Order{},
			capacity: models.Capacity{UtilizationPct: 60},
			lead:     models.LeadTime{StandardDays: 14},
			want:     0.6*0.8 + 0.4*0.5,
		},
		{
			name:     "lead time fits only with flexibility",
			order:    &models.Order{Deadline: now.AddDate(0, 0, 10), FlexibilityDays: 7},
			capacity: models.Capacity{UtilizationPct: 20},
			lead:     models.LeadTime{StandardDays: 14},
			want:     0.6*1.0 + 0.4*0.5,
		},
		{
			name:     "lead time exceeds deadline",
			order:    &models.Order{Deadline: now.AddDate(0, 0, 5)},
			capacity: models.Capacity{UtilizationPct: 90},
			lead:     models.LeadTime{StandardDays: 30},
			want:     0.6 * 0.3,
		},
		{
			name:     "rush order uses rush lead time",
			order:    &models.Order{Deadline: now.AddDate(0, 0, 6), Rush: true},
			capacity: models.Capacity{UtilizationPct: 20},
			lead:     models.LeadTime{StandardDays: 21, RushAvailable: true, RushDays: 5},
			want:     0.6*1.0 + 0.4*1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.ManufacturerProfile{Capacity: tt.capacity, LeadTime: tt.lead}
			res := s.Score(tt.order, p)
			assert.InDelta(t, tt.want, res.Score, 1e-9)
		})
	}
}

func TestSpecializationScorer(t *testing.T) {
	s := NewSpecializationScorer(fuzzy.NewTokenMatcher(), fuzzy.DefaultThreshold)

	tests := []struct {
		name       string
		industry   string
		industries []string
		want       float64
	}{
		{"focused specialist", "Automotive", []string{"Automotive", "Aerospace"}, 1.0},
		{"generalist with match", "Automotive", []string{"Automotive", "Aerospace", "Medical", "Consumer Goods"}, 0.7},
		{"no industry match", "Automotive", []string{"Medical", "Consumer Goods"}, 0.2},
		{"order without industry", "", []string{"Automotive"}, 0.3},
		{"manufacturer without industries", "Automotive", nil, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &models.Order{Industry: tt.industry}
			p := &models.ManufacturerProfile{Capabilities: models.Capabilities{Industries: tt.industries}}
			res := s.Score(order, p)
			assert.InDelta(t, tt.want, res.Score, 1e-9)
		})
	}
}

func TestHistoricalSuccessScorer(t *testing.T) {
	s := NewHistoricalSuccessScorer()

	tests := []struct {
		name string
		perf models.Performance
		want float64
	}{
		{"strong history", models.Performance{OnTimeRate: 96, CompletedOrders: 200}, 0.5*0.96 + 0.5},
		{"moderate history", models.Performance{OnTimeRate: 80, CompletedOrders: 40}, 0.5*0.8 + 0.5*0.4},
		{"no history", models.Performance{}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.ManufacturerProfile{Performance: tt.perf}
			res := s.Score(&models.Order{}, p)
			assert.InDelta(t, tt.want, res.Score, 1e-9)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		utilization float64
		want        models.AvailabilityStatus
	}{
		{20, models.AvailabilityAvailable},
		{79.9, models.AvailabilityAvailable},
		{80, models.AvailabilityNearCapacity},
		{94.9, models.AvailabilityNearCapacity},
		{95, models.AvailabilityUnavailable},
		{100, models.AvailabilityUnavailable},
	}
	for _, tt := range tests {
		p := &models.ManufacturerProfile{Capacity: models.Capacity{UtilizationPct: tt.utilization}}
		assert.Equal(t, tt.want, StatusFor(p, 95), "utilization %.1f", tt.utilization)
	}
}
