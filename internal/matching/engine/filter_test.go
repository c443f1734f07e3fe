package engine

import (
	"testing"

	"forgelink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eligibleProfile(id string) *models.ManufacturerProfile {
	return &models.ManufacturerProfile{
		ID:                 id,
		IsActive:           true,
		IsVerified:         true,
		OnboardingComplete: true,
		Capacity:           models.Capacity{UtilizationPct: 40},
	}
}

func TestFilter_EligibilityFlags(t *testing.T) {
	f := NewFilter(FilterConfig{RequireOnboarding: true})
	order := &models.Order{ID: "o-1", Quantity: 100}

	inactive := eligibleProfile("m-inactive")
	inactive.IsActive = false
	unverified := eligibleProfile("m-unverified")
	unverified.IsVerified = false
	notOnboarded := eligibleProfile("m-not-onboarded")
	notOnboarded.OnboardingComplete = false

	kept, excluded := f.Apply(order, []*models.ManufacturerProfile{
		eligibleProfile("m-ok"), inactive, unverified, notOnboarded,
	})

	require.Len(t, kept, 1)
	assert.Equal(t, "m-ok", kept[0].ID)

	reasons := make(map[string]string, len(excluded))
	for _, ex := range excluded {
		reasons[ex.ManufacturerID] = ex.Reason
	}
	assert.Equal(t, ReasonInactive, reasons["m-inactive"])
	assert.Equal(t, ReasonUnverified, reasons["m-unverified"])
	assert.Equal(t, ReasonOnboardingIncomplete, reasons["m-not-onboarded"])
}

func TestFilter_OnboardingOptional(t *testing.T) {
	f := NewFilter(FilterConfig{RequireOnboarding: false})
	p := eligibleProfile("m-1")
	p.OnboardingComplete = false

	kept, excluded := f.Apply(&models.Order{}, []*models.ManufacturerProfile{p})
	assert.Len(t, kept, 1)
	assert.Empty(t, excluded)
}

func TestFilter_QuantityBounds(t *testing.T) {
	f := NewFilter(FilterConfig{})

	p := eligibleProfile("m-1")
	p.Capacity.MinOrderQty = 500
	p.Capacity.MaxOrderQty = 10000

	tests := []struct {
		name     string
		quantity int
		reason   string
	}{
		{"below minimum", 100, ReasonQuantityBelowMOQ},
		{"at minimum", 500, ""},
		{"inside range", 5000, ""},
		{"above maximum", 20000, ReasonQuantityAboveMax},
		{"unspecified quantity passes", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, excluded := f.Apply(&models.Order{Quantity: tt.quantity}, []*models.ManufacturerProfile{p})
			if tt.reason == "" {
				assert.Len(t, kept, 1)
			} else {
				require.Len(t, excluded, 1)
				assert.Equal(t, tt.reason, excluded[0].Reason)
			}
		})
	}
}

func TestFilter_BudgetBelowMinValue(t *testing.T) {
	f := NewFilter(FilterConfig{})
	p := eligibleProfile("m-1")
	p.Capacity.MinOrderValue = 10000

	order := &models.Order{Budget: &models.Budget{Max: 500, Currency: "USD"}}
	_, excluded := f.Apply(order, []*models.ManufacturerProfile{p})

	require.Len(t, excluded, 1)
	assert.Equal(t, ReasonBudgetBelowMinValue, excluded[0].Reason)
}

func TestFilter_BudgetFloorAboveMaxValue(t *testing.T) {
	f := NewFilter(FilterConfig{})
	p := eligibleProfile("m-1")
	p.Capacity.MinOrderValue = 1000
	p.Capacity.MaxOrderValue = 50000

	order := &models.Order{Budget: &models.Budget{Min: 60000, Max: 80000, Currency: "USD"}}
	_, excluded := f.Apply(order, []*models.ManufacturerProfile{p})

	require.Len(t, excluded, 1)
	assert.Equal(t, ReasonBudgetAboveMaxValue, excluded[0].Reason)
}

func TestFilter_BudgetInsideValueRange(t *testing.T) {
	f := NewFilter(FilterConfig{})
	p := eligibleProfile("m-1")
	p.Capacity.MinOrderValue = 1000
	p.Capacity.MaxOrderValue = 50000

	order := &models.Order{Budget: &models.Budget{Min: 2000, Max: 40000, Currency: "USD"}}
	kept, excluded := f.Apply(order, []*models.ManufacturerProfile{p})

	assert.Len(t, kept, 1)
	assert.Empty(t, excluded)
}

func TestFilter_CapacityCeiling(t *testing.T) {
	f := NewFilter(FilterConfig{CapacityCeilingPct: 95})

	saturated := eligibleProfile("m-busy")
	saturated.Capacity.UtilizationPct = 97

	_, excluded := f.Apply(&models.Order{}, []*models.ManufacturerProfile{saturated})
	require.Len(t, excluded, 1)
	assert.Equal(t, ReasonAtCapacity, excluded[0].Reason)
}

func TestFilter_RushBypassesCapacityCeiling(t *testing.T) {
	f := NewFilter(FilterConfig{CapacityCeilingPct: 95})

	saturated := eligibleProfile("m-busy")
	saturated.Capacity.UtilizationPct = 97
	saturated.LeadTime.RushAvailable = true

	kept, excluded := f.Apply(&models.Order{Rush: true}, []*models.ManufacturerProfile{saturated})
	assert.Len(t, kept, 1)
	assert.Empty(t, excluded)
}

func TestFilter_BroadcastEligible(t *testing.T) {
	f := NewFilter(FilterConfig{RequireOnboarding: true})

	notOnboarded := eligibleProfile("m-not-onboarded")
	notOnboarded.OnboardingComplete = false
	saturated := eligibleProfile("m-busy")
	saturated.Capacity.UtilizationPct = 99
	inactive := eligibleProfile("m-inactive")
	inactive.IsActive = false

	// Broadcast keeps everything active and verified, ignoring capacity and
	// onboarding.
	kept := f.BroadcastEligible([]*models.ManufacturerProfile{notOnboarded, saturated, inactive})
	require.Len(t, kept, 2)
	assert.Equal(t, "m-not-onboarded", kept[0].ID)
	assert.Equal(t, "m-busy", kept[1].ID)
}
