package scoring

import (
	"testing"

	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"default three-dimension", DefaultWeights(), false},
		{"extended eight-dimension", ExtendedWeights(), false},
		{
			"sum below one",
			Weights{
				models.DimensionCapability:  0.70,
				models.DimensionGeographic:  0.15,
				models.DimensionPerformance: 0.05,
			},
			true,
		},
		{
			"negative weight",
			Weights{
				models.DimensionCapability:  1.20,
				models.DimensionGeographic:  -0.20,
			},
			true,
		},
		{"empty", Weights{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidWeights))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeights_SumWithinEpsilon(t *testing.T) {
	w := Weights{
		models.DimensionCapability:  0.3333333,
		models.DimensionGeographic:  0.3333333,
		models.DimensionPerformance: 0.3333334,
	}
	assert.NoError(t, w.Validate())
}

func TestWeights_FromConfig(t *testing.T) {
	w := FromConfig(map[string]float64{
		"capability":  0.5,
		"geographic":  0.3,
		"performance": 0.2,
	})
	require.NoError(t, w.Validate())
	assert.Equal(t, 0.5, w[models.DimensionCapability])

	assert.Equal(t, DefaultWeights(), FromConfig(nil))
}

func TestWeights_DimensionsDeterministic(t *testing.T) {
	w := ExtendedWeights()
	first := w.Dimensions()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, w.Dimensions())
	}
}

func TestAggregator_InvalidWeights(t *testing.T) {
	_, err := NewAggregator(Weights{models.DimensionCapability: 0.9})
	assert.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidWeights))
}

func TestAggregator_Aggregate(t *testing.T) {
	agg, err := NewAggregator(DefaultWeights())
	require.NoError(t, err)

	tests := []struct {
		name      string
		subScores map[models.Dimension]float64
		expected  float64
	}{
		{
			"all perfect",
			map[models.Dimension]float64{
				models.DimensionCapability:  1.0,
				models.DimensionGeographic:  1.0,
				models.DimensionPerformance: 1.0,
			},
			1.0,
		},
		{
			"all zero",
			map[models.Dimension]float64{},
			0.0,
		},
		{
			"weighted mix",
			map[models.Dimension]float64{
				models.DimensionCapability:  0.5,
				models.DimensionGeographic:  1.0,
				models.DimensionPerformance: 0.0,
			},
			0.80*0.5 + 0.15*1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.Aggregate(tt.subScores)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}
