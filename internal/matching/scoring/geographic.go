// internal/matching/scoring/geographic.go
package scoring

import (
	"fmt"

	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/matching/geo"
	"forgelink/internal/models"
)

const (
	// NeutralGeographicScore applies when the order has no geographic
	// preference.
	NeutralGeographicScore = 0.5

	countryMatchWeight = 0.40
	distanceWeight     = 0.60
)

// distanceBands is a monotonically decreasing step function over distance.
var distanceBands = []struct {
	maxKM float64
	score float64
}{
	{50, 1.0},
	{200, 0.83},
	{500, 0.5},
	{1000, 0.33},
}

const beyondBandsScore = 0.17

// GeographicScorer scores proximity and logistics fit. The radius factor is
// 1.0 for direct matching; the fallback strategist raises it to widen the
// acceptable radius.
type GeographicScorer struct {
	radiusFactor float64
}

func NewGeographicScorer() *GeographicScorer {
	return &GeographicScorer{radiusFactor: 1.0}
}

// WithRadiusFactor returns a copy that multiplies the order's preferred
// radius by the given factor.
func (s *GeographicScorer) WithRadiusFactor(factor float64) *GeographicScorer {
	return &GeographicScorer{radiusFactor: factor}
}

// Score produces the geographic sub-score. An order forbidding international
// shipping hard-disqualifies manufacturers in other countries; that is an
// infeasibility, not a weighted penalty.
func (s *GeographicScorer) Score(order *models.Order, p *models.ManufacturerProfile) Result {
	pref := order.GeoPreference
	if pref == nil {
		return Result{
			Score:   NeutralGeographicScore,
			Reasons: []string{"No geographic preference specified"},
		}
	}

	sameCountry := p.Location.Country != "" && p.Location.Country == pref.Country
	if !pref.InternationalOK && !sameCountry {
		return Result{
			Score:        0,
			Disqualified: true,
			RiskFactors: []string{fmt.Sprintf(
				"Located in %s but order does not allow international shipping from %s",
				p.Location.Country, pref.Country)},
		}
	}

	countryScore := 0.0
	if sameCountry {
		countryScore = 1.0
	}

	var res Result
	distance, err := geo.Between(pref.Location(), p.Location)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeMissingCoordinates) {
			// Recover locally: score on country alone, note reduced precision.
			res.Score = countryScore
			res.Reasons = append(res.Reasons, "Distance unavailable, scored on country match only")
			if sameCountry {
				res.Reasons = append(res.Reasons, fmt.Sprintf("Located in preferred country %s", pref.Country))
			}
			return res
		}
		res.Score = NeutralGeographicScore
		return res
	}

	res.DistanceKM = &distance
	distScore := distanceBandScore(distance)

	if pref.MaxDistanceKM > 0 {
		radius := pref.MaxDistanceKM * s.radiusFactor
		if distance > radius {
			distScore = 0
			res.RiskFactors = append(res.RiskFactors,
				fmt.Sprintf("Distance %.0f km exceeds preferred radius %.0f km", distance, radius))
		}
	}

	res.Score = clamp(countryMatchWeight*countryScore+distanceWeight*distScore, 0, 1)

	if sameCountry {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Located in preferred country %s", pref.Country))
	}
	if distance <= 50 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Local manufacturer, %.0f km away", distance))
	}
	return res
}

func distanceBandScore(distanceKM float64) float64 {
	for _, band := range distanceBands {
		if distanceKM <= band.maxKM {
			return band.score
		}
	}
	return beyondBandsScore
}
