// internal/matching/scoring/result.go
package scoring

// Result is one scorer's verdict on a single manufacturer: a normalized
// score plus the human-readable explanation material that ends up on the
// MatchResult.
type Result struct {
	Score        float64
	Reasons      []string
	RiskFactors  []string
	Disqualified bool
	DistanceKM   *float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
