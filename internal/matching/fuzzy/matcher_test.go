package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"CNC Machining", "cnc machining"},
		{"CNC-Machining", "cnc machining"},
		{"  CNC   milling / machining ", "cnc milling machining"},
		{"ISO 9001:2015", "iso 9001 2015"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.in))
	}
}

func TestSimilarity_ExactAfterNormalization(t *testing.T) {
	m := NewTokenMatcher()

	sim := m.Similarity("CNC Machining", "CNC machining")
	assert.GreaterOrEqual(t, sim, 0.95)
	assert.Equal(t, 1.0, sim)
}

func TestSimilarity_TerminologyVariants(t *testing.T) {
	m := NewTokenMatcher()

	tests := []struct {
		name      string
		requested string
		available string
		minimum   float64
	}{
		{"subset of a richer description", "CNC Machining", "CNC milling / machining", DefaultThreshold},
		{"spelling variant", "Aluminium", "Aluminum", DefaultThreshold},
		{"certification with punctuation", "ISO 9001", "ISO-9001", 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := m.Similarity(tt.requested, tt.available)
			assert.GreaterOrEqual(t, sim, tt.minimum)
		})
	}
}

func TestSimilarity_UnrelatedStrings(t *testing.T) {
	m := NewTokenMatcher()

	assert.Less(t, m.Similarity("Injection Molding", "Sheet Metal Stamping"), DefaultThreshold)
	assert.Equal(t, 0.0, m.Similarity("", "CNC Machining"))
	assert.Equal(t, 0.0, m.Similarity("CNC Machining", ""))
}

func TestSimilarity_Bounds(t *testing.T) {
	m := NewTokenMatcher()

	pairs := [][2]string{
		{"CNC Machining", "CNC milling / machining"},
		{"anodizing", "anodising"},
		{"steel", "titanium"},
		{"3D Printing", "Additive Manufacturing (3D printing)"},
	}
	for _, p := range pairs {
		sim := m.Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestBestMatch(t *testing.T) {
	m := NewTokenMatcher()
	available := []string{"CNC milling / machining", "Injection Molding", "Sheet Metal Stamping"}

	best, sim := BestMatch(m, "CNC Machining", available, DefaultThreshold)
	assert.Equal(t, "CNC milling / machining", best)
	assert.GreaterOrEqual(t, sim, DefaultThreshold)
}

func TestBestMatch_NothingClearsThreshold(t *testing.T) {
	m := NewTokenMatcher()
	available := []string{"Injection Molding", "Die Casting"}

	best, sim := BestMatch(m, "Electropolishing", available, DefaultThreshold)
	assert.Equal(t, "", best)
	assert.Equal(t, 0.0, sim)
}

func TestBestMatch_EmptyAvailable(t *testing.T) {
	m := NewTokenMatcher()

	best, sim := BestMatch(m, "CNC Machining", nil, DefaultThreshold)
	assert.Equal(t, "", best)
	assert.Equal(t, 0.0, sim)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"aluminium", "aluminum", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levenshtein(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
