// Package fuzzy implements similarity-based capability matching. Declared
// capabilities are free text ("CNC milling / machining", "cnc machining"),
// so matching tolerates terminology and spelling variance.
package fuzzy

import (
	"strings"
	"unicode"
)

// Matcher computes a similarity score in [0,1] between two capability strings.
// The algorithm is swappable; scorers only depend on this interface.
type Matcher interface {
	Similarity(a, b string) float64
}

const (
	// DefaultThreshold is the similarity floor for a capability match.
	DefaultThreshold = 0.70

	// tokenMatchFloor is the per-token similarity below which two tokens
	// are considered unrelated.
	tokenMatchFloor = 0.80

	coverageWeight = 0.60
	overlapWeight  = 0.40
)

// TokenMatcher scores similarity on normalized token sets: coverage of the
// requested tokens dominates, with a token-overlap component so that a short
// request does not trivially match a sprawling capability description.
type TokenMatcher struct{}

func NewTokenMatcher() *TokenMatcher {
	return &TokenMatcher{}
}

// Similarity returns a score in [0,1]. Strings equal after normalization
// score 1.0.
func (m *TokenMatcher) Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	requested := strings.Fields(na)
	available := strings.Fields(nb)

	coverageSum := 0.0
	matched := 0
	for _, rt := range requested {
		best := 0.0
		for _, at := range available {
			if s := tokenSimilarity(rt, at); s > best {
				best = s
			}
		}
		if best >= tokenMatchFloor {
			coverageSum += best
			matched++
		}
	}

	coverage := coverageSum / float64(len(requested))
	union := len(requested) + len(available) - matched
	overlap := float64(matched) / float64(union)

	sim := coverageWeight*coverage + overlapWeight*overlap
	if sim > 1 {
		sim = 1
	}
	return sim
}

// BestMatch finds the available capability most similar to the requested one.
// Returns ("", 0.0) when nothing clears the threshold; that is a valid
// "no capability match" signal, not an error.
func BestMatch(m Matcher, requested string, available []string, threshold float64) (string, float64) {
	best := ""
	bestSim := 0.0
	for _, cand := range available {
		if sim := m.Similarity(requested, cand); sim > bestSim {
			best = cand
			bestSim = sim
		}
	}
	if bestSim < threshold {
		return "", 0.0
	}
	return best, bestSim
}

// Normalize lowercases and strips punctuation so that "CNC-Machining" and
// "cnc machining" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes edit distance with a single-row DP.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev = curr
	}
	return prev[lb]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
