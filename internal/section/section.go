// Package section slices free-form model responses into named sections.
//
// Generated text is not guaranteed to be well formed, so every function here has
// a defined empty or zero fallback instead of returning an error.
package section

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Markers used by the profile scoring response format.
const (
	MatchScore     = "### Match Score"
	MatchAnalysis  = "### Match Analysis"
	Qualifications = "### Qualifications Analysis"
	Message        = "### Personalized Message"

	ScoreLine = "**Score:**"
)

// ScoreMarkers lists the scoring response sections in their expected order.
var ScoreMarkers = []string{MatchScore, MatchAnalysis, Qualifications, Message}

// Split returns the trimmed content that follows each marker, up to the start of
// the nearest following marker found in text (or the end of text). Markers absent
// from text map to an empty string.
func Split(text string, markers []string) map[string]string {
	result := make(map[string]string, len(markers))

	type hit struct {
		marker string
		start  int
	}

	hits := make([]hit, 0, len(markers))
	for _, marker := range markers {
		result[marker] = ""
		if marker == "" {
			continue
		}
		if idx := strings.Index(text, marker); idx >= 0 {
			hits = append(hits, hit{marker: marker, start: idx})
		}
	}

	for _, h := range hits {
		contentStart := h.start + len(h.marker)
		contentEnd := len(text)

		for _, other := range hits {
			if other.start >= contentStart && other.start < contentEnd {
				contentEnd = other.start
			}
		}

		result[h.marker] = strings.TrimSpace(text[contentStart:contentEnd])
	}

	return result
}

// ExtractScore finds the first line containing the score marker and parses the
// digits found on it. It returns 0 when there is no such line or no digits, and
// saturates at math.MaxInt when the digits overflow. Clamping is left to the caller.
func ExtractScore(text string) int {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, ScoreLine) {
			continue
		}

		var digits strings.Builder
		for _, r := range line {
			if r <= unicode.MaxASCII && unicode.IsDigit(r) {
				digits.WriteRune(r)
			}
		}

		if digits.Len() == 0 {
			return 0
		}

		score, err := strconv.Atoi(digits.String())
		if err != nil {
			return math.MaxInt
		}
		return score
	}

	return 0
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampScore bounds a match score to [0, 100].
func ClampScore(score int) int {
	return Clamp(score, 0, 100)
}
