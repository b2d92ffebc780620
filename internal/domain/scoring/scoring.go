// Package scoring computes scores and play ratings from raw judgment
// counts. Both functions are pure; the breakpoints and truncation are an
// exact numeric contract shared with existing stores.
package scoring

import (
	"fmt"
	"math"
)

// Score breakpoints.
const (
	// maxTheoretical is the score of an all-max-pure play before the
	// per-note bonus; scores above it earn the flat +2 rating bonus.
	maxTheoretical = 10_000_000
	// exThreshold starts the EX band where rating scales by 1 per 200k.
	exThreshold = 9_800_000
	// ratingFloor anchors the sub-EX band, scaling by 1 per 300k.
	ratingFloor = 9_500_000
)

// ComputeScore derives the integer score for a play.
//
//	score = floor((10,000,000/note) * (pure + far/2)) + maxPure
//
// Returns ErrInvalidChart when the chart's note count is not positive.
func ComputeScore(pure, maxPure, far, note int) (int, error) {
	if note <= 0 {
		return 0, fmt.Errorf("%w: note count %d", ErrInvalidChart, note)
	}
	perNote := float64(maxTheoretical) / float64(note)
	base := math.Floor(perNote * (float64(pure) + float64(far)/2))
	return int(base) + maxPure, nil
}

// ComputeRating derives the per-play rating contribution from a score and
// the chart's base rating value (integer tenths, e.g. 113 = 11.3).
func ComputeRating(score, baseRating int) float64 {
	base := float64(baseRating) / 10
	switch {
	case score > maxTheoretical:
		return base + 2
	case score >= exThreshold:
		return base + 1 + float64(score-exThreshold)/200_000
	default:
		return math.Max(0, base+float64(score-ratingFloor)/300_000)
	}
}
