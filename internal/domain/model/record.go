// Package model contains domain models passed between layers.
package model

import "fmt"

// Bounds for the per-user leaderboard sets.
const (
	// BestListSize bounds the best-rated set (one entry per chart).
	BestListSize = 30
	// RecentListSize bounds the most-recent set (chart duplicates allowed).
	RecentListSize = 30
	// TopOfRecentSize bounds the distinct-chart top view derived from the
	// recent set.
	TopOfRecentSize = 10
	// EXScoreThreshold marks a score as exceptional and eviction-protected.
	EXScoreThreshold = 9_800_000
)

// ChartID identifies a chart: a song together with its difficulty tier.
type ChartID struct {
	SongID      string
	RatingClass int
}

func (c ChartID) String() string {
	return fmt.Sprintf("%s/%d", c.SongID, c.RatingClass)
}

// PlayRecord represents one submitted play. Identity fields and raw note
// counts come from the caller; the remaining fields are derived once at
// submission time and never recomputed.
type PlayRecord struct {
	User  string
	Chart ChartID
	Time  int64 // caller-supplied unix timestamp, unique per (user, time)

	// Raw judgment counts.
	Pure    int
	MaxPure int // pures that were also "max", each worth one bonus point
	Far     int

	// Derived fields.
	Note       int    // chart note count
	BaseRating int    // chart rating value in integer tenths, e.g. 113 = 11.3
	Name       string // chart display name
	Lost       int
	Score      int
	PlayRating float64
}

// SameKey reports whether two records share the physical storage key.
func (r PlayRecord) SameKey(other PlayRecord) bool {
	return r.User == other.User && r.Time == other.Time
}

// ValidateCounts checks the raw judgment counts against the chart's note
// count. All failures wrap ErrInvalidCounts.
func ValidateCounts(pure, maxPure, far, note int) error {
	switch {
	case pure < 0 || maxPure < 0 || far < 0:
		return fmt.Errorf("%w: negative judgment count", ErrInvalidCounts)
	case maxPure > pure:
		return fmt.Errorf("%w: max pure %d exceeds pure %d", ErrInvalidCounts, maxPure, pure)
	case pure+far > note:
		return fmt.Errorf("%w: pure %d + far %d exceeds note count %d", ErrInvalidCounts, pure, far, note)
	}
	return nil
}
