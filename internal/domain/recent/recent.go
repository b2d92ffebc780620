// Package recent implements the eviction policy for the bounded
// most-recent set: the 30 newest plays per user, chart duplicates
// allowed. Eviction is recency-based but guarded by two fairness rules:
// an exceptional or personal-best play must not push the last surviving
// copy of a chart out of the derived distinct-chart top ten, and a chart
// spammed repeatedly is evicted from its own duplicates before touching
// chart variety. Like package best, the policy is a pure function over a
// snapshot.
package recent

import (
	"slices"
	"sort"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

// Eviction branch labels, used for observability.
const (
	BranchNone      = "none"       // set under capacity, nothing evicted
	BranchProtected = "protected"  // EX/high-score play, evicted from candidates
	BranchSameChart = "same_chart" // duplicate chart preferred for eviction
	BranchOldest    = "oldest"     // plain oldest-entry eviction
)

// Decision is the outcome of evaluating a record against the set.
type Decision struct {
	// Evicted is the entry to remove before inserting, nil when the set
	// has room.
	Evicted *model.PlayRecord
	// Branch names the rule that chose the eviction pool.
	Branch string
}

// SplitTop10 partitions the recent set into the best-rated distinct-chart
// plays (at most 10) and the remaining candidates. The walk is greedy
// over the rating-descending ordering, so the result depends only on the
// multiset of entries, not on input order. Rating ties are broken by
// newer timestamp first.
func SplitTop10(recent []model.PlayRecord) (top10, candidates []model.PlayRecord) {
	ordered := make([]model.PlayRecord, len(recent))
	copy(ordered, recent)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].PlayRating != ordered[j].PlayRating {
			return ordered[i].PlayRating > ordered[j].PlayRating
		}
		return ordered[i].Time > ordered[j].Time
	})

	seen := make(map[model.ChartID]bool, model.TopOfRecentSize)
	for _, r := range ordered {
		if len(top10) < model.TopOfRecentSize && !seen[r.Chart] {
			seen[r.Chart] = true
			top10 = append(top10, r)
		} else {
			candidates = append(candidates, r)
		}
	}
	return top10, candidates
}

// IsPersonalHighScore reports whether a score at least matches the
// highest score ever recorded for the chart (0 when no history exists).
func IsPersonalHighScore(score, highest int) bool {
	return score >= highest
}

// Apply evaluates rec against the current recent set and decides which
// entry, if any, must make room for it. recent30 is the store snapshot;
// its query order is the tie-break for equal timestamps (the earliest
// entry in snapshot order among the oldest wins).
func Apply(recent30 []model.PlayRecord, rec model.PlayRecord, isHighScore bool) Decision {
	if len(recent30) < model.RecentListSize {
		return Decision{Branch: BranchNone}
	}

	var pool []model.PlayRecord
	var branch string

	if rec.Score >= model.EXScoreThreshold || isHighScore {
		// Protection branch: an exceptional or personal-best play never
		// evicts the derived top ten.
		_, candidates := SplitTop10(recent30)
		pool = candidates
		branch = BranchProtected
		if wouldEnterTop10(recent30, rec) && distinctCharts(recent30) <= model.TopOfRecentSize {
			// Chart variety is thin and the new play will claim a top
			// slot itself: spare the last remaining copy of any chart by
			// evicting only from duplicated-chart candidates.
			if narrowed := duplicatedChartEntries(candidates); len(narrowed) > 0 {
				pool = narrowed
			}
		}
	} else if chartPresent(recent30, rec.Chart) && distinctCharts(recent30) <= model.TopOfRecentSize {
		// Prefer evicting a duplicate of the same chart over eroding
		// what little variety the set has.
		pool = sameChartEntries(recent30, rec.Chart)
		branch = BranchSameChart
	} else {
		pool = recent30
		branch = BranchOldest
	}

	evicted := oldest(pool)
	return Decision{Evicted: &evicted, Branch: branch}
}

// wouldEnterTop10 simulates the distinct-chart split over the current set
// plus rec and reports whether rec claims a top slot.
func wouldEnterTop10(recent30 []model.PlayRecord, rec model.PlayRecord) bool {
	top10, _ := SplitTop10(append(slices.Clone(recent30), rec))
	for _, r := range top10 {
		if r.SameKey(rec) && r.Chart == rec.Chart {
			return true
		}
	}
	return false
}

// duplicatedChartEntries keeps the entries whose chart appears more than
// once within the given pool.
func duplicatedChartEntries(pool []model.PlayRecord) []model.PlayRecord {
	counts := make(map[model.ChartID]int, len(pool))
	for _, r := range pool {
		counts[r.Chart]++
	}
	var out []model.PlayRecord
	for _, r := range pool {
		if counts[r.Chart] > 1 {
			out = append(out, r)
		}
	}
	return out
}

func sameChartEntries(recent30 []model.PlayRecord, chart model.ChartID) []model.PlayRecord {
	var out []model.PlayRecord
	for _, r := range recent30 {
		if r.Chart == chart {
			out = append(out, r)
		}
	}
	return out
}

func chartPresent(recent30 []model.PlayRecord, chart model.ChartID) bool {
	for _, r := range recent30 {
		if r.Chart == chart {
			return true
		}
	}
	return false
}

func distinctCharts(recent30 []model.PlayRecord) int {
	seen := make(map[model.ChartID]bool, len(recent30))
	for _, r := range recent30 {
		seen[r.Chart] = true
	}
	return len(seen)
}

// oldest returns the entry with the smallest timestamp; on ties the first
// one encountered wins, which is deterministic for a fixed snapshot
// order.
func oldest(pool []model.PlayRecord) model.PlayRecord {
	out := pool[0]
	for _, r := range pool[1:] {
		if r.Time < out.Time {
			out = r
		}
	}
	return out
}
