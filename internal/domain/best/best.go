// Package best implements the eviction policy for the bounded best-rated
// set: at most 30 entries per user, at most one entry per chart. The
// policy is a pure function over a snapshot so it can be tested without a
// live store; the caller translates the decision into storage mutations.
package best

import "github.com/CuSO4Deposit/arctrack/internal/domain/model"

// Decision is the outcome of evaluating a record against the set.
type Decision struct {
	// Accepted reports whether the record enters the set. This is the
	// "updated personal best" signal surfaced to callers.
	Accepted bool
	// Evicted is the entry to remove before inserting, nil when the set
	// has room and the chart is new to it.
	Evicted *model.PlayRecord
}

// Apply evaluates rec against the current best set. best30 must be the
// store snapshot ordered by play rating descending, so the last element
// is the globally lowest-rated entry.
//
// Rules, in order:
//  1. A full set rejects any record that does not beat the lowest rating
//     (ties at the boundary reject).
//  2. A chart already present with a strictly better rating keeps its
//     entry.
//  3. Otherwise the record is accepted, evicting the chart's previous
//     entry if present, else the lowest-rated entry if the set is full.
func Apply(best30 []model.PlayRecord, rec model.PlayRecord) Decision {
	var existing *model.PlayRecord
	for i := range best30 {
		if best30[i].Chart == rec.Chart {
			existing = &best30[i]
			break
		}
	}

	full := len(best30) >= model.BestListSize
	if full && rec.PlayRating <= best30[len(best30)-1].PlayRating {
		return Decision{}
	}
	if existing != nil && existing.PlayRating > rec.PlayRating {
		return Decision{}
	}

	d := Decision{Accepted: true}
	switch {
	case existing != nil:
		evicted := *existing
		d.Evicted = &evicted
	case full:
		evicted := best30[len(best30)-1]
		d.Evicted = &evicted
	}
	return d
}
