// Package charts provides chart metadata lookup: note count, base rating
// value and display name for a chart identity.
package charts

import (
	"context"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

// Metadata describes one chart.
type Metadata struct {
	Note       int    // total note count
	BaseRating int    // rating value in integer tenths, e.g. 113 = 11.3
	Name       string // display name
}

// Provider resolves chart identities to metadata.
type Provider interface {
	// Lookup returns the metadata for a chart, or ErrChartNotFound.
	Lookup(ctx context.Context, chart model.ChartID) (Metadata, error)
}
