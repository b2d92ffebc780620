package charts

import (
	"context"
	"fmt"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

// StaticProvider serves metadata from a fixed in-memory table. Tests and
// embedded deployments use it in place of the song database.
type StaticProvider struct {
	charts map[model.ChartID]Metadata
}

var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider copies the given table.
func NewStaticProvider(charts map[model.ChartID]Metadata) *StaticProvider {
	m := make(map[model.ChartID]Metadata, len(charts))
	for k, v := range charts {
		m[k] = v
	}
	return &StaticProvider{charts: m}
}

func (p *StaticProvider) Lookup(_ context.Context, chart model.ChartID) (Metadata, error) {
	m, ok := p.charts[chart]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrChartNotFound, chart)
	}
	return m, nil
}
