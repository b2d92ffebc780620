package charts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

// SQLiteProvider reads chart metadata from a song database's charts
// table. The database ships with chart data and is opened read-only.
type SQLiteProvider struct {
	db *sql.DB
}

var _ Provider = (*SQLiteProvider)(nil)

// NewSQLiteProvider opens the song database at path.
func NewSQLiteProvider(ctx context.Context, path string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open song database %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping song database %s: %w", path, err)
	}
	return &SQLiteProvider{db: db}, nil
}

// Close releases the underlying database handle.
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

// Lookup resolves a chart. The JP title is preferred when present,
// falling back to the EN title.
func (p *SQLiteProvider) Lookup(ctx context.Context, chart model.ChartID) (Metadata, error) {
	const q = "SELECT rating, note, name_jp, name_en FROM charts WHERE song_id = ? AND rating_class = ?"
	var (
		m              Metadata
		nameJP, nameEN string
	)
	err := p.db.QueryRowContext(ctx, q, chart.SongID, chart.RatingClass).
		Scan(&m.BaseRating, &m.Note, &nameJP, &nameEN)
	if errors.Is(err, sql.ErrNoRows) {
		return Metadata{}, fmt.Errorf("%w: %s", ErrChartNotFound, chart)
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("lookup chart %s: %w", chart, err)
	}
	m.Name = nameJP
	if m.Name == "" {
		m.Name = nameEN
	}
	return m, nil
}
