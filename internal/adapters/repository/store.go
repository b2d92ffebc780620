// Package repository defines the record store contract and its
// implementations. The store keeps three logical collections per user:
// the append-only play history, the best-rated set and the most-recent
// set. All three share one persisted row shape, fixed for compatibility
// with existing databases.
package repository

import (
	"context"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

// Table names the logical collections.
type Table string

const (
	TableHistory Table = "record"
	TableBest    Table = "best"
	TableRecent  Table = "recent"
)

// Row is the persisted shape shared by all three tables. Column set and
// types are bit-exact for compatibility: derived fields such as score or
// note count are not stored and are re-derived through chart metadata at
// read time.
type Row struct {
	SongID      string  // song_id TEXT
	RatingClass int     // rating_class INTEGER DEFAULT 2
	Pure        int     // pure INTEGER
	MaxPure     int     // max_pure INTEGER
	Far         int     // far INTEGER
	PlayPtt     float64 // play_ptt REAL
	Time        int64   // time INTEGER, primary key with user
	User        string  // user TEXT
}

// Op discriminates mutation kinds.
type Op int

const (
	OpInsert Op = iota
	OpDelete
)

// Mutation is one insert or delete against a table. A submission commits
// its mutations as a single all-or-nothing list.
type Mutation struct {
	Op    Op
	Table Table
	Row   Row // full row for inserts; only User and Time for deletes
}

// Insert builds an insert mutation.
func Insert(t Table, r Row) Mutation {
	return Mutation{Op: OpInsert, Table: t, Row: r}
}

// Delete builds a delete-by-key mutation.
func Delete(t Table, user string, time int64) Mutation {
	return Mutation{Op: OpDelete, Table: t, Row: Row{User: user, Time: time}}
}

// Store provides durable access to the per-user collections.
//
// Query ordering contract: QueryBest returns rows by play_ptt descending
// (ties by time ascending) limited to the set bound; QueryRecent returns
// rows by time descending limited to the set bound. Eviction tie-breaks
// depend on these orders being stable.
type Store interface {
	InsertHistory(ctx context.Context, r Row) error
	InsertBest(ctx context.Context, r Row) error
	InsertRecent(ctx context.Context, r Row) error

	DeleteBest(ctx context.Context, user string, time int64) error
	DeleteRecent(ctx context.Context, user string, time int64) error

	QueryBest(ctx context.Context, user string) ([]Row, error)
	QueryRecent(ctx context.Context, user string) ([]Row, error)

	// QueryChartInSet returns the best-rated row for a chart within one
	// table, or ErrNotFound.
	QueryChartInSet(ctx context.Context, t Table, user string, chart model.ChartID) (Row, error)

	// QueryChartHistory returns every history row for a chart; the
	// caller derives the personal high score from the raw counts.
	QueryChartHistory(ctx context.Context, user string, chart model.ChartID) ([]Row, error)

	// RunTransaction applies the mutations atomically: on any failure
	// none of them take effect.
	RunTransaction(ctx context.Context, muts []Mutation) error
}
