package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// SQLite driver, registered as "sqlite3".
	_ "github.com/mattn/go-sqlite3"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

// Column list shared by all three tables; order matters for the insert
// statements below.
const rowColumns = "song_id, rating_class, pure, max_pure, far, play_ptt, time, user"

// schema creates the three collections. The column set is fixed for
// compatibility with existing user databases.
const schema = `
CREATE TABLE IF NOT EXISTS record (
	song_id      TEXT    NOT NULL,
	rating_class INTEGER NOT NULL DEFAULT 2,
	pure         INTEGER NOT NULL,
	max_pure     INTEGER NOT NULL,
	far          INTEGER NOT NULL,
	play_ptt     REAL    NOT NULL,
	time         INTEGER NOT NULL,
	user         TEXT    NOT NULL,
	PRIMARY KEY (time, user)
);
CREATE TABLE IF NOT EXISTS best (
	song_id      TEXT    NOT NULL,
	rating_class INTEGER NOT NULL DEFAULT 2,
	pure         INTEGER NOT NULL,
	max_pure     INTEGER NOT NULL,
	far          INTEGER NOT NULL,
	play_ptt     REAL    NOT NULL,
	time         INTEGER NOT NULL,
	user         TEXT    NOT NULL,
	PRIMARY KEY (time, user)
);
CREATE TABLE IF NOT EXISTS recent (
	song_id      TEXT    NOT NULL,
	rating_class INTEGER NOT NULL DEFAULT 2,
	pure         INTEGER NOT NULL,
	max_pure     INTEGER NOT NULL,
	far          INTEGER NOT NULL,
	play_ptt     REAL    NOT NULL,
	time         INTEGER NOT NULL,
	user         TEXT    NOT NULL,
	PRIMARY KEY (time, user)
);
CREATE INDEX IF NOT EXISTS idx_record_user_chart ON record (user, song_id, rating_class);
CREATE INDEX IF NOT EXISTS idx_best_user ON best (user);
CREATE INDEX IF NOT EXISTS idx_recent_user ON recent (user);
`

// SQLiteStore implements Store over a SQLite user database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the user database at path
// and ensures the schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorage, path, err)
	}
	// Serialized access keeps SQLite happy under the per-user locking
	// discipline enforced by the service layer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ensure schema: %w", ErrStorage, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// validTable guards statement construction; table names come from a
// closed set, never from callers directly.
func validTable(t Table) error {
	switch t {
	case TableHistory, TableBest, TableRecent:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTable, t)
	}
}

func (s *SQLiteStore) insert(ctx context.Context, t Table, r Row) error {
	if err := validTable(t); err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", t, rowColumns)
	if _, err := s.db.ExecContext(ctx, q,
		r.SongID, r.RatingClass, r.Pure, r.MaxPure, r.Far, r.PlayPtt, r.Time, r.User); err != nil {
		return fmt.Errorf("%w: insert into %s: %w", ErrStorage, t, err)
	}
	return nil
}

func (s *SQLiteStore) delete(ctx context.Context, t Table, user string, time int64) error {
	if err := validTable(t); err != nil {
		return err
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE user = ? AND time = ?", t)
	if _, err := s.db.ExecContext(ctx, q, user, time); err != nil {
		return fmt.Errorf("%w: delete from %s: %w", ErrStorage, t, err)
	}
	return nil
}

func (s *SQLiteStore) InsertHistory(ctx context.Context, r Row) error {
	return s.insert(ctx, TableHistory, r)
}

func (s *SQLiteStore) InsertBest(ctx context.Context, r Row) error {
	return s.insert(ctx, TableBest, r)
}

func (s *SQLiteStore) InsertRecent(ctx context.Context, r Row) error {
	return s.insert(ctx, TableRecent, r)
}

func (s *SQLiteStore) DeleteBest(ctx context.Context, user string, time int64) error {
	return s.delete(ctx, TableBest, user, time)
}

func (s *SQLiteStore) DeleteRecent(ctx context.Context, user string, time int64) error {
	return s.delete(ctx, TableRecent, user, time)
}

func (s *SQLiteStore) queryRows(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrStorage, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.SongID, &r.RatingClass, &r.Pure, &r.MaxPure, &r.Far, &r.PlayPtt, &r.Time, &r.User); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrStorage, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %w", ErrStorage, err)
	}
	return out, nil
}

// QueryBest returns the best set by play rating descending, ties broken
// by older timestamp first.
func (s *SQLiteStore) QueryBest(ctx context.Context, user string) ([]Row, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM best WHERE user = ? ORDER BY play_ptt DESC, time ASC LIMIT %d",
		rowColumns, model.BestListSize)
	return s.queryRows(ctx, q, user)
}

// QueryRecent returns the recent set newest first.
func (s *SQLiteStore) QueryRecent(ctx context.Context, user string) ([]Row, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM recent WHERE user = ? ORDER BY time DESC LIMIT %d",
		rowColumns, model.RecentListSize)
	return s.queryRows(ctx, q, user)
}

func (s *SQLiteStore) QueryChartInSet(ctx context.Context, t Table, user string, chart model.ChartID) (Row, error) {
	if err := validTable(t); err != nil {
		return Row{}, err
	}
	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE user = ? AND song_id = ? AND rating_class = ? ORDER BY play_ptt DESC LIMIT 1",
		rowColumns, t)
	rows, err := s.queryRows(ctx, q, user, chart.SongID, chart.RatingClass)
	if err != nil {
		return Row{}, err
	}
	if len(rows) == 0 {
		return Row{}, fmt.Errorf("%w: %s in %s for %s", ErrNotFound, chart, t, user)
	}
	return rows[0], nil
}

func (s *SQLiteStore) QueryChartHistory(ctx context.Context, user string, chart model.ChartID) ([]Row, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM record WHERE user = ? AND song_id = ? AND rating_class = ? ORDER BY time ASC",
		rowColumns)
	return s.queryRows(ctx, q, user, chart.SongID, chart.RatingClass)
}

// RunTransaction applies all mutations inside one SQLite transaction.
func (s *SQLiteStore) RunTransaction(ctx context.Context, muts []Mutation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	for _, m := range muts {
		if err := validTable(m.Table); err != nil {
			_ = tx.Rollback()
			return err
		}
		switch m.Op {
		case OpInsert:
			q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", m.Table, rowColumns)
			_, err = tx.ExecContext(ctx, q,
				m.Row.SongID, m.Row.RatingClass, m.Row.Pure, m.Row.MaxPure, m.Row.Far,
				m.Row.PlayPtt, m.Row.Time, m.Row.User)
		case OpDelete:
			q := fmt.Sprintf("DELETE FROM %s WHERE user = ? AND time = ?", m.Table)
			_, err = tx.ExecContext(ctx, q, m.Row.User, m.Row.Time)
		default:
			err = errors.New("unknown mutation op")
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: apply mutation on %s: %w", ErrStorage, m.Table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}
	return nil
}
