package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
)

type rowKey struct {
	user string
	time int64
}

// MemoryStore implements Store in memory. It mirrors the SQLite store's
// ordering and key semantics (including primary-key violations) so the
// service behaves identically against either; unit tests and the
// "memory" store configuration use it.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table]map[rowKey]Row
	// order preserves insertion sequence per table for stable tie-breaks
	// among equal timestamps, matching SQLite's scan order.
	order map[Table][]rowKey
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		tables: make(map[Table]map[rowKey]Row),
		order:  make(map[Table][]rowKey),
	}
	for _, t := range []Table{TableHistory, TableBest, TableRecent} {
		s.tables[t] = make(map[rowKey]Row)
	}
	return s
}

func (s *MemoryStore) insertLocked(t Table, r Row) error {
	if err := validTable(t); err != nil {
		return err
	}
	k := rowKey{user: r.User, time: r.Time}
	if _, exists := s.tables[t][k]; exists {
		return fmt.Errorf("%w: duplicate key (%d, %s) in %s", ErrStorage, r.Time, r.User, t)
	}
	s.tables[t][k] = r
	s.order[t] = append(s.order[t], k)
	return nil
}

func (s *MemoryStore) deleteLocked(t Table, user string, time int64) error {
	if err := validTable(t); err != nil {
		return err
	}
	delete(s.tables[t], rowKey{user: user, time: time})
	return nil
}

func (s *MemoryStore) InsertHistory(ctx context.Context, r Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(TableHistory, r)
}

func (s *MemoryStore) InsertBest(ctx context.Context, r Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(TableBest, r)
}

func (s *MemoryStore) InsertRecent(ctx context.Context, r Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(TableRecent, r)
}

func (s *MemoryStore) DeleteBest(ctx context.Context, user string, time int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(TableBest, user, time)
}

func (s *MemoryStore) DeleteRecent(ctx context.Context, user string, time int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(TableRecent, user, time)
}

// userRowsLocked returns a user's live rows in insertion order.
func (s *MemoryStore) userRowsLocked(t Table, user string) []Row {
	var out []Row
	for _, k := range s.order[t] {
		if k.user != user {
			continue
		}
		if r, ok := s.tables[t][k]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *MemoryStore) QueryBest(ctx context.Context, user string) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.userRowsLocked(TableBest, user)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PlayPtt != rows[j].PlayPtt {
			return rows[i].PlayPtt > rows[j].PlayPtt
		}
		return rows[i].Time < rows[j].Time
	})
	if len(rows) > model.BestListSize {
		rows = rows[:model.BestListSize]
	}
	return rows, nil
}

func (s *MemoryStore) QueryRecent(ctx context.Context, user string) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.userRowsLocked(TableRecent, user)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time > rows[j].Time
	})
	if len(rows) > model.RecentListSize {
		rows = rows[:model.RecentListSize]
	}
	return rows, nil
}

func (s *MemoryStore) QueryChartInSet(ctx context.Context, t Table, user string, chart model.ChartID) (Row, error) {
	if err := validTable(t); err != nil {
		return Row{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *Row
	for _, r := range s.userRowsLocked(t, user) {
		if r.SongID != chart.SongID || r.RatingClass != chart.RatingClass {
			continue
		}
		if found == nil || r.PlayPtt > found.PlayPtt {
			row := r
			found = &row
		}
	}
	if found == nil {
		return Row{}, fmt.Errorf("%w: %s in %s for %s", ErrNotFound, chart, t, user)
	}
	return *found, nil
}

func (s *MemoryStore) QueryChartHistory(ctx context.Context, user string, chart model.ChartID) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Row
	for _, r := range s.userRowsLocked(TableHistory, user) {
		if r.SongID == chart.SongID && r.RatingClass == chart.RatingClass {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

// RunTransaction applies all mutations or none: inserts and deletes are
// staged first and rolled back together on any failure.
func (s *MemoryStore) RunTransaction(ctx context.Context, muts []Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type undo func()
	var undos []undo
	rollback := func() {
		for i := len(undos) - 1; i >= 0; i-- {
			undos[i]()
		}
	}

	for _, m := range muts {
		switch m.Op {
		case OpInsert:
			row := m.Row
			if err := s.insertLocked(m.Table, row); err != nil {
				rollback()
				return err
			}
			t := m.Table
			k := rowKey{user: row.User, time: row.Time}
			undos = append(undos, func() {
				delete(s.tables[t], k)
				s.order[t] = s.order[t][:len(s.order[t])-1]
			})
		case OpDelete:
			t := m.Table
			if err := validTable(t); err != nil {
				rollback()
				return err
			}
			k := rowKey{user: m.Row.User, time: m.Row.Time}
			prev, existed := s.tables[t][k]
			delete(s.tables[t], k)
			undos = append(undos, func() {
				if existed {
					s.tables[t][k] = prev
				}
			})
		default:
			rollback()
			return fmt.Errorf("%w: unknown mutation op", ErrStorage)
		}
	}
	return nil
}
