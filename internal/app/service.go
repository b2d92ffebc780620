// Package app provides the leaderboard service that orchestrates play
// submissions: it derives score and rating, runs the best-30 and
// recent-30 eviction policies over store snapshots, and commits the
// resulting mutations as one transaction.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CuSO4Deposit/arctrack/internal/adapters/charts"
	"github.com/CuSO4Deposit/arctrack/internal/adapters/repository"
	"github.com/CuSO4Deposit/arctrack/internal/domain/best"
	"github.com/CuSO4Deposit/arctrack/internal/domain/model"
	"github.com/CuSO4Deposit/arctrack/internal/domain/recent"
	"github.com/CuSO4Deposit/arctrack/internal/domain/scoring"
	"github.com/CuSO4Deposit/arctrack/pkg/logger"
	"github.com/CuSO4Deposit/arctrack/pkg/metrics"
)

// Rejection reasons reported to metrics.
const (
	rejectChartNotFound = "chart_not_found"
	rejectValidation    = "validation"
	rejectStorage       = "storage"
	rejectInvariant     = "invariant"
)

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	// UpdatedBest is true when the play entered the best-30 set.
	UpdatedBest bool
}

// Service implements the leaderboard maintenance engine.
type Service struct {
	store  repository.Store
	charts charts.Provider
	locks  *userLocks
	log    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service around its store and chart metadata
// collaborators.
func New(store repository.Store, provider charts.Provider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		charts: provider,
		locks:  newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) logger() logger.Logger {
	if s.log == nil {
		s.log = logger.Get()
	}
	return s.log
}

// Submit processes one play. Steps: resolve chart metadata, validate and
// derive score/rating, snapshot the user's sets, run both eviction
// policies, and commit history + recent + best mutations atomically.
// Submissions for one user are applied strictly in acceptance order.
func (s *Service) Submit(ctx context.Context, user string, chart model.ChartID, pure, maxPure, far int, submittedAt int64) (SubmitResult, error) {
	release := s.locks.acquire(user)
	defer release()

	submissionID := uuid.NewString()

	meta, err := s.charts.Lookup(ctx, chart)
	if err != nil {
		metrics.RecordSubmissionRejected(rejectChartNotFound)
		return SubmitResult{}, err
	}

	if err := model.ValidateCounts(pure, maxPure, far, meta.Note); err != nil {
		metrics.RecordSubmissionRejected(rejectValidation)
		return SubmitResult{}, err
	}

	score, err := scoring.ComputeScore(pure, maxPure, far, meta.Note)
	if err != nil {
		metrics.RecordSubmissionRejected(rejectValidation)
		return SubmitResult{}, err
	}

	rec := model.PlayRecord{
		User:       user,
		Chart:      chart,
		Time:       submittedAt,
		Pure:       pure,
		MaxPure:    maxPure,
		Far:        far,
		Note:       meta.Note,
		BaseRating: meta.BaseRating,
		Name:       meta.Name,
		Lost:       meta.Note - pure - far,
		Score:      score,
		PlayRating: scoring.ComputeRating(score, meta.BaseRating),
	}

	bestRows, err := s.store.QueryBest(ctx, user)
	if err != nil {
		metrics.RecordSubmissionRejected(rejectStorage)
		return SubmitResult{}, err
	}
	recentRows, err := s.store.QueryRecent(ctx, user)
	if err != nil {
		metrics.RecordSubmissionRejected(rejectStorage)
		return SubmitResult{}, err
	}
	best30 := repository.RecordsFromRows(bestRows)
	recent30 := repository.RecordsFromRows(recentRows)

	highest, err := s.highestScore(ctx, rec)
	if err != nil {
		metrics.RecordSubmissionRejected(rejectStorage)
		return SubmitResult{}, err
	}

	recentDecision := recent.Apply(recent30, rec, recent.IsPersonalHighScore(rec.Score, highest))
	bestDecision := best.Apply(best30, rec)

	if err := checkInvariants(best30, recent30, rec, bestDecision, recentDecision); err != nil {
		metrics.RecordSubmissionRejected(rejectInvariant)
		metrics.RecordInvariantViolation()
		return SubmitResult{}, err
	}

	row := repository.RowFromRecord(rec)
	muts := make([]repository.Mutation, 0, 5)
	if recentDecision.Evicted != nil {
		muts = append(muts, repository.Delete(repository.TableRecent, recentDecision.Evicted.User, recentDecision.Evicted.Time))
	}
	muts = append(muts,
		repository.Insert(repository.TableRecent, row),
		repository.Insert(repository.TableHistory, row),
	)
	if bestDecision.Accepted {
		if bestDecision.Evicted != nil {
			muts = append(muts, repository.Delete(repository.TableBest, bestDecision.Evicted.User, bestDecision.Evicted.Time))
		}
		muts = append(muts, repository.Insert(repository.TableBest, row))
	}

	start := time.Now()
	if err := s.store.RunTransaction(ctx, muts); err != nil {
		metrics.RecordSubmissionRejected(rejectStorage)
		metrics.RecordStorageError()
		s.logger().Error(ctx, "submission transaction failed",
			logger.String("submission", submissionID),
			logger.String("user", user),
			logger.Error(err),
		)
		return SubmitResult{}, err
	}
	metrics.RecordTransactionLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	metrics.RecordSubmissionAccepted()
	if recentDecision.Evicted != nil {
		metrics.RecordRecentEviction(recentDecision.Branch)
	}
	if bestDecision.Accepted {
		metrics.RecordBestUpdate()
	}

	s.logger().Info(ctx, "play submitted",
		logger.String("submission", submissionID),
		logger.String("user", user),
		logger.String("chart", chart.String()),
		logger.Int("score", rec.Score),
		logger.Float64("play_rating", rec.PlayRating),
		logger.Bool("updated_best", bestDecision.Accepted),
	)
	return SubmitResult{UpdatedBest: bestDecision.Accepted}, nil
}

// highestScore derives the personal high score for the record's chart
// from stored history counts; 0 when no history exists.
func (s *Service) highestScore(ctx context.Context, rec model.PlayRecord) (int, error) {
	rows, err := s.store.QueryChartHistory(ctx, rec.User, rec.Chart)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, row := range rows {
		score, err := scoring.ComputeScore(row.Pure, row.MaxPure, row.Far, rec.Note)
		if err != nil {
			return 0, err
		}
		if score > highest {
			highest = score
		}
	}
	return highest, nil
}

// checkInvariants re-validates the policy decisions before anything is
// written: neither bounded set may exceed its size and best-30 must stay
// unique per chart. A failure here is a policy bug, not a user error.
func checkInvariants(best30, recent30 []model.PlayRecord, rec model.PlayRecord, bd best.Decision, rd recent.Decision) error {
	recentSize := len(recent30) + 1
	if rd.Evicted != nil {
		recentSize--
	}
	if recentSize > model.RecentListSize {
		return fmt.Errorf("%w: recent set would hold %d entries", ErrEvictionInvariant, recentSize)
	}

	if !bd.Accepted {
		return nil
	}
	bestSize := len(best30) + 1
	if bd.Evicted != nil {
		bestSize--
	}
	if bestSize > model.BestListSize {
		return fmt.Errorf("%w: best set would hold %d entries", ErrEvictionInvariant, bestSize)
	}
	for _, e := range best30 {
		if e.Chart != rec.Chart {
			continue
		}
		if bd.Evicted == nil || !bd.Evicted.SameKey(e) {
			return fmt.Errorf("%w: duplicate chart %s in best set", ErrEvictionInvariant, rec.Chart)
		}
	}
	return nil
}

// Best30 returns the user's best-rated set, highest rating first, with
// display fields resolved through chart metadata.
func (s *Service) Best30(ctx context.Context, user string) ([]model.PlayRecord, error) {
	rows, err := s.store.QueryBest(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, repository.RecordsFromRows(rows))
}

// Recent30 returns the user's most recent plays, newest first.
func (s *Service) Recent30(ctx context.Context, user string) ([]model.PlayRecord, error) {
	rows, err := s.store.QueryRecent(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, repository.RecordsFromRows(rows))
}

// Recent10 returns the best-rated distinct-chart plays among the user's
// recent set.
func (s *Service) Recent10(ctx context.Context, user string) ([]model.PlayRecord, error) {
	recent30, err := s.Recent30(ctx, user)
	if err != nil {
		return nil, err
	}
	top10, _ := recent.SplitTop10(recent30)
	return top10, nil
}

// enrich fills the metadata-derived fields dropped by the persisted row
// shape. Lookups are cached per call since a set rarely spans more than
// 30 charts.
func (s *Service) enrich(ctx context.Context, recs []model.PlayRecord) ([]model.PlayRecord, error) {
	cache := make(map[model.ChartID]charts.Metadata, len(recs))
	for i := range recs {
		meta, ok := cache[recs[i].Chart]
		if !ok {
			var err error
			meta, err = s.charts.Lookup(ctx, recs[i].Chart)
			if err != nil {
				if errors.Is(err, charts.ErrChartNotFound) {
					// A chart removed from the song database must not
					// hide the rest of the set; stored fields stand.
					continue
				}
				return nil, err
			}
			cache[recs[i].Chart] = meta
		}
		score, err := scoring.ComputeScore(recs[i].Pure, recs[i].MaxPure, recs[i].Far, meta.Note)
		if err != nil {
			return nil, err
		}
		recs[i].Note = meta.Note
		recs[i].BaseRating = meta.BaseRating
		recs[i].Name = meta.Name
		recs[i].Lost = meta.Note - recs[i].Pure - recs[i].Far
		recs[i].Score = score
	}
	return recs, nil
}
