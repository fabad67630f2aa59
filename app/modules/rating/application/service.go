package ratingservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	ratingmetrics "github.com/Black-And-White-Club/runrank-bot/internal/observability/metrics/rating"
	"github.com/Black-And-White-Club/runrank-bot/internal/results"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RatingService"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RatingService implements the Service interface.
//
// Locking: a read-modify-write of one runner holds that runner's lock and the
// read side of boardMu. Anything that rewrites leaderboard positions or touches
// many runners at once holds the write side of boardMu.
type RatingService struct {
	repo    ratingdb.Repository
	logger  *slog.Logger
	metrics ratingmetrics.RatingMetrics
	tracer  trace.Tracer
	db      *bun.DB

	clock      Clock
	loc        *time.Location
	dateParser *when.Parser

	runnerLocks *keyedMutex
	boardMu     sync.RWMutex
}

// Option customizes a RatingService.
type Option func(*RatingService)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *RatingService) { s.clock = c }
}

// WithLocation sets the timezone that defines a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *RatingService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewRatingService creates a new RatingService. db may be nil, in which case
// operations run without a transaction (tests).
func NewRatingService(
	repo ratingdb.Repository,
	logger *slog.Logger,
	metrics ratingmetrics.RatingMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *RatingService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &ratingmetrics.NoOpMetrics{}
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	s := &RatingService{
		repo:        repo,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		db:          db,
		clock:       realClock{},
		loc:         time.UTC,
		dateParser:  parser,
		runnerLocks: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the timezone that defines a calendar day.
func (s *RatingService) Location() *time.Location {
	return s.loc
}

// Today returns the current civil date.
func (s *RatingService) Today() time.Time {
	return civilDate(s.clock.Now(), s.loc)
}

// ListTiers returns the tier table.
func (s *RatingService) ListTiers() []ratingdomain.TierInfo {
	return ratingdomain.Tiers()
}

// civilDate returns midnight UTC of t's calendar date in loc.
// Dates are stored in a DATE column, so only the y/m/d survive.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate resolves an admin date expression relative to now.
func (s *RatingService) parseDate(expr string) (time.Time, error) {
	now := s.clock.Now().In(s.loc)
	if expr == "" {
		return civilDate(now, s.loc), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, expr, s.loc); err == nil {
		return civilDate(t, s.loc), nil
	}

	r, err := s.dateParser.Parse(expr, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, expr)
	}
	return civilDate(r.Time, s.loc), nil
}

// -----------------------------------------------------------------------------
// Per-runner locking
// -----------------------------------------------------------------------------

type refLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per runner id and forgets it when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[ratingdomain.RunnerID]*refLock
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[ratingdomain.RunnerID]*refLock)}
}

// Lock blocks until id is free and returns the matching unlock.
func (k *keyedMutex) Lock(id ratingdomain.RunnerID) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

// -----------------------------------------------------------------------------
// Runner updates
// -----------------------------------------------------------------------------

// updateFunc inspects the stored runner and returns the fields to write.
// Returning an error aborts the update.
type updateFunc func(r *ratingdb.Runner) (*ratingdb.RunnerUpdateFields, error)

// applyUpdate reads a runner, asks apply for the change and writes it guarded by
// the version column. A lost race is retried once against a fresh read.
func (s *RatingService) applyUpdate(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID, apply updateFunc) (before, after *ratingdb.Runner, err error) {
	for attempt := 0; attempt < 2; attempt++ {
		before, err = s.repo.GetRunner(ctx, db, userID)
		if err != nil {
			if errors.Is(err, ratingdb.ErrNotFound) {
				return nil, nil, ErrRunnerNotFound
			}
			return nil, nil, fmt.Errorf("failed to get runner: %w", err)
		}

		fields, err := apply(before)
		if err != nil {
			return nil, nil, err
		}

		after, err = s.repo.UpdateRunner(ctx, db, userID, before.Version, fields)
		if err == nil {
			return before, after, nil
		}
		if !errors.Is(err, ratingdb.ErrNoRowsAffected) {
			return nil, nil, fmt.Errorf("failed to update runner: %w", err)
		}

		s.logger.WarnContext(ctx, "Runner version conflict",
			attr.ExtractCorrelationID(ctx),
			attr.RunnerID(userID),
			attr.Int64("version", before.Version),
			attr.Int("attempt", attempt+1),
		)
	}
	return nil, nil, ErrConcurrentModification
}

// recomputeTx rewrites every leaderboard position. Callers hold boardMu for writing.
func (s *RatingService) recomputeTx(ctx context.Context, db bun.IDB) (map[ratingdomain.RunnerID]int, error) {
	runners, err := s.repo.GetAllRunnersOrderedByRatingPoints(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to load runners: %w", err)
	}

	entries := make([]ratingdomain.RankEntry, len(runners))
	for i, r := range runners {
		entries[i] = ratingdomain.RankEntry{ID: r.UserID, RatingPoints: r.RatingPoints}
	}

	positions, err := ratingdomain.Recompute(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to rank runners: %w", err)
	}

	if err := s.repo.UpdateLeaderboardPositions(ctx, db, positions); err != nil {
		return nil, fmt.Errorf("failed to store leaderboard positions: %w", err)
	}

	s.metrics.SetRunnerCount(ctx, len(runners))
	return positions, nil
}

// recomputeAfterUpdate rewrites the leaderboard after a committed runner change
// and returns the runner's new position. Positions are always rebuilt from
// committed RR, so a failed rewrite is repaired by the next one; the failure is
// logged and the previous position is kept.
func (s *RatingService) recomputeAfterUpdate(ctx context.Context, userID ratingdomain.RunnerID, previous int) int {
	s.boardMu.Lock()
	defer s.boardMu.Unlock()

	var positions map[ratingdomain.RunnerID]int
	err := s.inTx(ctx, func(ctx context.Context, db bun.IDB) error {
		var err error
		positions, err = s.recomputeTx(ctx, db)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Leaderboard recompute failed",
			attr.ExtractCorrelationID(ctx),
			attr.RunnerID(userID),
			attr.Error(err),
		)
		return previous
	}
	return positions[userID]
}

func (s *RatingService) recordTierChange(ctx context.Context, from, to ratingdomain.TierInfo) {
	if from.Tier != to.Tier {
		s.metrics.RecordTierChange(ctx, from.Name, to.Name)
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RatingService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	// Infrastructure error
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	// Domain failure
	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		return result, nil
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
// A failure result does not roll back; logic functions write nothing before deciding to fail.
func runInTx[S any, F any](
	s *RatingService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// inTx runs fn in a transaction when a database is configured.
func (s *RatingService) inTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// success builds a success result.
func success[S any](v S) results.OperationResult[S, error] {
	return results.SuccessResult[S, error](v)
}

// failure builds a domain failure result.
func failure[S any](err error) results.OperationResult[S, error] {
	return results.FailureResult[S, error](err)
}

// isDomainFailure reports whether err is a business outcome rather than an infrastructure error.
func isDomainFailure(err error) bool {
	return errors.Is(err, ErrRunnerNotFound) ||
		errors.Is(err, ErrRunnerAlreadyExists) ||
		errors.Is(err, ErrAlreadyLoggedToday) ||
		errors.Is(err, ErrInvalidDistance) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrDayAlreadySwept) ||
		errors.Is(err, ratingdomain.ErrInvalidInput)
}
