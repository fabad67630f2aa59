package ratingqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

// QueueName is the River queue rating jobs run on.
const QueueName = "rating"

// maxJobAttempts is 1: a failed sweep or reset is logged and waits for the next tick.
const maxJobAttempts = 1

// Metrics interface (the subset of rating metrics the queue records)
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService interface defines the contract for the rating job scheduler
type QueueService interface {
	// EnqueueDailySweep schedules a sweep of the given civil date to run now
	EnqueueDailySweep(ctx context.Context, date time.Time) error
	// GetScheduledJobs returns recent rating jobs (for debugging)
	GetScheduledJobs(ctx context.Context, limit int) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Options selects which periodic jobs run.
type Options struct {
	Location           *time.Location
	DailySweepEnabled  bool
	SeasonResetEnabled bool
}

// InsertOpts applies to every daily sweep job. One sweep per date, ever.
func (DailySweepJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: maxJobAttempts,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	}
}

// InsertOpts applies to every season reset job. One reset per month, ever.
func (SeasonResetJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: maxJobAttempts,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	}
}

// Service handles scheduled rating jobs using River
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics Metrics
	loc     *time.Location
	catchUp bool
}

// periodicJobs builds the enabled periodic jobs.
func periodicJobs(opts Options) []*river.PeriodicJob {
	loc := opts.Location
	var jobs []*river.PeriodicJob
	if opts.DailySweepEnabled {
		jobs = append(jobs, river.NewPeriodicJob(
			midnightSchedule{loc: loc},
			func() (river.JobArgs, *river.InsertOpts) {
				return dailySweepArgs(time.Now(), loc), nil
			},
			nil,
		))
	}
	if opts.SeasonResetEnabled {
		jobs = append(jobs, river.NewPeriodicJob(
			monthStartSchedule{loc: loc},
			func() (river.JobArgs, *river.InsertOpts) {
				return seasonResetArgs(time.Now(), loc), nil
			},
			nil,
		))
	}
	return jobs
}

// NewService creates a new River-based queue service for rating jobs
func NewService(
	ctx context.Context,
	bunDB *bun.DB,
	logger *slog.Logger,
	dsn string,
	metrics Metrics,
	publisher message.Publisher,
	ratingService ratingservice.Service,
	opts Options,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_rating_queue_service"),
		attr.String("component", "river_queue"),
	)
	if opts.Location == nil {
		opts.Location = ratingService.Location()
	}

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing rating queue service",
		attr.String("timezone", opts.Location.String()),
		attr.Bool("daily_sweep", opts.DailySweepEnabled),
		attr.Bool("season_reset", opts.SeasonResetEnabled),
	)

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewDailySweepWorker(ratingService, publisher, ctxLogger))
	river.AddWorker(workers, NewSeasonResetWorker(ratingService, publisher, ctxLogger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			// Sweeps and resets rewrite every runner; never run two at once.
			QueueName: {MaxWorkers: 1},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs(opts),
		Logger:       logger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
		loc:     opts.Location,
		catchUp: opts.DailySweepEnabled,
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Rating queue service initialized successfully")
	return service, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting rating queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", time.Since(start))

	// Sweep the last finished day in case the process was down at midnight.
	if s.catchUp {
		if err := s.EnqueueDailySweep(ctx, previousDay(time.Now(), s.loc)); err != nil {
			s.logger.Warn("Catch-up sweep not enqueued", attr.Error(err))
		}
	}

	s.logger.Info("Rating queue service started successfully")
	return nil
}

// Stop stops the River queue service and closes its pool
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping rating queue service")

	err := s.client.Stop(ctx)
	s.pool.Close()
	if err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", time.Since(start))

	s.logger.Info("Rating queue service stopped successfully")
	return nil
}

// EnqueueDailySweep schedules a sweep of date. A date that was already swept is skipped.
func (s *Service) EnqueueDailySweep(ctx context.Context, date time.Time) error {
	day := date.In(s.loc).Format(time.DateOnly)
	s.metrics.RecordOperationAttempt(ctx, "enqueue_daily_sweep", "river")

	res, err := s.client.Insert(ctx, DailySweepJob{Date: day}, nil)
	if err != nil {
		s.logger.Error("Failed to enqueue daily sweep", attr.String("date", day), attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_daily_sweep", "river")
		return fmt.Errorf("failed to enqueue daily sweep: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_daily_sweep", "river")
	s.logger.Info("Daily sweep enqueued",
		attr.String("date", day),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// GetScheduledJobs returns the most recent rating jobs (for debugging)
func (s *Service) GetScheduledJobs(ctx context.Context, limit int) ([]JobInfo, error) {
	type RiverJobRow struct {
		ID          int64      `bun:"id"`
		Kind        string     `bun:"kind"`
		State       string     `bun:"state"`
		ScheduledAt *time.Time `bun:"scheduled_at"`
		Attempt     int16      `bun:"attempt"`
		MaxAttempts int16      `bun:"max_attempts"`
	}

	var jobs []RiverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "attempt", "max_attempts").
		Where("kind IN (?, ?)", DailySweepJob{}.Kind(), SeasonResetJob{}.Kind()).
		Order("id DESC").
		Limit(limit).
		Scan(ctx, &jobs)
	if err != nil {
		s.logger.Error("Failed to query rating jobs", attr.Error(err))
		return nil, fmt.Errorf("failed to query rating jobs: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		result[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			State:       job.State,
			ScheduledAt: scheduledAt,
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return result, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
