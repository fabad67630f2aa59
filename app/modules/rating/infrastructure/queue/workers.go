package ratingqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratinghandlers "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/handlers"
	"github.com/Black-And-White-Club/runrank-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// publishResults sends handler results to the topic each one names.
func publishResults(ctx context.Context, pub message.Publisher, out []handlerwrapper.Result) error {
	for _, r := range out {
		msg, err := handlerwrapper.NewMessage(ctx, r)
		if err != nil {
			return err
		}
		if err := pub.Publish(r.Topic, msg); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", r.Topic, err)
		}
	}
	return nil
}

// jobContext tags a job run with a fresh correlation id.
func jobContext(ctx context.Context) context.Context {
	return attr.WithCorrelationID(ctx, watermill.NewUUID())
}

// DailySweepWorker runs the end-of-day penalty sweep and announces day.ended.
type DailySweepWorker struct {
	river.WorkerDefaults[DailySweepJob]
	service   ratingservice.Service
	publisher message.Publisher
	logger    *slog.Logger
}

// NewDailySweepWorker creates a DailySweepWorker.
func NewDailySweepWorker(service ratingservice.Service, publisher message.Publisher, logger *slog.Logger) *DailySweepWorker {
	return &DailySweepWorker{service: service, publisher: publisher, logger: logger}
}

// Work penalizes every runner who missed the job's date.
func (w *DailySweepWorker) Work(ctx context.Context, job *river.Job[DailySweepJob]) error {
	ctx = jobContext(ctx)

	day, err := time.ParseInLocation(time.DateOnly, job.Args.Date, w.service.Location())
	if err != nil {
		// A malformed date will never parse; cancel instead of retrying.
		return river.JobCancel(fmt.Errorf("invalid sweep date %q: %w", job.Args.Date, err))
	}

	w.logger.InfoContext(ctx, "Running daily sweep",
		attr.ExtractCorrelationID(ctx),
		attr.String("date", job.Args.Date),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)

	result, err := w.service.ApplyDailyPenalties(ctx, day)
	if err != nil {
		return fmt.Errorf("daily sweep for %s: %w", job.Args.Date, err)
	}
	if result.IsFailure() {
		if errors.Is(*result.Failure, ratingservice.ErrDayAlreadySwept) {
			w.logger.InfoContext(ctx, "Daily sweep already applied",
				attr.ExtractCorrelationID(ctx),
				attr.String("date", job.Args.Date),
			)
			return nil
		}
		return river.JobCancel(fmt.Errorf("daily sweep for %s: %w", job.Args.Date, *result.Failure))
	}

	sweep := *result.Success
	w.logger.InfoContext(ctx, "Daily sweep completed",
		attr.ExtractCorrelationID(ctx),
		attr.String("date", job.Args.Date),
		attr.Int("missed", sweep.Missed),
		attr.Int("penalized", len(sweep.Penalized)),
	)

	// The sweep is committed; retrying the job would penalize twice.
	if err := publishResults(ctx, w.publisher, ratinghandlers.DaySweepResults(result)); err != nil {
		w.logger.ErrorContext(ctx, "Failed to announce day end",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}
	return nil
}

// SeasonResetWorker ends the season and announces season.ended.
type SeasonResetWorker struct {
	river.WorkerDefaults[SeasonResetJob]
	service   ratingservice.Service
	publisher message.Publisher
	logger    *slog.Logger
}

// NewSeasonResetWorker creates a SeasonResetWorker.
func NewSeasonResetWorker(service ratingservice.Service, publisher message.Publisher, logger *slog.Logger) *SeasonResetWorker {
	return &SeasonResetWorker{service: service, publisher: publisher, logger: logger}
}

// Work archives the standings and zeroes every runner's RR.
func (w *SeasonResetWorker) Work(ctx context.Context, job *river.Job[SeasonResetJob]) error {
	ctx = jobContext(ctx)

	w.logger.InfoContext(ctx, "Running season reset",
		attr.ExtractCorrelationID(ctx),
		attr.String("month", job.Args.Month),
		attr.Int64("job_id", job.ID),
	)

	result, err := w.service.ResetSeason(ctx)
	if err != nil {
		return fmt.Errorf("season reset for %s: %w", job.Args.Month, err)
	}
	if result.IsFailure() {
		return river.JobCancel(fmt.Errorf("season reset for %s: %w", job.Args.Month, *result.Failure))
	}

	season := *result.Success
	w.logger.InfoContext(ctx, "Season reset completed",
		attr.ExtractCorrelationID(ctx),
		attr.String("season_id", season.SeasonID.String()),
		attr.Int("runners_reset", season.RunnersReset),
	)

	if err := publishResults(ctx, w.publisher, ratinghandlers.SeasonResults(result)); err != nil {
		w.logger.ErrorContext(ctx, "Failed to announce season end",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}
	return nil
}
