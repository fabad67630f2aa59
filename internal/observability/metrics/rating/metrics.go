package ratingmetrics

import (
	"context"
	"time"
)

// RatingMetrics records service, handler and job activity for the rating module.
type RatingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)

	// RecordRatingDelta observes an RR change; source is "run", "penalty", "adjust" or "reset".
	RecordRatingDelta(ctx context.Context, source string, delta int)
	RecordTierChange(ctx context.Context, from, to string)
	SetRunnerCount(ctx context.Context, count int)
}
