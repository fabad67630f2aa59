package ratingmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards every observation.
type NoOpMetrics struct{}

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*NoOpMetrics) RecordHandlerAttempt(context.Context, string)                           {}
func (*NoOpMetrics) RecordHandlerSuccess(context.Context, string)                           {}
func (*NoOpMetrics) RecordHandlerFailure(context.Context, string)                           {}
func (*NoOpMetrics) RecordHandlerDuration(context.Context, string, time.Duration)           {}
func (*NoOpMetrics) RecordRatingDelta(context.Context, string, int)                         {}
func (*NoOpMetrics) RecordTierChange(context.Context, string, string)                       {}
func (*NoOpMetrics) SetRunnerCount(context.Context, int)                                    {}

var _ RatingMetrics = (*NoOpMetrics)(nil)
