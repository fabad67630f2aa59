package ratingmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg, "test")
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "LogRun", "RatingService")
	m.RecordOperationSuccess(ctx, "LogRun", "RatingService")
	m.RecordOperationFailure(ctx, "LogRun", "RatingService")
	m.RecordOperationDuration(ctx, "LogRun", "RatingService", 15*time.Millisecond)
	m.RecordHandlerAttempt(ctx, "rating.run.log.requested.v1")
	m.RecordRatingDelta(ctx, "run", 25)
	m.RecordTierChange(ctx, "Bronze", "Silver")
	m.SetRunnerCount(ctx, 7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("LogRun", "RatingService", "attempt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("LogRun", "RatingService", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("LogRun", "RatingService", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handlers.WithLabelValues("rating.run.log.requested.v1", "attempt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tierChanges.WithLabelValues("Bronze", "Silver")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.runners))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_rating_rr_delta")
	assert.Contains(t, names, "test_rating_operation_duration_seconds")
}
