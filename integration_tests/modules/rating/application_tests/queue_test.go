//go:build integration

package ratingintegrationtests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	ratingqueue "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/queue"
	"github.com/Black-And-White-Club/runrank-bot/internal/eventbus"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability"
	ratingmetrics "github.com/Black-And-White-Club/runrank-bot/internal/observability/metrics/rating"
)

func TestQueue_DailySweepRunsOncePerDate(t *testing.T) {
	deps := SetupTestRatingService(t)
	env := GetTestEnv(t)
	ctx, cancel := context.WithTimeout(deps.Ctx, 30*time.Second)
	defer cancel()

	runners, err := deps.Gen.InsertRunners(ctx, deps.BunDB, 520)
	if err != nil {
		t.Fatalf("InsertRunners: %v", err)
	}

	bus := eventbus.NewInMemoryEventBus(observability.NoOpLogger)
	defer bus.Close()
	dayEnded, err := bus.Subscribe(ctx, ratingevents.DayEndedV1)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	queue, err := ratingqueue.NewService(ctx, deps.BunDB, observability.NoOpLogger, env.Config.Postgres.DSN,
		&ratingmetrics.NoOpMetrics{}, bus, deps.Service, ratingqueue.Options{Location: deps.Loc})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	day := deps.Service.Today().AddDate(0, 0, -1)
	for range 2 {
		if err := queue.EnqueueDailySweep(ctx, day); err != nil {
			t.Fatalf("EnqueueDailySweep: %v", err)
		}
	}

	jobs, err := queue.GetScheduledJobs(ctx, 10)
	if err != nil {
		t.Fatalf("GetScheduledJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected one sweep job for %s, got %+v", day.Format(time.DateOnly), jobs)
	}

	if err := queue.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		if err := queue.Stop(context.Background()); err != nil {
			t.Errorf("Stop: %v", err)
		}
	}()

	select {
	case msg := <-dayEnded:
		msg.Ack()
		var payload ratingevents.DayEndedPayloadV1
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			t.Fatalf("decode day.ended: %v", err)
		}
		if payload.Date != day.Format(time.DateOnly) {
			t.Errorf("expected day.ended for %s, got %s", day.Format(time.DateOnly), payload.Date)
		}
		if len(payload.Penalties) != 1 {
			t.Errorf("expected one penalty, got %+v", payload.Penalties)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for day.ended")
	}

	stored, err := deps.Repo.GetRunner(ctx, deps.BunDB, runners[0].UserID)
	if err != nil {
		t.Fatalf("GetRunner: %v", err)
	}
	// Master loses 12 RR for a missed day.
	if stored.RatingPoints != 508 {
		t.Errorf("expected 508 RR after one sweep, got %d", stored.RatingPoints)
	}
}
