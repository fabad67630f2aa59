//go:build integration

package ratingintegrationtests

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/integration_tests/testutils"
	ratingmetrics "github.com/Black-And-White-Club/runrank-bot/internal/observability/metrics/rating"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

// Global variables for the test environment, initialized once.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// TestDeps holds dependencies needed by individual tests.
type TestDeps struct {
	Ctx     context.Context
	Repo    ratingdb.Repository
	BunDB   *bun.DB
	Service *ratingservice.RatingService
	Gen     *testutils.TestDataGenerator
	Loc     *time.Location
	Now     time.Time
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing rating test environment...")
		testEnv, testEnvErr = testutils.NewTestEnvironment()
	})

	if testEnvErr != nil {
		t.Fatalf("Rating test environment initialization failed: %v", testEnvErr)
	}
	return testEnv
}

// SetupTestRatingService returns a service on a clean database whose clock
// reads 2026-03-10 12:00 in the configured timezone.
func SetupTestRatingService(t *testing.T) TestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resetCancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	loc, err := env.Config.Location()
	if err != nil {
		t.Fatalf("Failed to load timezone: %v", err)
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, loc)

	testLogger := slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	service := ratingservice.NewRatingService(
		env.DBService.RatingDB,
		testLogger,
		&ratingmetrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test_rating_service"),
		env.DB,
		ratingservice.WithLocation(loc),
		ratingservice.WithClock(fixedClock{t: now}),
	)

	return TestDeps{
		Ctx:     env.Ctx,
		Repo:    env.DBService.RatingDB,
		BunDB:   env.DB,
		Service: service,
		Gen:     testutils.NewTestDataGenerator(uint64(len(t.Name()))),
		Loc:     loc,
		Now:     now,
	}
}

// testWriter wraps a testing.T to implement io.Writer for slog
type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (n int, err error) {
	tw.t.Log(string(p))
	return len(p), nil
}
