//go:build integration

package ratinghandlerintegrationtests

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratinghandlers "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/handlers"
	ratingrouter "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/router"
	"github.com/Black-And-White-Club/runrank-bot/integration_tests/testutils"
	"github.com/Black-And-White-Club/runrank-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	ratingmetrics "github.com/Black-And-White-Club/runrank-bot/internal/observability/metrics/rating"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error

	routerOnce sync.Once
	routerErr  error
)

// HandlerTestDeps exposes the running router's bus and storage to tests.
type HandlerTestDeps struct {
	Env     *testutils.TestEnvironment
	Ctx     context.Context
	Service ratingservice.Service
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()
	testEnvOnce.Do(func() {
		testEnv, testEnvErr = testutils.NewTestEnvironment()
	})
	if testEnvErr != nil {
		t.Fatalf("Rating handler test environment initialization failed: %v", testEnvErr)
	}
	return testEnv
}

// SetupTestRatingHandlers starts one router for the package on the NATS bus
// and resets the database for the calling test.
func SetupTestRatingHandlers(t *testing.T) HandlerTestDeps {
	t.Helper()
	env := GetTestEnv(t)

	t.Setenv(ratingrouter.TestEnvironmentFlag, ratingrouter.TestEnvironmentValue)

	logger := observability.NoOpLogger
	tracer := noop.NewTracerProvider().Tracer("test_rating_handlers")
	service := ratingservice.NewRatingService(
		env.DBService.RatingDB,
		logger,
		&ratingmetrics.NoOpMetrics{},
		tracer,
		env.DB,
	)

	routerOnce.Do(func() {
		router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
		if err != nil {
			routerErr = err
			return
		}
		rr := ratingrouter.NewRatingRouter(logger, router, env.EventBus, env.EventBus, tracer,
			&ratingmetrics.NoOpMetrics{}, prometheus.NewRegistry(), 1)
		if err := rr.Configure(env.Ctx, ratinghandlers.NewRatingHandlers(service, logger, tracer)); err != nil {
			routerErr = err
			return
		}
		go func() { _ = router.Run(env.Ctx) }()
		select {
		case <-router.Running():
		case <-time.After(15 * time.Second):
			routerErr = context.DeadlineExceeded
		}
	})
	if routerErr != nil {
		t.Fatalf("Failed to start rating router: %v", routerErr)
	}

	ctx, cancel := context.WithTimeout(env.Ctx, 10*time.Second)
	defer cancel()
	if err := env.Reset(ctx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	return HandlerTestDeps{Env: env, Ctx: env.Ctx, Service: service}
}

// Publish sends payload on topic under a fresh correlation id and returns it.
func (d HandlerTestDeps) Publish(t *testing.T, topic string, payload any) string {
	t.Helper()
	correlationID := uuid.NewString()
	ctx := attr.WithCorrelationID(d.Ctx, correlationID)

	msg, err := handlerwrapper.NewMessage(ctx, handlerwrapper.Result{Topic: topic, Payload: payload})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if err := d.Env.EventBus.Publish(topic, msg); err != nil {
		t.Fatalf("Publish %s: %v", topic, err)
	}
	return correlationID
}

// WaitFor returns the first message on topic carrying correlationID, decoded into out.
func (d HandlerTestDeps) WaitFor(t *testing.T, topic, correlationID string, out any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(d.Ctx, 15*time.Second)
	defer cancel()

	msgs, err := d.Env.EventBus.Subscribe(ctx, topic)
	if err != nil {
		t.Fatalf("Subscribe %s: %v", topic, err)
	}
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				t.Fatalf("subscription to %s closed", topic)
			}
			msg.Ack()
			if middleware.MessageCorrelationID(msg) != correlationID {
				continue
			}
			if err := json.Unmarshal(msg.Payload, out); err != nil {
				t.Fatalf("decode %s: %v", topic, err)
			}
			return
		case <-ctx.Done():
			t.Fatalf("timed out waiting for %s (correlation %s)", topic, correlationID)
		}
	}
}
