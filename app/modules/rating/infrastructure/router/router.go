package ratingrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	ratinghandlers "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/handlers"
	"github.com/Black-And-White-Club/runrank-bot/internal/eventbus"
	"github.com/Black-And-White-Club/runrank-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/tracing"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// RatingRouter handles Watermill handler registration for rating events.
type RatingRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     eventbus.EventBus
	publisher      eventbus.EventBus
	tracer         trace.Tracer
	metrics        handlerwrapper.Metrics
	metricsBuilder *metrics.PrometheusMetricsBuilder
	maxRetries     int
}

// NewRatingRouter creates a new RatingRouter. A nil registry, or APP_ENV=test,
// leaves the watermill router metrics off.
func NewRatingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	handlerMetrics handlerwrapper.Metrics,
	prometheusRegistry *prometheus.Registry,
	maxRetries int,
) *RatingRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	return &RatingRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metrics:        handlerMetrics,
		metricsBuilder: metricsBuilder,
		maxRetries:     maxRetries,
	}
}

// Configure ensures the stream exists, adds middleware and registers every handler.
func (r *RatingRouter) Configure(ctx context.Context, handlers ratinghandlers.Handlers) error {
	if err := r.subscriber.CreateStream(ctx, ratingevents.StreamName, ratingevents.StreamSubjects...); err != nil {
		return fmt.Errorf("failed to create %s stream: %w", ratingevents.StreamName, err)
	}

	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - either in test environment or metrics not configured")
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: r.maxRetries}.Middleware,
		tracing.TraceHandler(r.tracer),
	)

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

// registerHandlers wires NATS topics to handler methods.
func (r *RatingRouter) registerHandlers(handlers ratinghandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, ratingevents.RunnerSignupRequestedV1, handlers.HandleRunnerSignupRequested)
	registerHandler(deps, ratingevents.RunLogRequestedV1, handlers.HandleRunLogRequested)
	registerHandler(deps, ratingevents.ProfileRequestedV1, handlers.HandleProfileRequested)
	registerHandler(deps, ratingevents.LeaderboardRequestedV1, handlers.HandleLeaderboardRequested)
	registerHandler(deps, ratingevents.TiersRequestedV1, handlers.HandleTiersRequested)

	registerHandler(deps, ratingevents.AdminRunForceLogRequestedV1, handlers.HandleAdminForceLogRequested)
	registerHandler(deps, ratingevents.AdminRatingAdjustRequestedV1, handlers.HandleAdminRatingAdjustRequested)
	registerHandler(deps, ratingevents.AdminStreakSetRequestedV1, handlers.HandleAdminStreakSetRequested)
	registerHandler(deps, ratingevents.AdminRunnerDeleteRequestedV1, handlers.HandleAdminRunnerDeleteRequested)
	registerHandler(deps, ratingevents.AdminLeaderboardRecomputeV1, handlers.HandleAdminLeaderboardRecompute)
	registerHandler(deps, ratingevents.AdminDaySweepRequestedV1, handlers.HandleAdminDaySweepRequested)
	registerHandler(deps, ratingevents.AdminSeasonResetRequestedV1, handlers.HandleAdminSeasonResetRequested)

	r.logger.Info("Rating module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
// The empty publish topic lets the event bus route each result by its topic metadata.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "rating." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *RatingRouter) Close() error {
	return r.Router.Close()
}
