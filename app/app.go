package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/runrank-bot/app/modules/rating"
	"github.com/Black-And-White-Club/runrank-bot/config"
	"github.com/Black-And-White-Club/runrank-bot/internal/db/bundb"
	"github.com/Black-And-White-Club/runrank-bot/internal/eventbus"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App holds everything the service runs: storage, the event bus, the
// watermill router, the HTTP server and the rating module.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	Router        *message.Router
	RatingModule  *rating.Module
	httpServer    *http.Server
	wg            sync.WaitGroup
}

// NewApp connects to Postgres and NATS and builds the rating module.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger

	db, err := bundb.NewBunDBService(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	eventBus, err := eventbus.NewNATSEventBus(ctx, eventbus.Config{
		URL:              cfg.NATS.URL,
		QueueGroupPrefix: "runrank",
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		eventBus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	ratingModule, err := rating.NewRatingModule(ctx, cfg, obs, eventBus, router, db, ctx)
	if err != nil {
		eventBus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize rating module: %w", err)
	}

	a := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      eventBus,
		Router:        router,
		RatingModule:  ratingModule,
	}
	a.httpServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           a.httpHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.InfoContext(ctx, "Application initialized",
		attr.String("http_address", cfg.HTTP.Address),
		attr.String("timezone", cfg.Rating.Timezone),
	)
	return a, nil
}

func (a *App) httpHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", a.Observability.MetricsHandler())
	a.RatingModule.RegisterHTTP(r)
	return r
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.DB.GetDB().PingContext(ctx); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := a.RatingModule.QueueService.HealthCheck(ctx); err != nil {
		http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
