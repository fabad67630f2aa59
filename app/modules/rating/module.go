package rating

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratinghandlers "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/handlers"
	ratinghttp "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/httpapi"
	ratingqueue "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/queue"
	ratingrouter "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/router"
	"github.com/Black-And-White-Club/runrank-bot/config"
	"github.com/Black-And-White-Club/runrank-bot/internal/db/bundb"
	"github.com/Black-And-White-Club/runrank-bot/internal/eventbus"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Module represents the rating module.
type Module struct {
	RatingService ratingservice.Service
	RatingRouter  *ratingrouter.RatingRouter
	QueueService  ratingqueue.QueueService
	httpHandlers  *ratinghttp.Handlers
	limiter       *ratinghttp.IPRateLimiter
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewRatingModule creates and initializes the rating module.
func NewRatingModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	db *bundb.DBService,
	routerCtx context.Context,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "rating.NewRatingModule initializing")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// 1. Initialize Service
	service := ratingservice.NewRatingService(
		db.RatingDB,
		logger,
		obs.RatingMetrics,
		tracer,
		db.GetDB(),
		ratingservice.WithLocation(loc),
	)

	// 2. Initialize Handlers
	handlers := ratinghandlers.NewRatingHandlers(service, logger, tracer)

	// 3. Initialize Router
	ratingRouter := ratingrouter.NewRatingRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		obs.RatingMetrics,
		obs.Registry,
		cfg.Rating.MaxRetries,
	)

	// 4. Configure the router with handlers
	if err := ratingRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure rating router: %w", err)
	}

	// 5. Initialize the job scheduler
	queueService, err := ratingqueue.NewService(
		ctx,
		db.GetDB(),
		logger,
		cfg.Postgres.DSN,
		obs.RatingMetrics,
		eventBus,
		service,
		ratingqueue.Options{
			Location:           loc,
			DailySweepEnabled:  cfg.Rating.DailySweepEnabled,
			SeasonResetEnabled: cfg.Rating.SeasonResetEnabled,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rating queue service: %w", err)
	}

	var limiter *ratinghttp.IPRateLimiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = ratinghttp.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
	}

	return &Module{
		RatingService: service,
		RatingRouter:  ratingRouter,
		QueueService:  queueService,
		httpHandlers:  ratinghttp.NewHandlers(service, logger, tracer),
		limiter:       limiter,
		observability: obs,
	}, nil
}

// RegisterHTTP mounts the read API on the given router.
func (m *Module) RegisterHTTP(r chi.Router) {
	ratinghttp.Mount(r, m.httpHandlers, m.limiter)
}

// Run starts the rating module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting rating module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.QueueService.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to start rating queue", attr.Error(err))
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Rating module goroutine stopped")
}

// Close shuts down the rating module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping rating module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var errs []error
	if m.QueueService != nil {
		if err := m.QueueService.Stop(context.Background()); err != nil {
			logger.Error("Error stopping rating queue", attr.Error(err))
			errs = append(errs, fmt.Errorf("error stopping rating queue: %w", err))
		}
	}

	if m.RatingRouter != nil {
		if err := m.RatingRouter.Close(); err != nil {
			logger.Error("Error closing RatingRouter from module", attr.Error(err))
			errs = append(errs, fmt.Errorf("error closing RatingRouter: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	logger.Info("Rating module stopped")
	return nil
}
