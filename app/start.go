package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
)

// Start runs the router, the rating module and the HTTP server, then blocks
// until ctx is cancelled or a shutdown signal arrives.
func (a *App) Start(ctx context.Context) error {
	logger := a.Observability.Logger

	a.Observability.StartMetricsServer()

	a.wg.Add(1)
	go a.RatingModule.Run(ctx, &a.wg)

	routerErr := make(chan error, 1)
	go func() {
		if err := a.Router.Run(ctx); err != nil {
			routerErr <- err
		}
	}()

	select {
	case <-a.Router.Running():
		logger.InfoContext(ctx, "Watermill router running")
	case err := <-routerErr:
		return fmt.Errorf("watermill router failed to start: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}

	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", attr.String("address", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP server stopped", attr.Error(err))
		}
	}()

	a.WaitForShutdown(ctx)
	return nil
}
