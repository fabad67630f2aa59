package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
)

const shutdownTimeout = 15 * time.Second

// WaitForShutdown waits for a shutdown signal or ctx cancellation, then stops
// everything in reverse start order.
func (a *App) WaitForShutdown(ctx context.Context) {
	logger := a.Observability.Logger

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	logger.Info("Waiting for shutdown signal")
	select {
	case sig := <-interrupt:
		logger.Info("Shutting down application", attr.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Application context cancelled")
	}

	if err := a.Close(); err != nil {
		logger.Error("Shutdown finished with errors", attr.Error(err))
	}
}

// Close stops the HTTP server, the rating module, the event bus and the database.
func (a *App) Close() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.RatingModule != nil {
		if err := a.RatingModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.wg.Wait()
	if a.EventBus != nil {
		if err := a.EventBus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Observability.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
