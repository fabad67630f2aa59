package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	ratingmetrics "github.com/Black-And-White-Club/runrank-bot/internal/observability/metrics/rating"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Black-And-White-Club/runrank-bot"

// Config is the observability part of the service configuration.
type Config struct {
	Log            LogConfig
	MetricsAddress string
}

// Observability bundles the logger, tracer and metrics handed to every module.
type Observability struct {
	Logger        *slog.Logger
	Tracer        trace.Tracer
	Registry      *prometheus.Registry
	RatingMetrics ratingmetrics.RatingMetrics

	logCloser     io.Closer
	metricsServer *http.Server
}

// Init wires logging, tracing and a Prometheus registry.
func Init(cfg Config) *Observability {
	logger, closer := NewLogger(cfg.Log)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := &Observability{
		Logger:        logger,
		Tracer:        otel.Tracer(instrumentationName),
		Registry:      registry,
		RatingMetrics: ratingmetrics.NewPrometheusMetrics(registry, "runrank"),
		logCloser:     closer,
	}

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", obs.MetricsHandler())
		obs.metricsServer = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return obs
}

// NewNoop returns observability that discards everything. Used by tests.
func NewNoop() *Observability {
	return &Observability{
		Logger:        NoOpLogger,
		Tracer:        otel.Tracer(instrumentationName),
		Registry:      prometheus.NewRegistry(),
		RatingMetrics: &ratingmetrics.NoOpMetrics{},
		logCloser:     nopCloser{},
	}
}

// MetricsHandler exposes the registry in the Prometheus text format.
func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{Registry: o.Registry})
}

// StartMetricsServer serves /metrics on the configured address until Shutdown.
func (o *Observability) StartMetricsServer() {
	if o.metricsServer == nil {
		return
	}
	go func() {
		o.Logger.Info("Starting metrics server", slog.String("address", o.metricsServer.Addr))
		if err := o.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.Logger.Error("Metrics server stopped", slog.String("error", err.Error()))
		}
	}()
}

// Shutdown stops the metrics server and closes the log file.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.metricsServer != nil {
		if err := o.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if o.logCloser != nil {
		if err := o.logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
