//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/runrank-bot/config"
	"github.com/Black-And-White-Club/runrank-bot/integration_tests/containers"
	"github.com/Black-And-White-Club/runrank-bot/internal/db/bundb"
	"github.com/Black-And-White-Club/runrank-bot/internal/eventbus"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	DBService     *bundb.DBService
	EventBus      eventbus.EventBus
	Config        *config.Config
}

// NewTestEnvironment starts Postgres and NATS, migrates the schema and
// connects the event bus.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{Ctx: ctx, CancelContext: cancel}

	if err := env.setup(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setup(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		return fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bundb.BunDB(sqlDB)

	if err := runMigrations(ctx, env.DB, pgConnStr); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	env.DBService = bundb.NewTestDBService(env.DB)

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
		Rating: config.RatingConfig{
			Timezone:   config.DefaultTimezone,
			MaxRetries: 1,
		},
	}

	eventBus, err := eventbus.NewNATSEventBus(ctx, eventbus.Config{
		URL:              natsURL,
		QueueGroupPrefix: "runrank-test",
		SubscribersCount: 1,
		AckWaitTimeout:   5 * time.Second,
	}, observability.NoOpLogger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	env.EventBus = eventBus

	return nil
}

// Reset truncates rating tables and pending jobs between tests.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	return CleanupDatabase(ctx, env.DB)
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	var errs []error
	if env.EventBus != nil {
		errs = append(errs, env.EventBus.Close())
	}
	if env.DB != nil {
		errs = append(errs, env.DB.Close())
	}

	terminateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if env.NatsContainer != nil {
		errs = append(errs, env.NatsContainer.Terminate(terminateCtx))
	}
	if env.PgContainer != nil {
		errs = append(errs, env.PgContainer.Terminate(terminateCtx))
	}
	if env.CancelContext != nil {
		env.CancelContext()
	}

	if err := errors.Join(errs...); err != nil {
		log.Printf("Test environment cleanup: %v", err)
	}
}
