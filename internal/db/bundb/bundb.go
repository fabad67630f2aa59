package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService owns the database handle and the repositories built on it.
// It is opened once in main and closed on shutdown.
type DBService struct {
	RatingDB ratingdb.Repository
	db       *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close closes the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService connects to Postgres and builds the repositories.
func NewBunDBService(ctx context.Context, dsn string, logger *slog.Logger) (*DBService, error) {
	sqldb, err := pgConn(ctx, dsn)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to PostgreSQL", attr.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := BunDB(sqldb)
	logger.InfoContext(ctx, "Database connection established")

	return newDBService(db), nil
}

// NewTestDBService wraps an already-open handle. Used by integration tests.
func NewTestDBService(db *bun.DB) *DBService {
	return newDBService(db)
}

func newDBService(db *bun.DB) *DBService {
	db.RegisterModel((*ratingdb.Runner)(nil), (*ratingdb.Season)(nil), (*ratingdb.SweptDay)(nil))
	return &DBService{
		RatingDB: ratingdb.NewRepository(db),
		db:       db,
	}
}

// BunDB returns a new bun.DB for given sql.DB connection pool.
func BunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
