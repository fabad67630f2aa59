package ratingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating runners table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS runners (
				id BIGSERIAL PRIMARY KEY,
				user_id TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL DEFAULT '',
				longest_streak INTEGER NOT NULL DEFAULT 0 CHECK (longest_streak >= 0),
				last_logged_date DATE,
				rating_points INTEGER NOT NULL DEFAULT 0 CHECK (rating_points >= 0),
				leaderboard_position INTEGER NOT NULL DEFAULT 0 CHECK (leaderboard_position >= 0),
				runs_logged INTEGER NOT NULL DEFAULT 0,
				total_distance DOUBLE PRECISION NOT NULL DEFAULT 0,
				version BIGINT NOT NULL DEFAULT 1,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create runners table: %w", err)
		}

		_, err = db.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS idx_runners_rating_points ON runners (rating_points DESC, user_id ASC);
			CREATE INDEX IF NOT EXISTS idx_runners_last_logged_date ON runners (last_logged_date);
		`)
		if err != nil {
			return fmt.Errorf("failed to create runners indexes: %w", err)
		}

		fmt.Println("Runners table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping runners table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS runners;`); err != nil {
			return fmt.Errorf("failed to drop runners table: %w", err)
		}

		fmt.Println("Runners table dropped successfully!")
		return nil
	})
}
