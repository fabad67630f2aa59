package ratingmigrations

import (
	"context"
	"fmt"

	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rating_seasons table...")

		if _, err := db.NewCreateTable().Model((*ratingdb.Season)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create rating_seasons table: %w", err)
		}

		_, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rating_seasons_ended_at ON rating_seasons (ended_at DESC)").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("rating_seasons table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rating_seasons table...")

		if _, err := db.NewDropTable().Model((*ratingdb.Season)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop rating_seasons table: %w", err)
		}

		fmt.Println("rating_seasons table dropped successfully!")
		return nil
	})
}
