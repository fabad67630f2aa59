package ratingmigrations

import (
	"context"
	"fmt"

	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rating_day_sweeps table...")

		if _, err := db.NewCreateTable().Model((*ratingdb.SweptDay)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create rating_day_sweeps table: %w", err)
		}

		fmt.Println("rating_day_sweeps table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rating_day_sweeps table...")

		if _, err := db.NewDropTable().Model((*ratingdb.SweptDay)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop rating_day_sweeps table: %w", err)
		}

		fmt.Println("rating_day_sweeps table dropped successfully!")
		return nil
	})
}
