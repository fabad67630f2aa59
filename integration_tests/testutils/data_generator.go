//go:build integration

package testutils

import (
	"context"
	"fmt"
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
)

// TestDataGenerator builds runner rows for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator. A fixed seed makes runs repeatable.
func NewTestDataGenerator(seed uint64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// RunnerID returns a Discord-style numeric id.
func (g *TestDataGenerator) RunnerID() ratingdomain.RunnerID {
	return ratingdomain.RunnerID(g.faker.Numerify("##################"))
}

// GenerateRunner returns an unsaved runner with the given RR.
func (g *TestDataGenerator) GenerateRunner(ratingPoints int) *ratingdb.Runner {
	return &ratingdb.Runner{
		UserID:       g.RunnerID(),
		DisplayName:  g.faker.Name(),
		RatingPoints: ratingPoints,
	}
}

// InsertRunners saves one runner per RR value, positioned in the given order.
func (g *TestDataGenerator) InsertRunners(ctx context.Context, db *bun.DB, ratingPoints ...int) ([]*ratingdb.Runner, error) {
	runners := make([]*ratingdb.Runner, len(ratingPoints))
	for i, rr := range ratingPoints {
		r := g.GenerateRunner(rr)
		r.LeaderboardPosition = i + 1
		runners[i] = r
	}
	if len(runners) == 0 {
		return runners, nil
	}
	if _, err := db.NewInsert().Model(&runners).ExcludeColumn("id").Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert runners: %w", err)
	}
	return runners, nil
}

// MarkLogged sets a runner's last logged date directly.
func MarkLogged(ctx context.Context, db *bun.DB, id ratingdomain.RunnerID, day time.Time) error {
	_, err := db.NewUpdate().
		Model((*ratingdb.Runner)(nil)).
		Set("last_logged_date = ?::date", day.Format(time.DateOnly)).
		Where("user_id = ?", id).
		Exec(ctx)
	return err
}
