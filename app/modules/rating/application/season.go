package ratingservice

import (
	"context"
	"fmt"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResetSeason archives the final standings, sets every runner's RR to 0 and
// rewrites the leaderboard. Streaks and run history are kept.
func (s *RatingService) ResetSeason(ctx context.Context) (SeasonResult, error) {
	seasonID := uuid.New()

	return withTelemetry(s, ctx, "ResetSeason", seasonID.String(), func(ctx context.Context) (SeasonResult, error) {
		s.boardMu.Lock()
		defer s.boardMu.Unlock()

		result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (SeasonResult, error) {
			return s.resetSeasonLogic(ctx, db, seasonID)
		})
		if err != nil || result.IsFailure() {
			return result, err
		}

		summary := *result.Success
		for _, st := range summary.Standings {
			if st.RatingPoints > 0 {
				s.metrics.RecordRatingDelta(ctx, "reset", -st.RatingPoints)
			}
		}
		s.logger.InfoContext(ctx, "Season reset",
			attr.ExtractCorrelationID(ctx),
			attr.String("season_id", summary.SeasonID.String()),
			attr.Int("runners_reset", summary.RunnersReset),
		)
		return result, nil
	})
}

func (s *RatingService) resetSeasonLogic(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (SeasonResult, error) {
	// Settle positions first so the archive matches current RR.
	if _, err := s.recomputeTx(ctx, db); err != nil {
		return SeasonResult{}, err
	}

	runners, err := s.repo.GetLeaderboard(ctx, db, 0)
	if err != nil {
		return SeasonResult{}, fmt.Errorf("failed to get final standings: %w", err)
	}

	standings := make([]ratingdb.SeasonStanding, 0, len(runners))
	for _, r := range runners {
		tier, err := ratingdomain.ClassifyInfo(r.RatingPoints, r.LeaderboardPosition)
		if err != nil {
			return SeasonResult{}, err
		}
		standings = append(standings, ratingdb.SeasonStanding{
			UserID:       r.UserID,
			DisplayName:  r.DisplayName,
			RatingPoints: r.RatingPoints,
			Position:     r.LeaderboardPosition,
			Tier:         tier.Name,
		})
	}

	endedAt := s.clock.Now().UTC()
	if err := s.repo.SaveSeason(ctx, db, &ratingdb.Season{
		ID:        seasonID,
		EndedAt:   endedAt,
		Standings: standings,
	}); err != nil {
		return SeasonResult{}, fmt.Errorf("failed to archive season: %w", err)
	}

	reset, err := s.repo.ResetAllRatingPoints(ctx, db)
	if err != nil {
		return SeasonResult{}, fmt.Errorf("failed to reset rating points: %w", err)
	}

	if _, err := s.recomputeTx(ctx, db); err != nil {
		return SeasonResult{}, err
	}

	winners := standings[:min(seasonWinnerCount, len(standings))]

	return success(&SeasonSummary{
		SeasonID:     seasonID,
		EndedAt:      endedAt,
		Standings:    standings,
		Winners:      winners,
		RunnersReset: reset,
	}), nil
}
