//go:build integration

package ratingintegrationtests

import (
	"errors"
	"testing"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	"github.com/Black-And-White-Club/runrank-bot/integration_tests/testutils"
)

func TestApplyDailyPenalties(t *testing.T) {
	deps := SetupTestRatingService(t)
	ctx := deps.Ctx

	runners, err := deps.Gen.InsertRunners(ctx, deps.BunDB, 800, 450, 120)
	if err != nil {
		t.Fatalf("InsertRunners: %v", err)
	}
	top, logged, low := runners[0], runners[1], runners[2]

	day := deps.Service.Today().AddDate(0, 0, -1)
	if err := testutils.MarkLogged(ctx, deps.BunDB, logged.UserID, day); err != nil {
		t.Fatalf("MarkLogged: %v", err)
	}

	result, err := deps.Service.ApplyDailyPenalties(ctx, day)
	if err != nil {
		t.Fatalf("ApplyDailyPenalties returned error: %v", err)
	}
	if result.IsFailure() {
		t.Fatalf("ApplyDailyPenalties failed: %v", *result.Failure)
	}
	sweep := result.Success

	if sweep.Missed != 2 {
		t.Errorf("expected 2 runners to have missed the day, got %d", sweep.Missed)
	}
	// Bronze through Gold carry no penalty, so only the leader loses RR.
	if len(sweep.Penalized) != 1 {
		t.Fatalf("expected 1 penalty, got %+v", sweep.Penalized)
	}
	p := sweep.Penalized[0]
	if p.UserID != top.UserID || p.OldRatingPoints != 800 || p.NewRatingPoints != 778 {
		t.Errorf("unexpected penalty: %+v", p)
	}
	if p.OldTier.Tier != ratingdomain.TierUsainBolt || p.TierChanged() {
		t.Errorf("expected the leader to stay Usain Bolt, got %s -> %s", p.OldTier.Name, p.NewTier.Name)
	}

	for _, r := range []struct {
		id   ratingdomain.RunnerID
		want int
	}{{top.UserID, 778}, {logged.UserID, 450}, {low.UserID, 120}} {
		stored, err := deps.Repo.GetRunner(ctx, deps.BunDB, r.id)
		if err != nil {
			t.Fatalf("GetRunner(%s): %v", r.id, err)
		}
		if stored.RatingPoints != r.want {
			t.Errorf("runner %s: expected %d RR, got %d", r.id, r.want, stored.RatingPoints)
		}
	}
}

func TestApplyDailyPenalties_OncePerDayAndSparesLaterRuns(t *testing.T) {
	deps := SetupTestRatingService(t)
	ctx := deps.Ctx

	runners, err := deps.Gen.InsertRunners(ctx, deps.BunDB, 400, 350)
	if err != nil {
		t.Fatalf("InsertRunners: %v", err)
	}
	late, missed := runners[0], runners[1]

	day := deps.Service.Today().AddDate(0, 0, -1)
	if err := testutils.MarkLogged(ctx, deps.BunDB, late.UserID, deps.Service.Today()); err != nil {
		t.Fatalf("MarkLogged: %v", err)
	}

	first, err := deps.Service.ApplyDailyPenalties(ctx, day)
	if err != nil || first.IsFailure() {
		t.Fatalf("first sweep: err=%v result=%+v", err, first)
	}
	if first.Success.Missed != 1 || len(first.Success.Penalized) != 1 || first.Success.Penalized[0].UserID != missed.UserID {
		t.Fatalf("expected only %s to be penalized, got %+v", missed.UserID, first.Success.Penalized)
	}

	second, err := deps.Service.ApplyDailyPenalties(ctx, day)
	if err != nil {
		t.Fatalf("second sweep returned error: %v", err)
	}
	if !second.IsFailure() || !errors.Is(*second.Failure, ratingservice.ErrDayAlreadySwept) {
		t.Fatalf("expected ErrDayAlreadySwept, got %+v", second)
	}

	for _, r := range []struct {
		id   ratingdomain.RunnerID
		want int
	}{{late.UserID, 400}, {missed.UserID, 345}} {
		stored, err := deps.Repo.GetRunner(ctx, deps.BunDB, r.id)
		if err != nil {
			t.Fatalf("GetRunner(%s): %v", r.id, err)
		}
		if stored.RatingPoints != r.want {
			t.Errorf("runner %s: expected %d RR, got %d", r.id, r.want, stored.RatingPoints)
		}
	}
}

func TestResetSeason(t *testing.T) {
	deps := SetupTestRatingService(t)
	ctx := deps.Ctx

	runners, err := deps.Gen.InsertRunners(ctx, deps.BunDB, 800, 450, 120, 30)
	if err != nil {
		t.Fatalf("InsertRunners: %v", err)
	}

	result, err := deps.Service.ResetSeason(ctx)
	if err != nil {
		t.Fatalf("ResetSeason returned error: %v", err)
	}
	if result.IsFailure() {
		t.Fatalf("ResetSeason failed: %v", *result.Failure)
	}
	summary := result.Success

	if summary.RunnersReset != len(runners) {
		t.Errorf("expected %d runners reset, got %d", len(runners), summary.RunnersReset)
	}
	if len(summary.Winners) != 3 {
		t.Fatalf("expected 3 winners, got %d", len(summary.Winners))
	}
	if summary.Winners[0].UserID != runners[0].UserID || summary.Winners[0].Tier != "Usain Bolt" {
		t.Errorf("unexpected champion: %+v", summary.Winners[0])
	}

	all, err := deps.Repo.GetAllRunnersOrderedByRatingPoints(ctx, deps.BunDB)
	if err != nil {
		t.Fatalf("GetAllRunnersOrderedByRatingPoints: %v", err)
	}
	for _, r := range all {
		if r.RatingPoints != 0 {
			t.Errorf("runner %s kept %d RR after reset", r.UserID, r.RatingPoints)
		}
	}

	seasons, err := deps.Service.ListSeasons(ctx, 5)
	if err != nil {
		t.Fatalf("ListSeasons: %v", err)
	}
	if len(seasons) != 1 || seasons[0].ID != summary.SeasonID {
		t.Fatalf("expected the archived season %s, got %+v", summary.SeasonID, seasons)
	}
	if len(seasons[0].Standings) != len(runners) {
		t.Errorf("expected %d archived standings, got %d", len(runners), len(seasons[0].Standings))
	}
}
