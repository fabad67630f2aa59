package ratinghandlers

import (
	"context"
	"fmt"
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/runrank-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
)

// Admin operation names carried in admin result payloads.
const (
	OpForceLog      = "force_log"
	OpRatingAdjust  = "rating_adjust"
	OpStreakSet     = "streak_set"
	OpRunnerDelete  = "runner_delete"
	OpRecompute     = "leaderboard_recompute"
	OpDaySweep      = "day_sweep"
	OpSeasonReset   = "season_reset"
	recomputeReason = "admin_recompute"
)

func (h *RatingHandlers) auditAdmin(ctx context.Context, op, requestedBy string) {
	h.logger.InfoContext(ctx, "Admin operation requested",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", op),
		attr.String("requested_by", requestedBy),
	)
}

// HandleAdminForceLogRequested logs a run on behalf of a runner, optionally back-dated.
func (h *RatingHandlers) HandleAdminForceLogRequested(ctx context.Context, payload *ratingevents.AdminForceLogRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleAdminForceLogRequested")
	defer span.End()
	h.auditAdmin(ctx, OpForceLog, payload.RequestedBy)

	result, err := h.service.ForceLogRun(ctx, payload.UserID, payload.Distance, payload.Date)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return adminFailed(OpForceLog, payload.RequestedBy, payload.UserID, result.Failure), nil
	}

	return []handlerwrapper.Result{
		{
			Topic: ratingevents.AdminOperationSucceededV1,
			Payload: &ratingevents.AdminOperationSucceededPayloadV1{
				Operation:   OpForceLog,
				RequestedBy: payload.RequestedBy,
				UserID:      payload.UserID,
			},
		},
		{
			Topic:   ratingevents.RunLoggedV1,
			Payload: RunLoggedPayload(*result.Success, true),
		},
	}, nil
}

// HandleAdminRatingAdjustRequested sets a runner's RR.
func (h *RatingHandlers) HandleAdminRatingAdjustRequested(ctx context.Context, payload *ratingevents.AdminRatingAdjustRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleAdminRatingAdjustRequested")
	defer span.End()
	h.auditAdmin(ctx, OpRatingAdjust, payload.RequestedBy)

	result, err := h.service.AdjustRating(ctx, payload.UserID, payload.RatingPoints)
	if err != nil {
		return nil, err
	}
	return h.profileOutcome(OpRatingAdjust, payload.RequestedBy, payload.UserID, result), nil
}

// HandleAdminStreakSetRequested sets a runner's streak.
func (h *RatingHandlers) HandleAdminStreakSetRequested(ctx context.Context, payload *ratingevents.AdminStreakSetRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleAdminStreakSetRequested")
	defer span.End()
	h.auditAdmin(ctx, OpStreakSet, payload.RequestedBy)

	result, err := h.service.SetStreak(ctx, payload.UserID, payload.Streak)
	if err != nil {
		return nil, err
	}
	return h.profileOutcome(OpStreakSet, payload.RequestedBy, payload.UserID, result), nil
}

func (h *RatingHandlers) profileOutcome(op, requestedBy string, userID ratingdomain.RunnerID, result ratingservice.ProfileResult) []handlerwrapper.Result {
	if result.IsFailure() {
		return adminFailed(op, requestedBy, userID, result.Failure)
	}
	runner := RunnerPayload(*result.Success)
	return single(ratingevents.AdminOperationSucceededV1, &ratingevents.AdminOperationSucceededPayloadV1{
		Operation:   op,
		RequestedBy: requestedBy,
		UserID:      userID,
		Runner:      &runner,
	})
}

// HandleAdminRunnerDeleteRequested removes a runner.
func (h *RatingHandlers) HandleAdminRunnerDeleteRequested(ctx context.Context, payload *ratingevents.AdminRunnerDeleteRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleAdminRunnerDeleteRequested")
	defer span.End()
	h.auditAdmin(ctx, OpRunnerDelete, payload.RequestedBy)

	result, err := h.service.DeleteRunner(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return adminFailed(OpRunnerDelete, payload.RequestedBy, payload.UserID, result.Failure), nil
	}
	return single(ratingevents.AdminOperationSucceededV1, &ratingevents.AdminOperationSucceededPayloadV1{
		Operation:   OpRunnerDelete,
		RequestedBy: payload.RequestedBy,
		UserID:      payload.UserID,
	}), nil
}

// HandleAdminLeaderboardRecompute rewrites every leaderboard position.
func (h *RatingHandlers) HandleAdminLeaderboardRecompute(ctx context.Context, payload *ratingevents.AdminRequestPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleAdminLeaderboardRecompute")
	defer span.End()
	h.auditAdmin(ctx, OpRecompute, payload.RequestedBy)

	result, err := h.service.RecomputeLeaderboard(ctx)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return adminFailed(OpRecompute, payload.RequestedBy, "", result.Failure), nil
	}

	return []handlerwrapper.Result{
		{
			Topic: ratingevents.AdminOperationSucceededV1,
			Payload: &ratingevents.AdminOperationSucceededPayloadV1{
				Operation:   OpRecompute,
				RequestedBy: payload.RequestedBy,
			},
		},
		{
			Topic: ratingevents.LeaderboardUpdatedV1,
			Payload: &ratingevents.LeaderboardUpdatedPayloadV1{
				Reason:  recomputeReason,
				Entries: LeaderboardPayload(*result.Success),
			},
		},
	}, nil
}

// HandleAdminDaySweepRequested runs the end-of-day sweep on demand, for yesterday
// unless the request names a date.
func (h *RatingHandlers) HandleAdminDaySweepRequested(ctx context.Context, payload *ratingevents.AdminDaySweepRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleAdminDaySweepRequested")
	defer span.End()
	h.auditAdmin(ctx, OpDaySweep, payload.RequestedBy)

	// Without a date, sweep the last day that has ended.
	day := h.service.Today().AddDate(0, 0, -1)
	if payload.Date != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, payload.Date, h.service.Location())
		if err != nil {
			reason := fmt.Errorf("%w %q", ratingservice.ErrInvalidDate, payload.Date)
			return adminFailed(OpDaySweep, payload.RequestedBy, "", &reason), nil
		}
		day = parsed
	}

	result, err := h.service.ApplyDailyPenalties(ctx, day)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return adminFailed(OpDaySweep, payload.RequestedBy, "", result.Failure), nil
	}

	return append(single(ratingevents.AdminOperationSucceededV1, &ratingevents.AdminOperationSucceededPayloadV1{
		Operation:   OpDaySweep,
		RequestedBy: payload.RequestedBy,
	}), DaySweepResults(result)...), nil
}

// HandleAdminSeasonResetRequested archives the season and zeroes every runner's RR.
func (h *RatingHandlers) HandleAdminSeasonResetRequested(ctx context.Context, payload *ratingevents.AdminRequestPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleAdminSeasonResetRequested")
	defer span.End()
	h.auditAdmin(ctx, OpSeasonReset, payload.RequestedBy)

	result, err := h.service.ResetSeason(ctx)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return adminFailed(OpSeasonReset, payload.RequestedBy, "", result.Failure), nil
	}

	return append(single(ratingevents.AdminOperationSucceededV1, &ratingevents.AdminOperationSucceededPayloadV1{
		Operation:   OpSeasonReset,
		RequestedBy: payload.RequestedBy,
	}), SeasonResults(result)...), nil
}
