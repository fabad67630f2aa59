package ratinghandlers

import (
	"context"
	"strings"

	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/runrank-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
)

// HandleRunnerSignupRequested registers a new runner.
func (h *RatingHandlers) HandleRunnerSignupRequested(ctx context.Context, payload *ratingevents.RunnerSignupRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleRunnerSignupRequested")
	defer span.End()

	result, err := h.service.SignUp(ctx, payload.UserID, strings.TrimSpace(payload.DisplayName))
	if err != nil {
		return nil, err
	}

	if result.IsFailure() {
		return single(ratingevents.RunnerSignupFailedV1, &ratingevents.FailurePayloadV1{
			UserID: payload.UserID,
			Reason: failureReason(result.Failure),
		}), nil
	}

	return single(ratingevents.RunnerSignupSucceededV1, &ratingevents.RunnerSignupSucceededPayloadV1{
		Runner: RunnerPayload(*result.Success),
	}), nil
}

// HandleRunLogRequested logs today's run for a runner.
func (h *RatingHandlers) HandleRunLogRequested(ctx context.Context, payload *ratingevents.RunLogRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleRunLogRequested")
	defer span.End()

	result, err := h.service.LogRun(ctx, payload.UserID, payload.Distance)
	if err != nil {
		return nil, err
	}

	if result.IsFailure() {
		return single(ratingevents.RunLogFailedV1, &ratingevents.FailurePayloadV1{
			UserID: payload.UserID,
			Reason: failureReason(result.Failure),
		}), nil
	}

	run := *result.Success
	if run.OldTier.Tier != run.NewTier.Tier {
		h.logger.InfoContext(ctx, "Runner changed tier",
			attr.ExtractCorrelationID(ctx),
			attr.RunnerID(run.UserID),
			attr.String("from", run.OldTier.Name),
			attr.String("to", run.NewTier.Name),
		)
	}
	return single(ratingevents.RunLoggedV1, RunLoggedPayload(run, false)), nil
}

// HandleProfileRequested returns a runner's profile.
func (h *RatingHandlers) HandleProfileRequested(ctx context.Context, payload *ratingevents.ProfileRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleProfileRequested")
	defer span.End()

	result, err := h.service.GetProfile(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}

	if result.IsFailure() {
		return single(ratingevents.ProfileFailedV1, &ratingevents.FailurePayloadV1{
			UserID: payload.UserID,
			Reason: failureReason(result.Failure),
		}), nil
	}

	return single(ratingevents.ProfileRetrievedV1, &ratingevents.ProfileRetrievedPayloadV1{
		Runner: RunnerPayload(*result.Success),
	}), nil
}

// HandleLeaderboardRequested returns the top of the leaderboard.
func (h *RatingHandlers) HandleLeaderboardRequested(ctx context.Context, payload *ratingevents.LeaderboardRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleLeaderboardRequested")
	defer span.End()

	result, err := h.service.GetLeaderboard(ctx, payload.Limit)
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		// Corrupt stored data; retrying will not help.
		h.logger.ErrorContext(ctx, "Leaderboard could not be built",
			attr.ExtractCorrelationID(ctx),
			attr.String("reason", failureReason(result.Failure)),
		)
		return nil, nil
	}

	return single(ratingevents.LeaderboardRetrievedV1, &ratingevents.LeaderboardRetrievedPayloadV1{
		Entries: LeaderboardPayload(*result.Success),
	}), nil
}

// HandleTiersRequested returns the tier table.
func (h *RatingHandlers) HandleTiersRequested(ctx context.Context, _ *ratingevents.TiersRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	tiers := h.service.ListTiers()
	out := make([]ratingevents.TierPayloadV1, len(tiers))
	for i, t := range tiers {
		out[i] = ratingevents.NewTierPayload(t)
	}
	return single(ratingevents.TiersRetrievedV1, &ratingevents.TiersRetrievedPayloadV1{Tiers: out}), nil
}
