package ratinghandlers

import (
	"context"

	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/runrank-bot/internal/handlerwrapper"
)

// Handlers defines the contract for rating event handlers.
type Handlers interface {
	HandleRunnerSignupRequested(ctx context.Context, payload *ratingevents.RunnerSignupRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRunLogRequested(ctx context.Context, payload *ratingevents.RunLogRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleProfileRequested(ctx context.Context, payload *ratingevents.ProfileRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleLeaderboardRequested(ctx context.Context, payload *ratingevents.LeaderboardRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleTiersRequested(ctx context.Context, payload *ratingevents.TiersRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// Admin
	HandleAdminForceLogRequested(ctx context.Context, payload *ratingevents.AdminForceLogRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleAdminRatingAdjustRequested(ctx context.Context, payload *ratingevents.AdminRatingAdjustRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleAdminStreakSetRequested(ctx context.Context, payload *ratingevents.AdminStreakSetRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleAdminRunnerDeleteRequested(ctx context.Context, payload *ratingevents.AdminRunnerDeleteRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleAdminLeaderboardRecompute(ctx context.Context, payload *ratingevents.AdminRequestPayloadV1) ([]handlerwrapper.Result, error)
	HandleAdminDaySweepRequested(ctx context.Context, payload *ratingevents.AdminDaySweepRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleAdminSeasonResetRequested(ctx context.Context, payload *ratingevents.AdminRequestPayloadV1) ([]handlerwrapper.Result, error)
}
