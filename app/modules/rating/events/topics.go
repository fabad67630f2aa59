// Package ratingevents defines the topics and payloads of the rating module.
package ratingevents

// StreamName is the JetStream stream that carries every rating topic.
const StreamName = "rating"

// StreamSubjects are the subjects the rating stream covers.
var StreamSubjects = []string{"rating.>"}

// Requests.
const (
	RunnerSignupRequestedV1      = "rating.runner.signup.requested.v1"
	RunLogRequestedV1            = "rating.run.log.requested.v1"
	ProfileRequestedV1           = "rating.profile.requested.v1"
	LeaderboardRequestedV1       = "rating.leaderboard.requested.v1"
	TiersRequestedV1             = "rating.tiers.requested.v1"
	AdminRunForceLogRequestedV1  = "rating.admin.run.force_log.requested.v1"
	AdminRatingAdjustRequestedV1 = "rating.admin.rating.adjust.requested.v1"
	AdminStreakSetRequestedV1    = "rating.admin.streak.set.requested.v1"
	AdminRunnerDeleteRequestedV1 = "rating.admin.runner.delete.requested.v1"
	AdminLeaderboardRecomputeV1  = "rating.admin.leaderboard.recompute.requested.v1"
	AdminDaySweepRequestedV1     = "rating.admin.day.sweep.requested.v1"
	AdminSeasonResetRequestedV1  = "rating.admin.season.reset.requested.v1"
)

// Results.
const (
	RunnerSignupSucceededV1   = "rating.runner.signup.succeeded.v1"
	RunnerSignupFailedV1      = "rating.runner.signup.failed.v1"
	RunLoggedV1               = "rating.run.logged.v1"
	RunLogFailedV1            = "rating.run.log.failed.v1"
	ProfileRetrievedV1        = "rating.profile.retrieved.v1"
	ProfileFailedV1           = "rating.profile.failed.v1"
	LeaderboardRetrievedV1    = "rating.leaderboard.retrieved.v1"
	TiersRetrievedV1          = "rating.tiers.retrieved.v1"
	AdminOperationSucceededV1 = "rating.admin.operation.succeeded.v1"
	AdminOperationFailedV1    = "rating.admin.operation.failed.v1"
	DayEndedV1                = "rating.day.ended.v1"
	SeasonEndedV1             = "rating.season.ended.v1"
	LeaderboardUpdatedV1      = "rating.leaderboard.updated.v1"
)
