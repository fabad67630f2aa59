package ratinghandlers

import (
	"context"
	"testing"
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability"
	"github.com/Black-And-White-Club/runrank-bot/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestHandlers(f *FakeRatingService) Handlers {
	return NewRatingHandlers(f, observability.NoOpLogger, noop.NewTracerProvider().Tracer("test"))
}

func tierInfo(t *testing.T, rr, pos int) ratingdomain.TierInfo {
	t.Helper()
	info, err := ratingdomain.ClassifyInfo(rr, pos)
	require.NoError(t, err)
	return info
}

func profile(t *testing.T, id ratingdomain.RunnerID, rr, pos int) *ratingservice.RunnerProfile {
	return &ratingservice.RunnerProfile{
		UserID:              id,
		DisplayName:         "Runner " + string(id),
		RatingPoints:        rr,
		LeaderboardPosition: pos,
		Tier:                tierInfo(t, rr, pos),
	}
}

func TestRatingHandlers_HandleRunnerSignupRequested(t *testing.T) {
	tests := []struct {
		name      string
		payload   *ratingevents.RunnerSignupRequestedPayloadV1
		setupFake func(*testing.T, *FakeRatingService)
		wantErr   bool
		wantTopic string
		wantLen   int
	}{
		{
			name:    "success - runner signed up",
			payload: &ratingevents.RunnerSignupRequestedPayloadV1{UserID: "u1", DisplayName: "  Ana  "},
			setupFake: func(t *testing.T, f *FakeRatingService) {
				f.SignUpFunc = func(ctx context.Context, userID ratingdomain.RunnerID, displayName string) (ratingservice.ProfileResult, error) {
					if displayName != "Ana" {
						t.Errorf("display name not trimmed: %q", displayName)
					}
					return results.SuccessResult[*ratingservice.RunnerProfile, error](profile(t, userID, 0, 1)), nil
				}
			},
			wantTopic: ratingevents.RunnerSignupSucceededV1,
			wantLen:   1,
		},
		{
			name:    "failure - already signed up",
			payload: &ratingevents.RunnerSignupRequestedPayloadV1{UserID: "u1"},
			setupFake: func(t *testing.T, f *FakeRatingService) {
				f.SignUpFunc = func(ctx context.Context, userID ratingdomain.RunnerID, displayName string) (ratingservice.ProfileResult, error) {
					return results.FailureResult[*ratingservice.RunnerProfile, error](ratingservice.ErrRunnerAlreadyExists), nil
				}
			},
			wantTopic: ratingevents.RunnerSignupFailedV1,
			wantLen:   1,
		},
		{
			name:    "error - nil payload",
			payload: nil,
			wantErr: true,
		},
		{
			name:    "error - service error",
			payload: &ratingevents.RunnerSignupRequestedPayloadV1{UserID: "u1"},
			setupFake: func(t *testing.T, f *FakeRatingService) {
				f.SignUpFunc = func(ctx context.Context, userID ratingdomain.RunnerID, displayName string) (ratingservice.ProfileResult, error) {
					return ratingservice.ProfileResult{}, context.DeadlineExceeded
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeService := NewFakeRatingService()
			if tt.setupFake != nil {
				tt.setupFake(t, fakeService)
			}

			res, err := newTestHandlers(fakeService).HandleRunnerSignupRequested(context.Background(), tt.payload)

			if (err != nil) != tt.wantErr {
				t.Errorf("got error %v, want error %v", err, tt.wantErr)
			}
			if len(res) != tt.wantLen {
				t.Errorf("got %d results, want %d", len(res), tt.wantLen)
			}
			if len(res) > 0 && res[0].Topic != tt.wantTopic {
				t.Errorf("got topic %s, want %s", res[0].Topic, tt.wantTopic)
			}
		})
	}
}

func TestRatingHandlers_HandleRunLogRequested(t *testing.T) {
	loggedOn := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		payload   *ratingevents.RunLogRequestedPayloadV1
		setupFake func(*testing.T, *FakeRatingService)
		wantErr   bool
		wantTopic string
		wantLen   int
		check     func(*testing.T, any)
	}{
		{
			name:    "success - run logged",
			payload: &ratingevents.RunLogRequestedPayloadV1{UserID: "u1", Distance: 3.1},
			setupFake: func(t *testing.T, f *FakeRatingService) {
				f.LogRunFunc = func(ctx context.Context, userID ratingdomain.RunnerID, distance float64) (ratingservice.RunLogResult, error) {
					return results.SuccessResult[*ratingservice.RunLog, error](&ratingservice.RunLog{
						UserID:   userID,
						Distance: distance,
						LoggedOn: loggedOn,
						Streak:   4,
						Outcome: ratingdomain.RunOutcome{
							StreakBonus:     1,
							DistanceBonus:   2,
							Delta:           28,
							NewRatingPoints: 118,
						},
						OldRatingPoints: 90,
						OldTier:         tierInfo(t, 90, 2),
						NewTier:         tierInfo(t, 118, 1),
						NewPosition:     1,
					}), nil
				}
			},
			wantTopic: ratingevents.RunLoggedV1,
			wantLen:   1,
			check: func(t *testing.T, p any) {
				got, ok := p.(*ratingevents.RunLoggedPayloadV1)
				require.True(t, ok)
				assert.Equal(t, "2026-03-10", got.LoggedOn)
				assert.Equal(t, 28, got.Delta)
				assert.Equal(t, 118, got.NewRatingPoints)
				assert.Equal(t, "Bronze", got.OldTier.Name)
				assert.Equal(t, "Silver", got.NewTier.Name)
				assert.Equal(t, "100 - 199", got.NewTier.Range)
				assert.False(t, got.Forced)
			},
		},
		{
			name:    "failure - already logged today",
			payload: &ratingevents.RunLogRequestedPayloadV1{UserID: "u1", Distance: 1},
			setupFake: func(t *testing.T, f *FakeRatingService) {
				f.LogRunFunc = func(ctx context.Context, userID ratingdomain.RunnerID, distance float64) (ratingservice.RunLogResult, error) {
					return results.FailureResult[*ratingservice.RunLog, error](ratingservice.ErrAlreadyLoggedToday), nil
				}
			},
			wantTopic: ratingevents.RunLogFailedV1,
			wantLen:   1,
			check: func(t *testing.T, p any) {
				got, ok := p.(*ratingevents.FailurePayloadV1)
				require.True(t, ok)
				assert.Equal(t, ratingdomain.RunnerID("u1"), got.UserID)
				assert.Equal(t, ratingservice.ErrAlreadyLoggedToday.Error(), got.Reason)
			},
		},
		{
			name:    "error - nil payload",
			payload: nil,
			wantErr: true,
		},
		{
			name:    "error - concurrent modification",
			payload: &ratingevents.RunLogRequestedPayloadV1{UserID: "u1", Distance: 1},
			setupFake: func(t *testing.T, f *FakeRatingService) {
				f.LogRunFunc = func(ctx context.Context, userID ratingdomain.RunnerID, distance float64) (ratingservice.RunLogResult, error) {
					return ratingservice.RunLogResult{}, ratingservice.ErrConcurrentModification
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeService := NewFakeRatingService()
			if tt.setupFake != nil {
				tt.setupFake(t, fakeService)
			}

			res, err := newTestHandlers(fakeService).HandleRunLogRequested(context.Background(), tt.payload)

			if (err != nil) != tt.wantErr {
				t.Errorf("got error %v, want error %v", err, tt.wantErr)
			}
			if len(res) != tt.wantLen {
				t.Fatalf("got %d results, want %d", len(res), tt.wantLen)
			}
			if len(res) > 0 && res[0].Topic != tt.wantTopic {
				t.Errorf("got topic %s, want %s", res[0].Topic, tt.wantTopic)
			}
			if tt.check != nil {
				tt.check(t, res[0].Payload)
			}
		})
	}
}

func TestRatingHandlers_HandleProfileRequested(t *testing.T) {
	last := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		f := NewFakeRatingService()
		f.GetProfileFunc = func(ctx context.Context, userID ratingdomain.RunnerID) (ratingservice.ProfileResult, error) {
			p := profile(t, userID, 760, 1)
			p.LastLoggedDate = &last
			p.RunsLogged = 4
			p.TotalDistance = 10
			p.AverageDistance = 2.5
			return results.SuccessResult[*ratingservice.RunnerProfile, error](p), nil
		}

		res, err := newTestHandlers(f).HandleProfileRequested(context.Background(), &ratingevents.ProfileRequestedPayloadV1{UserID: "u1"})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, ratingevents.ProfileRetrievedV1, res[0].Topic)

		got := res[0].Payload.(*ratingevents.ProfileRetrievedPayloadV1)
		assert.Equal(t, "Usain Bolt", got.Runner.Tier.Name)
		assert.Equal(t, "⚡", got.Runner.Tier.Icon)
		assert.Equal(t, "750+", got.Runner.Tier.Range)
		assert.Equal(t, "2026-03-09", got.Runner.LastLoggedDate)
		assert.Equal(t, 2.5, got.Runner.AverageDistance)
	})

	t.Run("unknown runner", func(t *testing.T) {
		f := NewFakeRatingService()
		f.GetProfileFunc = func(ctx context.Context, userID ratingdomain.RunnerID) (ratingservice.ProfileResult, error) {
			return results.FailureResult[*ratingservice.RunnerProfile, error](ratingservice.ErrRunnerNotFound), nil
		}

		res, err := newTestHandlers(f).HandleProfileRequested(context.Background(), &ratingevents.ProfileRequestedPayloadV1{UserID: "ghost"})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, ratingevents.ProfileFailedV1, res[0].Topic)
	})
}

func TestRatingHandlers_HandleLeaderboardRequested(t *testing.T) {
	f := NewFakeRatingService()
	var gotLimit int
	f.GetLeaderboardFunc = func(ctx context.Context, limit int) (ratingservice.LeaderboardResult, error) {
		gotLimit = limit
		return results.SuccessResult[[]ratingservice.LeaderboardEntry, error]([]ratingservice.LeaderboardEntry{
			{Position: 1, UserID: "a", DisplayName: "A", RatingPoints: 800, Tier: tierInfo(t, 800, 1)},
			{Position: 2, UserID: "b", DisplayName: "B", RatingPoints: 760, Tier: tierInfo(t, 760, 2)},
		}), nil
	}

	res, err := newTestHandlers(f).HandleLeaderboardRequested(context.Background(), &ratingevents.LeaderboardRequestedPayloadV1{Limit: 10})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, ratingevents.LeaderboardRetrievedV1, res[0].Topic)

	got := res[0].Payload.(*ratingevents.LeaderboardRetrievedPayloadV1)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "Usain Bolt", got.Entries[0].Tier.Name)
	assert.Equal(t, "Grandmaster", got.Entries[1].Tier.Name)
}

func TestRatingHandlers_HandleTiersRequested(t *testing.T) {
	res, err := newTestHandlers(NewFakeRatingService()).HandleTiersRequested(context.Background(), &ratingevents.TiersRequestedPayloadV1{})
	require.NoError(t, err)
	require.Len(t, res, 1)

	got := res[0].Payload.(*ratingevents.TiersRetrievedPayloadV1)
	require.Len(t, got.Tiers, 8)
	assert.Equal(t, "Bronze", got.Tiers[0].Name)
	assert.Equal(t, "0 - 99", got.Tiers[0].Range)
	assert.Equal(t, "Usain Bolt", got.Tiers[7].Name)
}
