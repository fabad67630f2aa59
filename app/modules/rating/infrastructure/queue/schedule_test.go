package ratingqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func laLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return loc
}

func TestMidnightSchedule_Next(t *testing.T) {
	loc := laLocation(t)
	s := midnightSchedule{loc: loc}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"afternoon", time.Date(2026, 3, 10, 15, 0, 0, 0, loc), time.Date(2026, 3, 11, 0, 0, 0, 0, loc)},
		{"exactly midnight", time.Date(2026, 3, 11, 0, 0, 0, 0, loc), time.Date(2026, 3, 12, 0, 0, 0, 0, loc)},
		{"end of month", time.Date(2026, 3, 31, 23, 59, 0, 0, loc), time.Date(2026, 4, 1, 0, 0, 0, 0, loc)},
		{"utc input", time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC), time.Date(2026, 3, 11, 0, 0, 0, 0, loc)},
		{"spring forward", time.Date(2026, 3, 7, 12, 0, 0, 0, loc), time.Date(2026, 3, 8, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Next(tt.now)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestMonthStartSchedule_Next(t *testing.T) {
	loc := laLocation(t)
	s := monthStartSchedule{loc: loc}

	got := s.Next(time.Date(2026, 3, 10, 15, 0, 0, 0, loc))
	assert.True(t, time.Date(2026, 4, 1, 0, 0, 0, 0, loc).Equal(got))

	got = s.Next(time.Date(2026, 12, 31, 23, 0, 0, 0, loc))
	assert.True(t, time.Date(2027, 1, 1, 0, 0, 0, 0, loc).Equal(got))

	got = s.Next(time.Date(2026, 4, 1, 0, 0, 0, 0, loc))
	assert.True(t, time.Date(2026, 5, 1, 0, 0, 0, 0, loc).Equal(got))
}

func TestPreviousDayAndMonthStart(t *testing.T) {
	loc := laLocation(t)

	// 07:00 UTC on March 1 is still February 28 in Los Angeles.
	now := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-27", previousDay(now, loc).Format(time.DateOnly))
	assert.Equal(t, "2026-02-01", monthStart(now, loc).Format(time.DateOnly))

	now = time.Date(2026, 3, 1, 0, 0, 5, 0, loc)
	assert.Equal(t, "2026-02-28", previousDay(now, loc).Format(time.DateOnly))
	assert.Equal(t, "2026-03-01", monthStart(now, loc).Format(time.DateOnly))
}

func TestPeriodicJobArgs(t *testing.T) {
	loc := laLocation(t)

	tests := []struct {
		name      string
		now       time.Time
		wantDate  string
		wantMonth string
	}{
		{
			name:      "called just before midnight",
			now:       time.Date(2026, 3, 10, 23, 59, 59, 950_000_000, loc),
			wantDate:  "2026-03-10",
			wantMonth: "2026-03-01",
		},
		{
			name:      "called at midnight",
			now:       time.Date(2026, 3, 11, 0, 0, 0, 0, loc),
			wantDate:  "2026-03-10",
			wantMonth: "2026-03-01",
		},
		{
			name:      "called late",
			now:       time.Date(2026, 3, 11, 0, 0, 30, 0, loc),
			wantDate:  "2026-03-10",
			wantMonth: "2026-03-01",
		},
		{
			name:      "month boundary called early",
			now:       time.Date(2026, 3, 31, 23, 59, 59, 900_000_000, loc),
			wantDate:  "2026-03-31",
			wantMonth: "2026-04-01",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDate, dailySweepArgs(tt.now, loc).Date)
			assert.Equal(t, tt.wantMonth, seasonResetArgs(tt.now, loc).Month)
		})
	}
}
