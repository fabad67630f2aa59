package ratingqueue

import "time"

// midnightSchedule fires at every local midnight.
type midnightSchedule struct {
	loc *time.Location
}

// Next returns the first local midnight strictly after t.
func (s midnightSchedule) Next(t time.Time) time.Time {
	local := t.In(s.loc)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
}

// monthStartSchedule fires at local midnight on the first of every month.
type monthStartSchedule struct {
	loc *time.Location
}

// Next returns the first local month start strictly after t.
func (s monthStartSchedule) Next(t time.Time) time.Time {
	local := t.In(s.loc)
	y, m, _ := local.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, s.loc)
}

// scheduleLead is added to the clock before a periodic job builds its
// arguments. River may call the constructor up to 100ms before the scheduled
// midnight, which would otherwise name the wrong day or month.
const scheduleLead = time.Minute

// dailySweepArgs names the day that ends at the midnight run nearest now.
func dailySweepArgs(now time.Time, loc *time.Location) DailySweepJob {
	return DailySweepJob{Date: previousDay(now.Add(scheduleLead), loc).Format(time.DateOnly)}
}

// seasonResetArgs names the month that starts at the run nearest now.
func seasonResetArgs(now time.Time, loc *time.Location) SeasonResetJob {
	return SeasonResetJob{Month: monthStart(now.Add(scheduleLead), loc).Format(time.DateOnly)}
}

// previousDay is the civil date before now's date in loc. A sweep enqueued at
// local midnight covers the day that just ended.
func previousDay(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d-1, 0, 0, 0, 0, loc)
}

// monthStart is the first day of now's month in loc.
func monthStart(now time.Time, loc *time.Location) time.Time {
	y, m, _ := now.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}
