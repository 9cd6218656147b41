package alarm

import (
	"time"
)

var tagForWeekday = map[time.Weekday]Day{
	time.Monday:    Mon,
	time.Tuesday:   Tue,
	time.Wednesday: Wed,
	time.Thursday:  Thu,
	time.Friday:    Fri,
	time.Saturday:  Sat,
	time.Sunday:    Sun,
}

// NextFiring returns the next instant at or after from when the alarm will
// fire. Disabled alarms and alarms with an unparseable time report false.
// An empty day set means the alarm fires every day.
func NextFiring(a Alarm, from time.Time) (time.Time, bool) {
	if !a.Enabled || !ValidTime(a.Time) {
		return time.Time{}, false
	}
	at, err := time.Parse("15:04", a.Time)
	if err != nil {
		return time.Time{}, false
	}

	candidate := time.Date(from.Year(), from.Month(), from.Day(), at.Hour(), at.Minute(), 0, 0, from.Location())
	for i := 0; i < 8; i++ {
		if !candidate.Before(from) && firesOn(a, candidate.Weekday()) {
			return candidate, true
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

func firesOn(a Alarm, weekday time.Weekday) bool {
	if len(a.Days) == 0 {
		return true
	}
	return a.HasDay(tagForWeekday[weekday])
}
