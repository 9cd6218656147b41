package app

import (
	"sort"
	"time"

	"alarmdeck/pkg/alarm"
)

// ScheduleEntry is one upcoming firing of an alarm.
type ScheduleEntry struct {
	Alarm alarm.Alarm
	At    time.Time
}

// ScheduleResult lists upcoming firings within a time window.
type ScheduleResult struct {
	From    time.Time
	Until   time.Time
	Entries []ScheduleEntry

	// Idle counts enabled alarms whose next firing falls outside the window
	// plus every disabled alarm.
	Idle int
}

// Schedule computes the upcoming firings of the currently held alarms within
// the window starting at from. Entries are sorted by firing time, ties broken
// by alarm id.
func (s *Service) Schedule(from time.Time, window time.Duration) ScheduleResult {
	s.init()
	until := from.Add(window)
	result := ScheduleResult{From: from, Until: until}

	for _, a := range s.model.Alarms() {
		at, ok := alarm.NextFiring(a, from)
		if !ok || at.After(until) {
			result.Idle++
			continue
		}
		result.Entries = append(result.Entries, ScheduleEntry{Alarm: a, At: at})
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		if result.Entries[i].At.Equal(result.Entries[j].At) {
			return result.Entries[i].Alarm.ID < result.Entries[j].Alarm.ID
		}
		return result.Entries[i].At.Before(result.Entries[j].At)
	})
	return result
}
