// Package viewmodel holds the only mutable state in the client: the last
// accepted alarm list. Renderers read consistent snapshots; pushes from the
// platform replace the list wholesale when (and only when) the filtered view
// actually changed.
package viewmodel

import (
	"sync"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/ha"
)

// DayCell is one weekday button for an alarm row: fixed render order,
// selected when the alarm is armed for that day.
type DayCell struct {
	Tag      alarm.Day
	Selected bool
}

// Model owns the currently rendered alarm list. Replacement is wholesale; a
// reader sees either the previous list or the new one, never a mix.
type Model struct {
	mu     sync.RWMutex
	alarms []alarm.Alarm
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// Apply filters the snapshot and, if the alarm view changed, swaps the held
// list. Returns true when the swap happened (the "dirty" signal), false when
// the update was irrelevant to alarms and rendering can be skipped.
func (m *Model) Apply(snap ha.Snapshot) bool {
	next := alarm.Filter(snap)

	m.mu.Lock()
	defer m.mu.Unlock()
	if alarm.EqualLists(m.alarms, next) {
		return false
	}
	m.alarms = next
	return true
}

// Alarms returns the current list. The slice itself is shared read-only
// state: the model never mutates a published list, it only replaces it.
func (m *Model) Alarms() []alarm.Alarm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alarms
}

// AlarmByID looks up one alarm in the current list.
func (m *Model) AlarmByID(id string) (alarm.Alarm, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.alarms {
		if a.ID == id {
			return a, true
		}
	}
	return alarm.Alarm{}, false
}

// Len reports the number of alarms currently held.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.alarms)
}

// DayCells renders the seven weekday buttons for an alarm in fixed order.
func DayCells(a alarm.Alarm) []DayCell {
	cells := make([]DayCell, 0, 7)
	for _, tag := range alarm.AllDays() {
		cells = append(cells, DayCell{Tag: tag, Selected: a.HasDay(tag)})
	}
	return cells
}

// Automations derives the automation summaries for one alarm from the given
// snapshot. Derived, read-only; the authoritative copy lives in the
// platform. An empty result means "none configured", which renderers show
// explicitly rather than leaving blank.
func Automations(snap ha.Snapshot, alarmID string) []automation.Summary {
	return automation.Match(snap, alarmID)
}
