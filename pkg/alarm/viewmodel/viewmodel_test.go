package viewmodel

import (
	"testing"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/ha"
)

func alarmRecord(id, name, at string, enabled bool, days ...string) ha.EntityRecord {
	tags := make([]any, 0, len(days))
	for _, d := range days {
		tags = append(tags, d)
	}
	return ha.EntityRecord{
		EntityID: id,
		State:    alarm.StateIdle,
		Attributes: map[string]any{
			"friendly_name": name,
			"time":          at,
			"enabled":       enabled,
			"repeat":        false,
			"days":          tags,
		},
	}
}

func TestApplyReportsDirtyOnlyOnChange(t *testing.T) {
	m := New()

	snap := ha.NewSnapshot(
		alarmRecord("alarm_clock.wake_up", "Wake Up", "07:00", true, "mon"),
		ha.EntityRecord{EntityID: "light.bedroom", State: "off"},
	)
	if !m.Apply(snap) {
		t.Fatal("first apply should be dirty")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 alarm, got %d", m.Len())
	}

	// Same alarm content in a fresh snapshot with unrelated churn.
	again := ha.NewSnapshot(
		alarmRecord("alarm_clock.wake_up", "Wake Up", "07:00", true, "mon"),
		ha.EntityRecord{EntityID: "light.bedroom", State: "on"},
		ha.EntityRecord{EntityID: "sensor.temp", State: "21"},
	)
	if m.Apply(again) {
		t.Fatal("unrelated entity churn must not dirty the alarm view")
	}

	changed := ha.NewSnapshot(
		alarmRecord("alarm_clock.wake_up", "Wake Up", "07:30", true, "mon"),
	)
	if !m.Apply(changed) {
		t.Fatal("time change should dirty the view")
	}
	a, ok := m.AlarmByID("alarm_clock.wake_up")
	if !ok || a.Time != "07:30" {
		t.Fatalf("view did not pick up the change: %+v", a)
	}
}

func TestApplySwapsWholesale(t *testing.T) {
	m := New()
	m.Apply(ha.NewSnapshot(
		alarmRecord("alarm_clock.a", "A", "06:00", true),
		alarmRecord("alarm_clock.b", "B", "07:00", true),
	))
	before := m.Alarms()

	m.Apply(ha.NewSnapshot(
		alarmRecord("alarm_clock.b", "B", "07:00", true),
	))
	after := m.Alarms()

	if len(after) != 1 || after[0].ID != "alarm_clock.b" {
		t.Fatalf("unexpected list after removal: %+v", after)
	}
	// The previously published slice must be untouched.
	if len(before) != 2 || before[0].ID != "alarm_clock.a" {
		t.Fatalf("published list was mutated: %+v", before)
	}
}

func TestAlarmsKeepsReferenceWhenClean(t *testing.T) {
	m := New()
	snap := ha.NewSnapshot(alarmRecord("alarm_clock.a", "A", "06:00", true))
	m.Apply(snap)
	first := m.Alarms()

	m.Apply(ha.NewSnapshot(alarmRecord("alarm_clock.a", "A", "06:00", true)))
	second := m.Alarms()

	if len(first) != 1 || len(second) != 1 || &first[0] != &second[0] {
		t.Fatal("clean apply must not replace the held list")
	}
}

func TestDayCellsFixedOrder(t *testing.T) {
	a := alarm.Alarm{Days: []alarm.Day{alarm.Sun, alarm.Wed}}
	cells := DayCells(a)
	if len(cells) != 7 {
		t.Fatalf("expected 7 cells, got %d", len(cells))
	}
	wantOrder := alarm.AllDays()
	for i, cell := range cells {
		if cell.Tag != wantOrder[i] {
			t.Fatalf("cells[%d] = %s, want %s", i, cell.Tag, wantOrder[i])
		}
		wantSelected := cell.Tag == alarm.Wed || cell.Tag == alarm.Sun
		if cell.Selected != wantSelected {
			t.Fatalf("cells[%d] selected = %v", i, cell.Selected)
		}
	}
}

func TestAlarmByIDMiss(t *testing.T) {
	m := New()
	if _, ok := m.AlarmByID("alarm_clock.nope"); ok {
		t.Fatal("lookup on empty model should miss")
	}
}
