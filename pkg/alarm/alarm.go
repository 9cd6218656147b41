package alarm

import (
	"fmt"
	"regexp"
	"strings"

	"alarmdeck/pkg/ha"
)

// Domain is the entity-id prefix that marks an alarm record.
const Domain = "alarm_clock"

// StateTriggered is the marker state an alarm publishes while firing.
// Automations created by the builder bind to the transition into it.
const StateTriggered = "triggered"

// StateIdle is the resting alarm state.
const StateIdle = "idle"

// Day is a weekday tag as the platform spells them.
type Day string

// Weekday tags in render order.
const (
	Mon Day = "mon"
	Tue Day = "tue"
	Wed Day = "wed"
	Thu Day = "thu"
	Fri Day = "fri"
	Sat Day = "sat"
	Sun Day = "sun"
)

// AllDays returns the seven weekday tags in render order.
func AllDays() []Day {
	return []Day{Mon, Tue, Wed, Thu, Fri, Sat, Sun}
}

// ValidDay reports whether tag is one of the seven weekday tags.
func ValidDay(tag Day) bool {
	switch tag {
	case Mon, Tue, Wed, Thu, Fri, Sat, Sun:
		return true
	}
	return false
}

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTime reports whether value is a 24h HH:MM clock time.
func ValidTime(value string) bool {
	return timePattern.MatchString(value)
}

// Alarm is one alarm entity as the platform publishes it. The client never
// invents or deletes ids; it only requests changes and observes the result
// on the next push-update.
type Alarm struct {
	ID      string
	Name    string
	Time    string
	Enabled bool
	Repeat  bool
	Days    []Day
	State   string
}

// HasDay reports whether the alarm is armed for the given weekday.
func (a Alarm) HasDay(tag Day) bool {
	for _, d := range a.Days {
		if d == tag {
			return true
		}
	}
	return false
}

// ToggleDays returns the day set with tag added or removed. The input slice
// is not mutated.
func (a Alarm) ToggleDays(tag Day) []Day {
	out := make([]Day, 0, len(a.Days)+1)
	found := false
	for _, d := range a.Days {
		if d == tag {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		out = append(out, tag)
	}
	return out
}

// String renders a short human-readable label.
func (a Alarm) String() string {
	state := "off"
	if a.Enabled {
		state = "on"
	}
	return fmt.Sprintf("%s %s (%s)", a.ID, a.Time, state)
}

// FromRecord builds an Alarm from a raw entity record. Malformed attributes
// produce zero values rather than dropping the record; the id set must keep
// tracking the platform even when one attribute is garbage.
func FromRecord(r ha.EntityRecord) Alarm {
	a := Alarm{
		ID:      r.EntityID,
		Name:    r.StringAttr("friendly_name"),
		Time:    r.StringAttr("time"),
		Enabled: r.BoolAttr("enabled"),
		Repeat:  r.BoolAttr("repeat"),
		State:   r.State,
	}
	seen := make(map[Day]bool, 7)
	for _, raw := range r.StringsAttr("days") {
		tag := Day(raw)
		if !ValidDay(tag) || seen[tag] {
			continue
		}
		seen[tag] = true
		a.Days = append(a.Days, tag)
	}
	return a
}

// Filter extracts every alarm-domain record from the snapshot, preserving
// the snapshot's enumeration order. Absence of matches yields an empty list.
func Filter(snap ha.Snapshot) []Alarm {
	prefix := Domain + "."
	var out []Alarm
	snap.Each(func(r ha.EntityRecord) bool {
		if strings.HasPrefix(r.EntityID, prefix) {
			out = append(out, FromRecord(r))
		}
		return true
	})
	return out
}
