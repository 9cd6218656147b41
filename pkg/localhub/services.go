package localhub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/ha"
)

// Call routes a service call to the matching handler. Unknown domains and
// services are errors, matching how a real platform rejects them.
func (h *Hub) Call(ctx context.Context, domain, service string, data map[string]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch domain {
	case alarm.Domain:
		return h.callAlarmClock(ctx, service, data)
	case automation.Domain:
		return h.callAutomation(ctx, service, data)
	}
	return fmt.Errorf("unknown domain %q", domain)
}

func (h *Hub) callAlarmClock(ctx context.Context, service string, data map[string]any) error {
	switch service {
	case "add_alarm":
		return h.addAlarm(ctx, data)
	case "remove_alarm":
		return h.withAlarm(data, func(r ha.EntityRecord) error {
			return h.eraseRecord(r.EntityID)
		})
	case "toggle_alarm":
		return h.withAlarm(data, func(r ha.EntityRecord) error {
			enabled, _ := r.Attributes["enabled"].(bool)
			r.Attributes["enabled"] = !enabled
			return h.touch(r)
		})
	case "set_time":
		t, ok := data["time"].(string)
		if !ok || !alarm.ValidTime(t) {
			return fmt.Errorf("set_time: invalid time %v", data["time"])
		}
		return h.withAlarm(data, func(r ha.EntityRecord) error {
			r.Attributes["time"] = t
			return h.touch(r)
		})
	case "set_days":
		days, err := dayList(data["days"])
		if err != nil {
			return fmt.Errorf("set_days: %w", err)
		}
		return h.withAlarm(data, func(r ha.EntityRecord) error {
			r.Attributes["days"] = days
			return h.touch(r)
		})
	case "set_repeat":
		repeat, ok := data["repeat"].(bool)
		if !ok {
			return fmt.Errorf("set_repeat: repeat must be a boolean")
		}
		return h.withAlarm(data, func(r ha.EntityRecord) error {
			r.Attributes["repeat"] = repeat
			return h.touch(r)
		})
	}
	return fmt.Errorf("unknown service %s.%s", alarm.Domain, service)
}

func (h *Hub) callAutomation(ctx context.Context, service string, data map[string]any) error {
	switch service {
	case "toggle":
		id, ok := data["entity_id"].(string)
		if !ok || !strings.HasPrefix(id, automation.Domain+".") {
			return fmt.Errorf("toggle: entity_id %v is not an automation", data["entity_id"])
		}
		r, err := h.readRecord(id)
		if err != nil {
			return fmt.Errorf("toggle: %w", err)
		}
		if r.State == "on" {
			r.State = "off"
		} else {
			r.State = "on"
		}
		return h.touch(r)
	case "reload":
		return h.reloadLocked(ctx)
	}
	return fmt.Errorf("unknown service %s.%s", automation.Domain, service)
}

func (h *Hub) addAlarm(ctx context.Context, data map[string]any) error {
	name, _ := data["name"].(string)
	if name == "" {
		name = fmt.Sprintf("Alarm %d", h.alarmCount(ctx)+1)
	}
	t, _ := data["time"].(string)
	if t == "" {
		t = time.Now().Format("15:04")
	}
	if !alarm.ValidTime(t) {
		return fmt.Errorf("add_alarm: invalid time %q", t)
	}
	enabled := true
	if v, ok := data["enabled"].(bool); ok {
		enabled = v
	}
	repeat := false
	if v, ok := data["repeat"].(bool); ok {
		repeat = v
	}
	days, err := dayList(data["days"])
	if err != nil {
		return fmt.Errorf("add_alarm: %w", err)
	}

	id := alarm.Domain + "." + slugify(name)
	if h.d.Has(id) {
		return fmt.Errorf("add_alarm: alarm %q already exists", id)
	}
	return h.touch(ha.EntityRecord{
		EntityID: id,
		State:    alarm.StateIdle,
		Attributes: map[string]any{
			"friendly_name": name,
			"time":          t,
			"enabled":       enabled,
			"repeat":        repeat,
			"days":          days,
		},
	})
}

func (h *Hub) alarmCount(ctx context.Context) int {
	n := 0
	for key := range h.d.Keys(ctx.Done()) {
		if strings.HasPrefix(key, alarm.Domain+".") {
			n++
		}
	}
	return n
}

// withAlarm resolves the entity_id from the payload and runs fn against the
// stored record. A missing alarm is an error so callers surface it instead of
// silently creating one.
func (h *Hub) withAlarm(data map[string]any, fn func(ha.EntityRecord) error) error {
	id, ok := data["entity_id"].(string)
	if !ok || !strings.HasPrefix(id, alarm.Domain+".") {
		return fmt.Errorf("entity_id %v is not an alarm", data["entity_id"])
	}
	r, err := h.readRecord(id)
	if err != nil {
		return fmt.Errorf("alarm %s: %w", id, err)
	}
	if r.Attributes == nil {
		r.Attributes = map[string]any{}
	}
	return fn(r)
}

func (h *Hub) touch(r ha.EntityRecord) error {
	r.LastUpdated = time.Now()
	return h.writeRecord(r)
}

func dayList(v any) ([]string, error) {
	if v == nil {
		return []string{}, nil
	}
	var tags []string
	switch list := v.(type) {
	case []string:
		tags = list
	case []any:
		for _, d := range list {
			s, ok := d.(string)
			if !ok {
				return nil, fmt.Errorf("day %v is not a string", d)
			}
			tags = append(tags, s)
		}
	default:
		return nil, fmt.Errorf("days must be a list")
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !alarm.ValidDay(alarm.Day(tag)) {
			return nil, fmt.Errorf("unknown day %q", tag)
		}
		out = append(out, tag)
	}
	return out, nil
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
