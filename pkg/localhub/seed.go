package localhub

import (
	"context"
	"encoding/json"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/ha"
)

// Seed populates an empty hub with a couple of alarms, a notify automation,
// and a handful of device entities so the builder's choice lists have
// something to offer. Existing records make seeding a no-op.
func (h *Hub) Seed(ctx context.Context) error {
	snap, err := h.Current(ctx)
	if err != nil {
		return err
	}
	if snap.Len() > 0 {
		return nil
	}

	alarms := []map[string]any{
		{
			"name":   "Wake Up",
			"time":   "07:00",
			"repeat": true,
			"days":   []string{"mon", "tue", "wed", "thu", "fri"},
		},
		{
			"name": "Weekend",
			"time": "09:30",
			"days": []string{"sat", "sun"},
		},
		{
			"name":    "Nap",
			"time":    "14:00",
			"enabled": false,
		},
	}
	for _, data := range alarms {
		if err := h.Call(ctx, alarm.Domain, "add_alarm", data); err != nil {
			return err
		}
	}

	devices := []ha.EntityRecord{
		{EntityID: "light.bedroom", State: "off", Attributes: map[string]any{"friendly_name": "Bedroom light"}},
		{EntityID: "light.hallway", State: "off", Attributes: map[string]any{"friendly_name": "Hallway light"}},
		{EntityID: "media_player.kitchen", State: "idle", Attributes: map[string]any{"friendly_name": "Kitchen speaker"}},
		{EntityID: "script.morning_news", State: "off", Attributes: map[string]any{"friendly_name": "Morning news"}},
		{EntityID: "scene.sunrise", State: "scening", Attributes: map[string]any{"friendly_name": "Sunrise"}},
	}
	for _, r := range devices {
		if err := h.writeRecord(r); err != nil {
			return err
		}
	}

	rule := automation.RuleDocument{
		Alias:       "Wake up notification",
		Description: "Send a notification when the wake up alarm fires",
		Trigger: automation.Trigger{
			Platform: "state",
			EntityID: alarm.Domain + ".wake_up",
			To:       alarm.StateTriggered,
		},
		Action: map[string]any{
			"service": "notify.notify",
			"data":    map[string]any{"message": "Good morning"},
		},
	}
	raw, err := json.Marshal(rule)
	if err != nil {
		return err
	}
	if err := h.WriteRule(ctx, "wake_up_notify", raw); err != nil {
		return err
	}
	return h.Reload(ctx)
}
