package localhub

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/automation"
)

func newHub(t *testing.T) *Hub {
	t.Helper()
	h, err := Open(PathConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("open hub: %v", err)
	}
	return h
}

func TestAddAlarmDefaults(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	if err := h.Call(ctx, "alarm_clock", "add_alarm", map[string]any{
		"name": "Morning Run",
		"time": "06:30",
	}); err != nil {
		t.Fatalf("add_alarm: %v", err)
	}

	snap, err := h.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	alarms := alarm.Filter(snap)
	if len(alarms) != 1 {
		t.Fatalf("expected 1 alarm, got %d", len(alarms))
	}
	a := alarms[0]
	if a.ID != "alarm_clock.morning_run" {
		t.Fatalf("unexpected id %q", a.ID)
	}
	if a.Name != "Morning Run" || a.Time != "06:30" {
		t.Fatalf("unexpected alarm %+v", a)
	}
	if !a.Enabled || a.Repeat || len(a.Days) != 0 {
		t.Fatalf("defaults not applied: %+v", a)
	}
	if a.State != alarm.StateIdle {
		t.Fatalf("expected idle state, got %q", a.State)
	}
}

func TestAddAlarmRejectsDuplicates(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	data := map[string]any{"name": "Wake Up", "time": "07:00"}
	if err := h.Call(ctx, "alarm_clock", "add_alarm", data); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := h.Call(ctx, "alarm_clock", "add_alarm", data); err == nil {
		t.Fatal("expected duplicate add to fail")
	}
}

func TestAlarmMutationServices(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	if err := h.Call(ctx, "alarm_clock", "add_alarm", map[string]any{
		"name": "Wake Up",
		"time": "07:00",
	}); err != nil {
		t.Fatalf("add_alarm: %v", err)
	}
	id := "alarm_clock.wake_up"

	steps := []struct {
		service string
		data    map[string]any
	}{
		{"set_time", map[string]any{"entity_id": id, "time": "08:15"}},
		{"set_days", map[string]any{"entity_id": id, "days": []string{"sat", "sun"}}},
		{"set_repeat", map[string]any{"entity_id": id, "repeat": true}},
		{"toggle_alarm", map[string]any{"entity_id": id}},
	}
	for _, step := range steps {
		if err := h.Call(ctx, "alarm_clock", step.service, step.data); err != nil {
			t.Fatalf("%s: %v", step.service, err)
		}
	}

	snap, err := h.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	a := alarm.Filter(snap)[0]
	if a.Time != "08:15" {
		t.Fatalf("time = %q", a.Time)
	}
	if len(a.Days) != 2 || a.Days[0] != alarm.Sat || a.Days[1] != alarm.Sun {
		t.Fatalf("days = %v", a.Days)
	}
	if !a.Repeat {
		t.Fatal("repeat not set")
	}
	if a.Enabled {
		t.Fatal("toggle did not disable the alarm")
	}

	if err := h.Call(ctx, "alarm_clock", "remove_alarm", map[string]any{"entity_id": id}); err != nil {
		t.Fatalf("remove_alarm: %v", err)
	}
	snap, _ = h.Current(ctx)
	if len(alarm.Filter(snap)) != 0 {
		t.Fatal("alarm survived removal")
	}
}

func TestSetTimeRejectsBadValue(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	if err := h.Call(ctx, "alarm_clock", "add_alarm", map[string]any{"name": "A", "time": "07:00"}); err != nil {
		t.Fatalf("add_alarm: %v", err)
	}
	err := h.Call(ctx, "alarm_clock", "set_time", map[string]any{
		"entity_id": "alarm_clock.a",
		"time":      "25:00",
	})
	if err == nil {
		t.Fatal("expected invalid time to be rejected")
	}
}

func TestUnknownServiceAndDomain(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	if err := h.Call(ctx, "alarm_clock", "explode", nil); err == nil {
		t.Fatal("expected unknown service error")
	}
	if err := h.Call(ctx, "vacuum", "start", nil); err == nil {
		t.Fatal("expected unknown domain error")
	}
}

func TestRuleReloadPublishesAutomationEntity(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	rule := automation.RuleDocument{
		Alias: "Morning lights",
		Trigger: automation.Trigger{
			Platform: "state",
			EntityID: "alarm_clock.wake_up",
			To:       "triggered",
		},
		Action: map[string]any{"service": "light.turn_on"},
	}
	raw, err := json.Marshal(rule)
	if err != nil {
		t.Fatalf("marshal rule: %v", err)
	}
	if err := h.WriteRule(ctx, "morning_lights", raw); err != nil {
		t.Fatalf("write rule: %v", err)
	}

	// Entity must not exist before the reload.
	snap, _ := h.Current(ctx)
	if _, ok := snap.Get("automation.morning_lights"); ok {
		t.Fatal("automation entity appeared before reload")
	}

	if err := h.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	snap, _ = h.Current(ctx)
	summaries := automation.Match(snap, "alarm_clock.wake_up")
	if len(summaries) != 1 {
		t.Fatalf("expected 1 automation, got %d", len(summaries))
	}
	s := summaries[0]
	if s.ID != "automation.morning_lights" || s.DisplayName != "Morning lights" || !s.Active {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestReloadPreservesStateAndRemovesOrphans(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	rule := automation.RuleDocument{
		Alias:   "Morning lights",
		Trigger: automation.Trigger{Platform: "state", EntityID: "alarm_clock.wake_up", To: "triggered"},
		Action:  map[string]any{"service": "light.turn_on"},
	}
	raw, _ := json.Marshal(rule)
	if err := h.WriteRule(ctx, "morning_lights", raw); err != nil {
		t.Fatalf("write rule: %v", err)
	}
	if err := h.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if err := h.Call(ctx, "automation", "toggle", map[string]any{"entity_id": "automation.morning_lights"}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := h.Reload(ctx); err != nil {
		t.Fatalf("second reload: %v", err)
	}
	snap, _ := h.Current(ctx)
	r, ok := snap.Get("automation.morning_lights")
	if !ok {
		t.Fatal("automation entity missing after reload")
	}
	if r.State != "off" {
		t.Fatalf("reload reset state to %q", r.State)
	}

	if err := h.DeleteRule(ctx, "morning_lights"); err != nil {
		t.Fatalf("delete rule: %v", err)
	}
	if err := h.Reload(ctx); err != nil {
		t.Fatalf("third reload: %v", err)
	}
	snap, _ = h.Current(ctx)
	if _, ok := snap.Get("automation.morning_lights"); ok {
		t.Fatal("orphaned automation entity survived reload")
	}
}

func TestCurrentOrderIsStable(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if err := h.Call(ctx, "alarm_clock", "add_alarm", map[string]any{"name": name, "time": "07:00"}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	snap, err := h.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	ids := snap.IDs()
	want := []string{"alarm_clock.alpha", "alarm_clock.mid", "alarm_clock.zeta"}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("ids[%d] = %q, want %q", i, ids[i], id)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	if err := h.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	snap, _ := h.Current(ctx)
	first := snap.Len()
	if first == 0 {
		t.Fatal("seed produced no records")
	}
	if len(alarm.Filter(snap)) != 3 {
		t.Fatalf("expected 3 seeded alarms, got %d", len(alarm.Filter(snap)))
	}
	if len(automation.Match(snap, "alarm_clock.wake_up")) != 1 {
		t.Fatal("seed did not publish the notify automation")
	}

	if err := h.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	snap, _ = h.Current(ctx)
	if snap.Len() != first {
		t.Fatalf("second seed changed record count: %d != %d", snap.Len(), first)
	}
}

func TestSeedPopulatesCatalogDevices(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	if err := h.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	lights, err := h.Entities(ctx, "light.")
	if err != nil {
		t.Fatalf("entities: %v", err)
	}
	if len(lights) != 2 {
		t.Fatalf("expected 2 seeded lights, got %d", len(lights))
	}
	for _, prefix := range []string{"media_player.", "script.", "scene."} {
		records, err := h.Entities(ctx, prefix)
		if err != nil {
			t.Fatalf("entities %s: %v", prefix, err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 seeded %s* entity, got %d", prefix, len(records))
		}
	}
}

func TestWatchEmitsSnapshotOnWrite(t *testing.T) {
	h := newHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := h.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if err := h.Call(ctx, "alarm_clock", "add_alarm", map[string]any{"name": "Wake Up", "time": "07:00"}); err != nil {
		t.Fatalf("add_alarm: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if len(alarm.Filter(snap)) == 1 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestWatchCancelDuringBurst(t *testing.T) {
	h := newHub(t)

	// A pending throttle tick racing the shutdown must never reach the
	// closed snapshot channel.
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := h.Watch(ctx)
		if err != nil {
			t.Fatalf("watch %d: %v", i, err)
		}

		done := make(chan struct{})
		go func(n int) {
			defer close(done)
			for j := 0; j < 5; j++ {
				_ = h.Call(ctx, "alarm_clock", "add_alarm", map[string]any{
					"name": fmt.Sprintf("Burst %d %d", n, j),
					"time": "07:00",
				})
			}
		}(i)

		time.Sleep(time.Millisecond)
		cancel()
		<-done

		// The channel must close cleanly after cancellation.
		deadline := time.After(2 * time.Second)
	drain:
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					break drain
				}
			case <-deadline:
				t.Fatalf("iteration %d: channel not closed after cancel", i)
			}
		}
	}
}
