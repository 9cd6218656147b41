package actions

import (
	"context"
	"errors"
	"testing"

	"alarmdeck/pkg/ha"
)

type fakeCatalog struct {
	entities map[string][]ha.EntityRecord
	err      error
}

func (f *fakeCatalog) Entities(ctx context.Context, domainPrefix string) ([]ha.EntityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entities[domainPrefix], nil
}

func (f *fakeCatalog) Services(ctx context.Context) (map[string][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string][]string{}, nil
}

func TestRegistryKindsAreRegistered(t *testing.T) {
	r := NewRegistry()
	kinds := r.Kinds()
	want := []Kind{KindLight, KindMediaPlayer, KindNotify, KindScript, KindScene}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d kinds, got %d", len(want), len(kinds))
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Fatalf("kind %d: expected %s, got %s", i, k, kinds[i])
		}
	}
}

func TestRegisterNewKindIsAdditive(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Kind: Kind("siren"), Title: "Sound a siren"})
	kinds := r.Kinds()
	if kinds[len(kinds)-1] != Kind("siren") {
		t.Fatalf("new kind should append, got %v", kinds)
	}
	if _, ok := r.Lookup(Kind("siren")); !ok {
		t.Fatalf("registered kind not found")
	}
}

func TestDescribeFormPopulatesChoicesFromCatalog(t *testing.T) {
	catalog := &fakeCatalog{entities: map[string][]ha.EntityRecord{
		"light.": {
			{EntityID: "light.kitchen", Attributes: map[string]any{"friendly_name": "Kitchen"}},
			{EntityID: "light.bedroom"},
		},
	}}
	r := NewRegistry()

	schema, err := r.DescribeForm(context.Background(), KindLight, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema.Kind != KindLight || len(schema.Fields) != 3 {
		t.Fatalf("unexpected schema: %+v", schema)
	}
	entity := schema.Fields[0]
	if len(entity.Choices) != 2 {
		t.Fatalf("expected 2 light choices, got %d", len(entity.Choices))
	}
	if entity.Choices[1].Label != "Kitchen" {
		t.Fatalf("friendly name not used as label: %+v", entity.Choices)
	}
}

func TestDescribeFormCatalogFailureYieldsEmptyChoices(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("socket closed")}
	r := NewRegistry()

	schema, err := r.DescribeForm(context.Background(), KindLight, catalog)
	if !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
	if len(schema.Fields) == 0 {
		t.Fatalf("schema must still be usable on catalog failure")
	}
	if len(schema.Fields[0].Choices) != 0 {
		t.Fatalf("choices must be empty on catalog failure")
	}
}

func TestDescribeFormUnknownKind(t *testing.T) {
	r := NewRegistry()
	if _, err := r.DescribeForm(context.Background(), Kind("nope"), &fakeCatalog{}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestBuildRuleLightBrightnessOutOfRange(t *testing.T) {
	r := NewRegistry()
	_, err := r.BuildRule(KindLight, Values{
		"entity":     "light.kitchen",
		"brightness": 150,
		"transition": 10,
	}, "alarm_clock.a1")

	var invalid *InvalidFormValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidFormValueError, got %v", err)
	}
	if invalid.Field != "brightness" {
		t.Fatalf("expected offending field brightness, got %q", invalid.Field)
	}
}

func TestBuildRuleLightTransitionOutOfRange(t *testing.T) {
	r := NewRegistry()
	_, err := r.BuildRule(KindLight, Values{
		"entity":     "light.kitchen",
		"brightness": 50,
		"transition": 301,
	}, "alarm_clock.a1")

	var invalid *InvalidFormValueError
	if !errors.As(err, &invalid) || invalid.Field != "transition" {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestBuildRuleLightSuccess(t *testing.T) {
	r := NewRegistry()
	doc, err := r.BuildRule(KindLight, Values{
		"entity":     "light.kitchen",
		"brightness": 80,
		"transition": 10,
	}, "alarm_clock.a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Trigger.Platform != "state" || doc.Trigger.EntityID != "alarm_clock.a1" || doc.Trigger.To != "triggered" {
		t.Fatalf("unexpected trigger: %+v", doc.Trigger)
	}
	if doc.Action["service"] != "light.turn_on" || doc.Action["entity_id"] != "light.kitchen" {
		t.Fatalf("unexpected action: %+v", doc.Action)
	}
	data := doc.Action["data"].(map[string]any)
	if data["brightness_pct"] != float64(80) || data["transition"] != float64(10) {
		t.Fatalf("unexpected action data: %+v", data)
	}
}

func TestBuildRuleNotify(t *testing.T) {
	r := NewRegistry()
	doc, err := r.BuildRule(KindNotify, Values{"message": "Wake up"}, "alarm_clock.a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Trigger.EntityID != "alarm_clock.a1" {
		t.Fatalf("trigger not bound to alarm: %+v", doc.Trigger)
	}
	if doc.Action["service"] != "notify.notify" {
		t.Fatalf("unexpected service: %v", doc.Action["service"])
	}
	data := doc.Action["data"].(map[string]any)
	if data["message"] != "Wake up" {
		t.Fatalf("unexpected message: %v", data["message"])
	}
}

func TestBuildRuleNotifyMissingMessage(t *testing.T) {
	r := NewRegistry()
	_, err := r.BuildRule(KindNotify, Values{}, "alarm_clock.a1")
	var invalid *InvalidFormValueError
	if !errors.As(err, &invalid) || invalid.Field != "message" {
		t.Fatalf("expected missing-message error, got %v", err)
	}
}

func TestBuildRuleMediaPlayerOperations(t *testing.T) {
	r := NewRegistry()

	play, err := r.BuildRule(KindMediaPlayer, Values{
		"entity":    "media_player.speaker",
		"operation": OpPlay,
	}, "alarm_clock.a1")
	if err != nil {
		t.Fatalf("play: unexpected error: %v", err)
	}
	if play.Action["service"] != "media_player.media_play" {
		t.Fatalf("play: unexpected action %+v", play.Action)
	}

	vol, err := r.BuildRule(KindMediaPlayer, Values{
		"entity":    "media_player.speaker",
		"operation": OpVolumeSet,
		"volume":    40,
	}, "alarm_clock.a1")
	if err != nil {
		t.Fatalf("volume: unexpected error: %v", err)
	}
	data := vol.Action["data"].(map[string]any)
	if data["volume_level"] != 0.4 {
		t.Fatalf("volume must scale to 0..1, got %v", data["volume_level"])
	}

	_, err = r.BuildRule(KindMediaPlayer, Values{
		"entity":    "media_player.speaker",
		"operation": "seek",
	}, "alarm_clock.a1")
	var invalid *InvalidFormValueError
	if !errors.As(err, &invalid) || invalid.Field != "operation" {
		t.Fatalf("expected operation error, got %v", err)
	}
}

func TestBuildRuleWrongDomainEntity(t *testing.T) {
	r := NewRegistry()
	_, err := r.BuildRule(KindScene, Values{"entity": "light.kitchen"}, "alarm_clock.a1")
	var invalid *InvalidFormValueError
	if !errors.As(err, &invalid) || invalid.Field != "entity" {
		t.Fatalf("expected entity domain error, got %v", err)
	}
}

func TestBuildRuleScriptAndScene(t *testing.T) {
	r := NewRegistry()
	script, err := r.BuildRule(KindScript, Values{"entity": "script.morning"}, "alarm_clock.a1")
	if err != nil || script.Action["service"] != "script.turn_on" {
		t.Fatalf("script rule wrong: %v %+v", err, script.Action)
	}
	scene, err := r.BuildRule(KindScene, Values{"entity": "scene.sunrise"}, "alarm_clock.a1")
	if err != nil || scene.Action["service"] != "scene.turn_on" {
		t.Fatalf("scene rule wrong: %v %+v", err, scene.Action)
	}
}
