package builder

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/automation/actions"
	"alarmdeck/pkg/ha"
)

type fakeCatalog struct {
	err error
}

func (f *fakeCatalog) Entities(ctx context.Context, domainPrefix string) ([]ha.EntityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []ha.EntityRecord{{EntityID: domainPrefix + "demo"}}, nil
}

func (f *fakeCatalog) Services(ctx context.Context) (map[string][]string, error) {
	return nil, f.err
}

type fakeStore struct {
	ops      []string
	writeErr error
	rules    map[string]json.RawMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{rules: make(map[string]json.RawMessage)}
}

func (f *fakeStore) WriteRule(ctx context.Context, id string, rule json.RawMessage) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.ops = append(f.ops, "write")
	f.rules[id] = rule
	return nil
}

func (f *fakeStore) DeleteRule(ctx context.Context, id string) error {
	f.ops = append(f.ops, "delete")
	delete(f.rules, id)
	return nil
}

func (f *fakeStore) Reload(ctx context.Context) error {
	f.ops = append(f.ops, "reload")
	return nil
}

func newSession(t *testing.T, catalog ha.Catalog, store ha.AutomationStore) *Session {
	t.Helper()
	s, err := NewSession(actions.NewRegistry(), catalog, store)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestSessionStartsClosed(t *testing.T) {
	s := newSession(t, &fakeCatalog{}, newFakeStore())
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}
	if s.Draft() != nil {
		t.Fatalf("closed session must have no draft")
	}
}

func TestOpenPopulatesForm(t *testing.T) {
	s := newSession(t, &fakeCatalog{}, newFakeStore())
	if err := s.Open(context.Background(), "alarm_clock.a1", actions.KindLight); err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.State() != StateForm {
		t.Fatalf("expected form, got %s", s.State())
	}
	draft := s.Draft()
	if draft == nil || draft.AlarmID != "alarm_clock.a1" || draft.Kind != actions.KindLight {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if len(draft.Schema.Fields) == 0 {
		t.Fatalf("schema not described")
	}
}

func TestOpenUnknownKindStaysClosed(t *testing.T) {
	s := newSession(t, &fakeCatalog{}, newFakeStore())
	if err := s.Open(context.Background(), "alarm_clock.a1", actions.Kind("nope")); !errors.Is(err, actions.ErrUnknownKind) {
		t.Fatalf("expected unknown kind, got %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("session must stay closed, got %s", s.State())
	}
}

func TestOpenWithBrokenCatalogStillOpens(t *testing.T) {
	s := newSession(t, &fakeCatalog{err: errors.New("down")}, newFakeStore())
	if err := s.Open(context.Background(), "alarm_clock.a1", actions.KindLight); err != nil {
		t.Fatalf("open: %v", err)
	}
	draft := s.Draft()
	if !errors.Is(draft.SchemaErr, actions.ErrCapabilityUnavailable) {
		t.Fatalf("expected capability notice on draft, got %v", draft.SchemaErr)
	}
	if len(draft.Schema.Fields) == 0 {
		t.Fatalf("form must stay usable with empty choices")
	}
}

func TestSetKindResetsValuesKeepsTarget(t *testing.T) {
	s := newSession(t, &fakeCatalog{}, newFakeStore())
	if err := s.Open(context.Background(), "alarm_clock.a1", actions.KindLight); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SetValue("brightness", 80); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if err := s.SetKind(context.Background(), actions.KindNotify); err != nil {
		t.Fatalf("set kind: %v", err)
	}
	draft := s.Draft()
	if draft.Kind != actions.KindNotify {
		t.Fatalf("kind not switched: %s", draft.Kind)
	}
	if draft.AlarmID != "alarm_clock.a1" {
		t.Fatalf("target alarm must survive kind change")
	}
	if len(draft.Values) != 0 {
		t.Fatalf("kind change must reset values, got %v", draft.Values)
	}
	if s.State() != StateForm {
		t.Fatalf("still in form, got %s", s.State())
	}
}

func TestCancelDiscardsDraftSendsNothing(t *testing.T) {
	store := newFakeStore()
	s := newSession(t, &fakeCatalog{}, store)
	if err := s.Open(context.Background(), "alarm_clock.a1", actions.KindNotify); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SetValue("message", "half typed"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s.State() != StateClosed || s.Draft() != nil {
		t.Fatalf("cancel must close and discard, state=%s", s.State())
	}
	if len(store.ops) != 0 {
		t.Fatalf("nothing may reach the store on cancel, got %v", store.ops)
	}
}

func TestSubmitWritesThenReloadsAndCloses(t *testing.T) {
	store := newFakeStore()
	s := newSession(t, &fakeCatalog{}, store)
	if err := s.Open(context.Background(), "alarm_clock.a1", actions.KindNotify); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SetValue("message", "Wake up"); err != nil {
		t.Fatalf("set value: %v", err)
	}

	result, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if s.State() != StateClosed || s.Draft() != nil {
		t.Fatalf("submission must close the session")
	}
	if len(store.ops) != 2 || store.ops[0] != "write" || store.ops[1] != "reload" {
		t.Fatalf("expected write then reload, got %v", store.ops)
	}
	if result.Rule.Trigger.EntityID != "alarm_clock.a1" {
		t.Fatalf("rule not bound to alarm: %+v", result.Rule.Trigger)
	}
	if !strings.HasPrefix(result.RuleID, "a1_notify_") {
		t.Fatalf("rule id should start with the domain-stripped slug and kind, got %q", result.RuleID)
	}

	var persisted automation.RuleDocument
	if err := json.Unmarshal(store.rules[result.RuleID], &persisted); err != nil {
		t.Fatalf("persisted rule not valid JSON: %v", err)
	}
	if persisted.Trigger.To != "triggered" {
		t.Fatalf("persisted trigger wrong: %+v", persisted.Trigger)
	}
}

func TestSubmitValidationFailureKeepsFormOpen(t *testing.T) {
	store := newFakeStore()
	s := newSession(t, &fakeCatalog{}, store)
	if err := s.Open(context.Background(), "alarm_clock.a1", actions.KindLight); err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.SetValue("entity", "light.kitchen")
	_ = s.SetValue("brightness", 150)

	_, err := s.Submit(context.Background())
	var invalid *actions.InvalidFormValueError
	if !errors.As(err, &invalid) || invalid.Field != "brightness" {
		t.Fatalf("expected brightness error, got %v", err)
	}
	if s.State() != StateForm {
		t.Fatalf("validation failure must keep the form open, got %s", s.State())
	}
	if len(store.ops) != 0 {
		t.Fatalf("invalid draft must not reach the store, got %v", store.ops)
	}
}

func TestSubmitPersistFailureReturnsToForm(t *testing.T) {
	store := newFakeStore()
	store.writeErr = errors.New("disk full")
	s := newSession(t, &fakeCatalog{}, store)
	if err := s.Open(context.Background(), "alarm_clock.a1", actions.KindNotify); err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.SetValue("message", "Wake up")

	_, err := s.Submit(context.Background())
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if s.State() != StateForm {
		t.Fatalf("persist failure must return to form, got %s", s.State())
	}
	if s.Draft() == nil || s.Draft().Values["message"] != "Wake up" {
		t.Fatalf("draft must survive for retry")
	}
}
