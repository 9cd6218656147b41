// Package builder runs one automation-builder session: pick an action kind,
// fill the generated form, submit. The session lifecycle is a small state
// machine; submission and cancellation both close it, and a cancelled draft
// is discarded without anything reaching the platform.
package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anggasct/fluo"
	"github.com/google/uuid"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/automation/actions"
	"alarmdeck/pkg/ha"
)

// Session states.
const (
	StateClosed    = "closed"
	StateForm      = "form"
	StateSubmitted = "submitted"
)

// Session events.
const (
	eventOpen   = "open"
	eventKind   = "kind"
	eventSubmit = "submit"
	eventFinish = "finish"
	eventRetry  = "retry"
	eventCancel = "cancel"
)

// ErrNotOpen reports a form operation against a closed session.
var ErrNotOpen = errors.New("builder: no form open")

// Draft is the in-flight form state for one builder session.
type Draft struct {
	AlarmID string
	Kind    actions.Kind
	Schema  actions.FormSchema
	Values  actions.Values
	// SchemaErr carries a capability-catalog failure. The form stays usable
	// with empty choice lists; the UI surfaces the notice.
	SchemaErr error
}

// Result describes a successful submission.
type Result struct {
	RuleID string
	Rule   automation.RuleDocument
}

// Session is one builder workflow bound to a target alarm. Not safe for
// concurrent use; the client is event-driven and single-threaded.
type Session struct {
	registry *actions.Registry
	catalog  ha.Catalog
	store    ha.AutomationStore

	machine fluo.Machine
	draft   *Draft
}

// NewSession wires a session against the capability catalog and automation
// store. The machine starts closed.
func NewSession(registry *actions.Registry, catalog ha.Catalog, store ha.AutomationStore) (*Session, error) {
	definition := fluo.NewMachine().
		State(StateClosed).Initial().
		To(StateForm).On(eventOpen).
		State(StateForm).
		ToSelf().On(eventKind).
		To(StateSubmitted).On(eventSubmit).
		To(StateClosed).On(eventCancel).
		State(StateSubmitted).
		To(StateClosed).On(eventFinish).
		To(StateForm).On(eventRetry).
		Build()

	machine := definition.CreateInstance()
	if err := machine.Start(); err != nil {
		return nil, fmt.Errorf("builder: start session machine: %w", err)
	}
	return &Session{
		registry: registry,
		catalog:  catalog,
		store:    store,
		machine:  machine,
	}, nil
}

// State reports the current session state.
func (s *Session) State() string {
	return s.machine.CurrentState()
}

// Draft returns the in-flight draft, or nil when the session is closed.
func (s *Session) Draft() *Draft {
	return s.draft
}

// Open starts a builder session for the target alarm with the given kind.
// The capability catalog is queried lazily, here and on kind changes only.
func (s *Session) Open(ctx context.Context, alarmID string, kind actions.Kind) error {
	if _, ok := s.registry.Lookup(kind); !ok {
		return fmt.Errorf("%w: %q", actions.ErrUnknownKind, kind)
	}
	if err := s.send(eventOpen); err != nil {
		return err
	}
	s.draft = &Draft{AlarmID: alarmID, Values: actions.Values{}}
	s.describe(ctx, kind)
	return nil
}

// SetKind switches the form to another action kind. Kind-specific values are
// reset; the target alarm is kept.
func (s *Session) SetKind(ctx context.Context, kind actions.Kind) error {
	if s.draft == nil {
		return ErrNotOpen
	}
	if _, ok := s.registry.Lookup(kind); !ok {
		return fmt.Errorf("%w: %q", actions.ErrUnknownKind, kind)
	}
	if err := s.send(eventKind); err != nil {
		return err
	}
	s.draft.Values = actions.Values{}
	s.describe(ctx, kind)
	return nil
}

// SetValue records one form value on the draft.
func (s *Session) SetValue(field string, value any) error {
	if s.draft == nil {
		return ErrNotOpen
	}
	s.draft.Values[field] = value
	return nil
}

// Submit validates the draft, generates the rule document, persists it, and
// closes the session. The write is awaited before the reload is issued; the
// ordering is the client's, not the platform scheduler's. A validation or
// persistence failure leaves the form open so the user can correct and
// retry.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	if s.draft == nil {
		return Result{}, ErrNotOpen
	}

	rule, err := s.registry.BuildRule(s.draft.Kind, s.draft.Values, s.draft.AlarmID)
	if err != nil {
		return Result{}, err
	}

	if err := s.send(eventSubmit); err != nil {
		return Result{}, err
	}

	ruleID := newRuleID(s.draft.AlarmID, s.draft.Kind)
	body, err := json.Marshal(rule)
	if err == nil {
		err = s.store.WriteRule(ctx, ruleID, body)
	}
	if err == nil {
		err = s.store.Reload(ctx)
	}
	if err != nil {
		// Back to the form; the draft survives so the user can retry.
		s.machine.HandleEvent(eventRetry, nil)
		return Result{}, fmt.Errorf("builder: persist rule: %w", err)
	}

	if err := s.send(eventFinish); err != nil {
		return Result{}, err
	}
	s.draft = nil
	return Result{RuleID: ruleID, Rule: rule}, nil
}

// Cancel closes the session and discards the draft. No partial rule is ever
// sent.
func (s *Session) Cancel() error {
	if s.draft == nil {
		return nil
	}
	if err := s.send(eventCancel); err != nil {
		return err
	}
	s.draft = nil
	return nil
}

// describe fills the draft schema for kind, keeping the catalog failure
// (if any) on the draft for the UI to surface.
func (s *Session) describe(ctx context.Context, kind actions.Kind) {
	schema, err := s.registry.DescribeForm(ctx, kind, s.catalog)
	s.draft.Kind = kind
	s.draft.Schema = schema
	s.draft.SchemaErr = err
}

func (s *Session) send(event string) error {
	result := s.machine.HandleEvent(event, nil)
	if result.Error != nil {
		return fmt.Errorf("builder: %s: %w", event, result.Error)
	}
	if !result.Processed {
		return fmt.Errorf("builder: %s not allowed in state %s", event, s.machine.CurrentState())
	}
	return nil
}

func newRuleID(alarmID string, kind actions.Kind) string {
	slug := strings.ReplaceAll(strings.TrimPrefix(alarmID, alarm.Domain+"."), ".", "_")
	return fmt.Sprintf("%s_%s_%s", slug, kind, uuid.NewString()[:8])
}
