// Package dispatch translates user intents into platform service calls. One
// method per intent; cheap validation happens locally before anything goes
// on the wire, destructive intents require confirmation, and nothing here
// blocks on the platform re-publishing state. The UI keeps rendering the
// previous snapshot until the next push-update flows through the view model.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/ha"
)

// Intent names, used in failure notices.
const (
	IntentToggleAlarm      = "toggle alarm"
	IntentSetTime          = "set time"
	IntentSetDays          = "set days"
	IntentSetRepeat        = "set repeat"
	IntentAddAlarm         = "add alarm"
	IntentRemoveAlarm      = "remove alarm"
	IntentToggleAutomation = "toggle automation"
	IntentDeleteAutomation = "delete automation"
	IntentCreateAutomation = "create automation"
)

// ErrConfirmationDeclined is the normal terminal path of a destructive
// intent the user aborted. Not a failure; the transport is never touched.
var ErrConfirmationDeclined = errors.New("dispatch: confirmation declined")

// InvalidInputError is a local validation failure. It never reaches the
// network.
type InvalidInputError struct {
	Intent string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("dispatch: %s: %s", e.Intent, e.Reason)
}

// CommandFailedError wraps a transport failure, naming the intent so the
// notice shown to the user identifies what failed. The view model is left
// untouched; no optimistic updates, no internal retries.
type CommandFailedError struct {
	Intent string
	Err    error
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("dispatch: %s failed: %v", e.Intent, e.Err)
}

func (e *CommandFailedError) Unwrap() error { return e.Err }

// Confirmer answers whether a destructive action may proceed. There is no
// undo, so the confirmation step is part of the contract, not UI polish.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Dispatcher issues platform service calls for user intents.
type Dispatcher struct {
	caller  ha.ServiceCaller
	store   ha.AutomationStore
	nav     ha.Navigator
	confirm Confirmer
	log     *slog.Logger
}

// New builds a dispatcher. nav may be nil when the host UI offers no
// automation editor; confirm must not be nil.
func New(caller ha.ServiceCaller, store ha.AutomationStore, nav ha.Navigator, confirm Confirmer, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{caller: caller, store: store, nav: nav, confirm: confirm, log: log}
}

// ToggleAlarm flips the enabled flag of one alarm.
func (d *Dispatcher) ToggleAlarm(ctx context.Context, alarmID string) error {
	return d.call(ctx, IntentToggleAlarm, alarm.Domain, "toggle_alarm", map[string]any{
		"entity_id": alarmID,
	})
}

// SetTime sets the alarm's clock time. The HH:MM shape is validated locally
// before any call goes out.
func (d *Dispatcher) SetTime(ctx context.Context, alarmID, value string) error {
	if !alarm.ValidTime(value) {
		return &InvalidInputError{Intent: IntentSetTime, Reason: fmt.Sprintf("%q is not a HH:MM time", value)}
	}
	return d.call(ctx, IntentSetTime, alarm.Domain, "set_time", map[string]any{
		"entity_id": alarmID,
		"time":      value,
	})
}

// SetDays replaces the alarm's weekday set.
func (d *Dispatcher) SetDays(ctx context.Context, alarmID string, days []alarm.Day) error {
	seen := make(map[alarm.Day]bool, len(days))
	tags := make([]string, 0, len(days))
	for _, day := range days {
		if !alarm.ValidDay(day) {
			return &InvalidInputError{Intent: IntentSetDays, Reason: fmt.Sprintf("%q is not a weekday tag", day)}
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		tags = append(tags, string(day))
	}
	return d.call(ctx, IntentSetDays, alarm.Domain, "set_days", map[string]any{
		"entity_id": alarmID,
		"days":      tags,
	})
}

// ToggleDay adds or removes one weekday on the given alarm, sending the
// resulting full set the way the platform service expects it.
func (d *Dispatcher) ToggleDay(ctx context.Context, a alarm.Alarm, day alarm.Day) error {
	if !alarm.ValidDay(day) {
		return &InvalidInputError{Intent: IntentSetDays, Reason: fmt.Sprintf("%q is not a weekday tag", day)}
	}
	return d.SetDays(ctx, a.ID, a.ToggleDays(day))
}

// SetRepeat sets the repeat flag.
func (d *Dispatcher) SetRepeat(ctx context.Context, alarmID string, repeat bool) error {
	return d.call(ctx, IntentSetRepeat, alarm.Domain, "set_repeat", map[string]any{
		"entity_id": alarmID,
		"repeat":    repeat,
	})
}

// AddAlarm requests a new alarm entity. The platform owns id allocation;
// the new entity shows up on a later push-update.
func (d *Dispatcher) AddAlarm(ctx context.Context, name, timeValue string) error {
	if name == "" {
		return &InvalidInputError{Intent: IntentAddAlarm, Reason: "name required"}
	}
	if !alarm.ValidTime(timeValue) {
		return &InvalidInputError{Intent: IntentAddAlarm, Reason: fmt.Sprintf("%q is not a HH:MM time", timeValue)}
	}
	return d.call(ctx, IntentAddAlarm, alarm.Domain, "add_alarm", map[string]any{
		"name":    name,
		"time":    timeValue,
		"enabled": true,
		"repeat":  false,
		"days":    []string{},
	})
}

// RemoveAlarm deletes an alarm after confirmation.
func (d *Dispatcher) RemoveAlarm(ctx context.Context, alarmID string) error {
	if !d.confirm.Confirm(fmt.Sprintf("Remove %s? There is no undo.", alarmID)) {
		return ErrConfirmationDeclined
	}
	return d.call(ctx, IntentRemoveAlarm, alarm.Domain, "remove_alarm", map[string]any{
		"entity_id": alarmID,
	})
}

// ToggleAutomation flips an automation on or off.
func (d *Dispatcher) ToggleAutomation(ctx context.Context, automationID string) error {
	return d.call(ctx, IntentToggleAutomation, automation.Domain, "toggle", map[string]any{
		"entity_id": automationID,
	})
}

// DeleteAutomation removes a stored rule after confirmation, then reloads
// the automation subsystem so the next push-update reflects the removal.
func (d *Dispatcher) DeleteAutomation(ctx context.Context, automationID string) error {
	if !d.confirm.Confirm(fmt.Sprintf("Delete %s? There is no undo.", automationID)) {
		return ErrConfirmationDeclined
	}
	if err := d.store.DeleteRule(ctx, automationID); err != nil {
		return &CommandFailedError{Intent: IntentDeleteAutomation, Err: err}
	}
	if err := d.store.Reload(ctx); err != nil {
		return &CommandFailedError{Intent: IntentDeleteAutomation, Err: err}
	}
	d.log.Debug("automation deleted", "automation", automationID)
	return nil
}

// CreateAutomation persists a generated rule document and reloads the
// automation subsystem. The write is awaited before the reload is issued.
func (d *Dispatcher) CreateAutomation(ctx context.Context, ruleID string, rule automation.RuleDocument) error {
	body, err := json.Marshal(rule)
	if err != nil {
		return &CommandFailedError{Intent: IntentCreateAutomation, Err: err}
	}
	if err := d.store.WriteRule(ctx, ruleID, body); err != nil {
		return &CommandFailedError{Intent: IntentCreateAutomation, Err: err}
	}
	if err := d.store.Reload(ctx); err != nil {
		return &CommandFailedError{Intent: IntentCreateAutomation, Err: err}
	}
	d.log.Debug("automation created", "rule", ruleID, "alarm", rule.Trigger.EntityID)
	return nil
}

// EditAutomation hands off to the host UI's automation editor.
func (d *Dispatcher) EditAutomation(automationID string) {
	if d.nav != nil {
		d.nav.OpenEditor(automationID)
	}
}

// call issues exactly one service call and wraps any failure with the
// intent name.
func (d *Dispatcher) call(ctx context.Context, intent, domain, service string, data map[string]any) error {
	if err := d.caller.Call(ctx, domain, service, data); err != nil {
		return &CommandFailedError{Intent: intent, Err: err}
	}
	d.log.Debug("service call", "domain", domain, "service", service)
	return nil
}
