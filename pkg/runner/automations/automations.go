// Package automations holds the runners behind the automation subcommands.
package automations

import (
	"context"
	"errors"
	"fmt"

	"alarmdeck/pkg/app"
	"alarmdeck/pkg/automation/actions"
	"alarmdeck/pkg/printers"
)

var errNoService = errors.New("can not run, no service")

type List struct {
	AlarmID string
	Service *app.Service
}

func (n *List) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if _, err := n.Service.Refresh(ctx); err != nil {
		return err
	}
	a, ok := n.Service.AlarmByID(n.AlarmID)
	if !ok {
		return fmt.Errorf("alarm %s not found", n.AlarmID)
	}

	pp := printers.PrettyPrint{}
	fmt.Println("")
	pp.Title(a.Name)
	pp.Automations(n.Service.Automations(a.ID)...)
	return nil
}

// Create runs one builder session non-interactively: open with the kind,
// apply the provided values, submit.
type Create struct {
	AlarmID string
	Kind    actions.Kind
	Values  map[string]string
	Service *app.Service
}

func (n *Create) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if _, err := n.Service.Refresh(ctx); err != nil {
		return err
	}
	if _, ok := n.Service.AlarmByID(n.AlarmID); !ok {
		return fmt.Errorf("alarm %s not found", n.AlarmID)
	}

	sess, err := n.Service.NewBuilderSession(ctx, n.AlarmID, n.Kind)
	if err != nil {
		return err
	}
	draft := sess.Draft()
	if draft.SchemaErr != nil {
		return draft.SchemaErr
	}
	for field, value := range n.Values {
		if err := sess.SetValue(field, coerce(draft.Schema, field, value)); err != nil {
			return err
		}
	}
	result, err := sess.Submit(ctx)
	if err != nil {
		_ = sess.Cancel()
		return err
	}
	fmt.Printf("created automation %s\n", result.RuleID)
	return nil
}

// coerce converts a flag string into the type the form field expects, so
// numeric fields validate as numbers instead of failing as strings. Unknown
// fields pass through untouched and fail validation downstream.
func coerce(schema actions.FormSchema, field, value string) any {
	for _, f := range schema.Fields {
		if f.Name != field {
			continue
		}
		if f.Type == actions.FieldNumber {
			var num int
			if _, err := fmt.Sscanf(value, "%d", &num); err == nil {
				return num
			}
		}
		break
	}
	return value
}

type Toggle struct {
	AutomationID string
	Service      *app.Service
}

func (n *Toggle) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	return n.Service.Dispatcher().ToggleAutomation(ctx, n.AutomationID)
}

// Edit hands the automation off to the configured editor.
type Edit struct {
	AutomationID string
	Service      *app.Service
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if _, err := n.Service.Refresh(ctx); err != nil {
		return err
	}
	n.Service.Dispatcher().EditAutomation(n.AutomationID)
	return nil
}

type Delete struct {
	RuleID  string
	Service *app.Service
}

func (n *Delete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if err := n.Service.Dispatcher().DeleteAutomation(ctx, n.RuleID); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", n.RuleID)
	return nil
}
