package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"alarmdeck/pkg/app"
	"alarmdeck/pkg/automation/actions"
	"alarmdeck/pkg/builder"
	"alarmdeck/pkg/tui/theme"
)

// wizardStep is the active stage of the builder overlay.
type wizardStep int

const (
	stepKind wizardStep = iota
	stepField
	stepConfirm
)

// wizard drives one automation builder session: pick a kind, fill the form
// fields one at a time, confirm, submit.
type wizard struct {
	svc     *app.Service
	session *builder.Session
	alarmID string

	step       wizardStep
	kinds      []actions.Kind
	kindIndex  int
	fieldIndex int
	choice     int
	input      textinput.Model
	problem    string

	width  int
	height int
	theme  theme.Theme
}

func newWizard(svc *app.Service, alarmID string, th theme.Theme) *wizard {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = ""
	return &wizard{
		svc:     svc,
		alarmID: alarmID,
		kinds:   svc.ActionKinds(),
		input:   ti,
		theme:   th,
	}
}

func (w *wizard) schema() actions.FormSchema {
	if w.session == nil || w.session.Draft() == nil {
		return actions.FormSchema{}
	}
	return w.session.Draft().Schema
}

func (w *wizard) currentField() (actions.Field, bool) {
	fields := w.schema().Fields
	if w.fieldIndex < 0 || w.fieldIndex >= len(fields) {
		return actions.Field{}, false
	}
	return fields[w.fieldIndex], true
}

// handleKey consumes one key press. It reports whether the overlay is done
// and a status line for the host model.
func (w *wizard) handleKey(ctx context.Context, msg tea.KeyPressMsg) (done bool, status string, cmd tea.Cmd) {
	switch w.step {
	case stepKind:
		return w.handleKindKey(ctx, msg)
	case stepField:
		return w.handleFieldKey(ctx, msg)
	case stepConfirm:
		return w.handleConfirmKey(ctx, msg)
	}
	return false, "", nil
}

func (w *wizard) handleKindKey(ctx context.Context, msg tea.KeyPressMsg) (bool, string, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		// A session already exists when the user stepped back here from a
		// field; it must close through the cancel transition, not leak open.
		_ = w.cancel()
		return true, "Automation cancelled", nil
	case "up", "k":
		if w.kindIndex > 0 {
			w.kindIndex--
		} else {
			w.kindIndex = len(w.kinds) - 1
		}
	case "down", "j":
		if w.kindIndex < len(w.kinds)-1 {
			w.kindIndex++
		} else {
			w.kindIndex = 0
		}
	case "enter":
		kind := w.kinds[w.kindIndex]
		if w.session == nil {
			sess, err := w.svc.NewBuilderSession(ctx, w.alarmID, kind)
			if err != nil {
				return true, "ERR: " + err.Error(), nil
			}
			w.session = sess
		} else if err := w.session.SetKind(ctx, kind); err != nil {
			return true, "ERR: " + err.Error(), nil
		}
		w.problem = schemaProblem(w.session.Draft().SchemaErr)
		w.fieldIndex = 0
		w.enterField()
		if len(w.schema().Fields) == 0 {
			w.step = stepConfirm
		} else {
			w.step = stepField
		}
	}
	return false, "", nil
}

func (w *wizard) handleFieldKey(ctx context.Context, msg tea.KeyPressMsg) (bool, string, tea.Cmd) {
	field, ok := w.currentField()
	if !ok {
		w.step = stepConfirm
		return false, "", nil
	}

	switch msg.String() {
	case "esc":
		_ = w.cancel()
		return true, "Automation cancelled", nil
	case "ctrl+b":
		if w.fieldIndex > 0 {
			w.fieldIndex--
			w.enterField()
		} else {
			w.step = stepKind
		}
		return false, "", nil
	case "enter":
		if err := w.commitField(field); err != nil {
			w.problem = err.Error()
			return false, "", nil
		}
		w.problem = ""
		if w.fieldIndex+1 < len(w.schema().Fields) {
			w.fieldIndex++
			w.enterField()
		} else {
			w.step = stepConfirm
		}
		return false, "", nil
	}

	if field.Type == actions.FieldChoice {
		switch msg.String() {
		case "up", "k":
			if w.choice > 0 {
				w.choice--
			} else if n := len(field.Choices); n > 0 {
				w.choice = n - 1
			}
		case "down", "j":
			if w.choice < len(field.Choices)-1 {
				w.choice++
			} else {
				w.choice = 0
			}
		}
		return false, "", nil
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return false, "", cmd
}

func (w *wizard) handleConfirmKey(ctx context.Context, msg tea.KeyPressMsg) (bool, string, tea.Cmd) {
	switch msg.String() {
	case "esc":
		_ = w.cancel()
		return true, "Automation cancelled", nil
	case "ctrl+b":
		if n := len(w.schema().Fields); n > 0 {
			w.fieldIndex = n - 1
			w.enterField()
			w.step = stepField
		} else {
			w.step = stepKind
		}
	case "enter":
		result, err := w.session.Submit(ctx)
		if err != nil {
			var invalid *actions.InvalidFormValueError
			if errors.As(err, &invalid) {
				// Jump back to the offending field; the session form stays
				// open across a rejected submit.
				w.problem = invalid.Reason
				w.focusField(invalid.Field)
				w.step = stepField
				return false, "", nil
			}
			w.problem = err.Error()
			return false, "", nil
		}
		return true, fmt.Sprintf("Created automation %s", result.RuleID), nil
	}
	return false, "", nil
}

// commitField validates nothing itself; it records the widget's value on the
// draft. Range and entity checks happen on submit.
func (w *wizard) commitField(field actions.Field) error {
	switch field.Type {
	case actions.FieldChoice:
		if len(field.Choices) == 0 {
			if field.Required {
				return fmt.Errorf("no %s available", field.Label)
			}
			return nil
		}
		return w.session.SetValue(field.Name, field.Choices[w.choice].Value)
	case actions.FieldNumber:
		raw := strings.TrimSpace(w.input.Value())
		if raw == "" && !field.Required {
			return nil
		}
		num, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be a number", field.Label)
		}
		return w.session.SetValue(field.Name, num)
	default:
		value := strings.TrimSpace(w.input.Value())
		if value == "" && field.Required {
			return fmt.Errorf("%s is required", field.Label)
		}
		return w.session.SetValue(field.Name, value)
	}
}

// enterField resets the widget state for the current field, restoring any
// value already on the draft.
func (w *wizard) enterField() {
	field, ok := w.currentField()
	if !ok {
		return
	}
	w.choice = 0
	w.input.Reset()
	w.input.Placeholder = field.Label

	draft := w.session.Draft()
	if draft == nil {
		return
	}
	prev, ok := draft.Values[field.Name]
	if !ok {
		w.input.Focus()
		return
	}
	switch field.Type {
	case actions.FieldChoice:
		for i, c := range field.Choices {
			if c.Value == prev {
				w.choice = i
				break
			}
		}
	case actions.FieldNumber:
		if n, ok := prev.(int); ok {
			w.input.SetValue(strconv.Itoa(n))
		}
	default:
		if s, ok := prev.(string); ok {
			w.input.SetValue(s)
		}
	}
	w.input.CursorEnd()
	w.input.Focus()
}

func (w *wizard) focusField(name string) {
	for i, f := range w.schema().Fields {
		if f.Name == name {
			w.fieldIndex = i
			break
		}
	}
	w.enterField()
}

func (w *wizard) cancel() error {
	if w.session == nil {
		return nil
	}
	return w.session.Cancel()
}

func (w *wizard) setSize(width, height int) {
	w.width = width
	w.height = height
}

func (w *wizard) view() string {
	width := w.width
	if width <= 0 {
		width = 80
	}
	height := w.height
	if height <= 0 {
		height = 24
	}

	lines := []string{w.theme.Modal.Title.Render("New Automation"), ""}
	body := w.theme.Modal.Body

	switch w.step {
	case stepKind:
		lines = append(lines, body.Render("Action"))
		for i, kind := range w.kinds {
			marker := "  "
			if i == w.kindIndex {
				marker = "→ "
			}
			lines = append(lines, body.Render(marker+string(kind)))
		}
		lines = append(lines, "", body.Render("↑/↓ move · Enter next · Esc cancel"))
	case stepField:
		lines = append(lines, body.Render(w.schema().Title), "")
		field, _ := w.currentField()
		lines = append(lines, body.Render(field.Label))
		if field.Type == actions.FieldChoice {
			if len(field.Choices) == 0 {
				lines = append(lines, body.Render("  (nothing available)"))
			}
			for i, c := range field.Choices {
				marker := "  "
				if i == w.choice {
					marker = "→ "
				}
				lines = append(lines, body.Render(marker+c.Label))
			}
		} else {
			lines = append(lines, body.Render(w.input.View()))
		}
		if w.problem != "" {
			lines = append(lines, "", w.theme.Footer.Error.Render(w.problem))
		}
		lines = append(lines, "", body.Render("Enter next · ctrl+b back · Esc cancel"))
	case stepConfirm:
		lines = append(lines, body.Render(fmt.Sprintf("Create %s automation for %s?", w.kinds[w.kindIndex], w.alarmID)))
		if w.problem != "" {
			lines = append(lines, "", w.theme.Footer.Error.Render(w.problem))
		}
		lines = append(lines, "", body.Render("Enter create · ctrl+b back · Esc cancel"))
	}

	panel := w.theme.Modal.Frame.Width(modalWidth(width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}

// schemaProblem renders a capability failure as a user-facing line. The form
// stays open; choice fields are simply empty.
func schemaProblem(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, actions.ErrCapabilityUnavailable) {
		return "Some choices are unavailable right now"
	}
	return err.Error()
}

func modalWidth(width int) int {
	w := width - 8
	if w > 60 {
		w = 60
	}
	if w < 24 {
		w = width - 4
		if w < 20 {
			w = 20
		}
	}
	return w
}
