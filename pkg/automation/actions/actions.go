// Package actions maps action kinds to the form a builder shows for them and
// the rule document generated on submit. Kinds live in one registry; nothing
// outside this package branches on a kind tag, so adding a kind is a single
// Register call.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/ha"
)

// Kind tags an action variant.
type Kind string

// Built-in kinds.
const (
	KindLight       Kind = "light"
	KindMediaPlayer Kind = "media_player"
	KindNotify      Kind = "notify"
	KindScript      Kind = "script"
	KindScene       Kind = "scene"
)

// ErrCapabilityUnavailable wraps a failed capability-catalog query. The
// builder shows an empty choice list in that case instead of crashing.
var ErrCapabilityUnavailable = errors.New("actions: capability catalog unavailable")

// ErrUnknownKind reports a kind no one registered.
var ErrUnknownKind = errors.New("actions: unknown action kind")

// InvalidFormValueError names the form field that failed validation. It
// blocks submission; values are never silently clamped into range.
type InvalidFormValueError struct {
	Field  string
	Reason string
}

func (e *InvalidFormValueError) Error() string {
	return fmt.Sprintf("actions: invalid value for %q: %s", e.Field, e.Reason)
}

// FieldType selects the widget for a form field.
type FieldType string

// Field widget types.
const (
	FieldChoice FieldType = "choice"
	FieldNumber FieldType = "number"
	FieldText   FieldType = "text"
)

// Choice is one selectable option of a choice field.
type Choice struct {
	Value string
	Label string
}

// Field describes one form input and its valid range or options.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	Min      float64
	Max      float64
	Choices  []Choice
}

// FormSchema is the shape of the builder form for one kind.
type FormSchema struct {
	Kind   Kind
	Title  string
	Fields []Field
}

// Values holds submitted form values keyed by field name.
type Values map[string]any

// Definition binds a kind to its form descriptor and rule generator. Both
// are pure: DescribeForm reads the catalog, BuildRule reads only its inputs.
type Definition struct {
	Kind         Kind
	Title        string
	DescribeForm func(ctx context.Context, catalog ha.Catalog) (FormSchema, error)
	BuildRule    func(values Values, alarmID string) (automation.RuleDocument, error)
}

// Registry maps kinds to definitions, in registration order.
type Registry struct {
	kinds map[Kind]Definition
	order []Kind
}

// NewRegistry returns a registry with the built-in kinds registered.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[Kind]Definition)}
	r.Register(lightDefinition())
	r.Register(mediaPlayerDefinition())
	r.Register(notifyDefinition())
	r.Register(scriptDefinition())
	r.Register(sceneDefinition())
	return r
}

// Register adds or replaces a kind.
func (r *Registry) Register(def Definition) {
	if _, exists := r.kinds[def.Kind]; !exists {
		r.order = append(r.order, def.Kind)
	}
	r.kinds[def.Kind] = def
}

// Kinds lists registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the definition for kind.
func (r *Registry) Lookup(kind Kind) (Definition, bool) {
	def, ok := r.kinds[kind]
	return def, ok
}

// DescribeForm builds the form schema for kind from the live catalog. On a
// catalog failure the schema still comes back usable (choice fields empty)
// together with an error wrapping ErrCapabilityUnavailable.
func (r *Registry) DescribeForm(ctx context.Context, kind Kind, catalog ha.Catalog) (FormSchema, error) {
	def, ok := r.kinds[kind]
	if !ok {
		return FormSchema{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return def.DescribeForm(ctx, catalog)
}

// BuildRule validates values and generates the rule document for kind,
// bound to the target alarm's triggered transition.
func (r *Registry) BuildRule(kind Kind, values Values, alarmID string) (automation.RuleDocument, error) {
	def, ok := r.kinds[kind]
	if !ok {
		return automation.RuleDocument{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return def.BuildRule(values, alarmID)
}

// entityChoices loads choice options for one entity domain. A catalog error
// yields an empty list plus the wrapped error, never a crash.
func entityChoices(ctx context.Context, catalog ha.Catalog, domainPrefix string) ([]Choice, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", ErrCapabilityUnavailable)
	}
	records, err := catalog.Entities(ctx, domainPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}
	choices := make([]Choice, 0, len(records))
	for _, r := range records {
		label := r.StringAttr("friendly_name")
		if label == "" {
			label = r.EntityID
		}
		choices = append(choices, Choice{Value: r.EntityID, Label: label})
	}
	sort.Slice(choices, func(i, j int) bool { return choices[i].Value < choices[j].Value })
	return choices, nil
}
