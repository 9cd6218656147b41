package ha

import (
	"context"
	"encoding/json"
	"time"
)

// EntityRecord is one entity as published by the platform state store.
type EntityRecord struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastUpdated time.Time      `json:"last_updated,omitempty"`
}

// Attr returns a raw attribute value, or nil when absent.
func (r EntityRecord) Attr(key string) any {
	if r.Attributes == nil {
		return nil
	}
	return r.Attributes[key]
}

// StringAttr returns an attribute coerced to string.
func (r EntityRecord) StringAttr(key string) string {
	if s, ok := r.Attr(key).(string); ok {
		return s
	}
	return ""
}

// BoolAttr returns an attribute coerced to bool.
func (r EntityRecord) BoolAttr(key string) bool {
	if b, ok := r.Attr(key).(bool); ok {
		return b
	}
	return false
}

// StringsAttr returns a list attribute coerced to strings. JSON decoding
// yields []any, so both shapes are accepted.
func (r EntityRecord) StringsAttr(key string) []string {
	switch v := r.Attr(key).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// States is the platform state store as seen by the client: a snapshot of
// everything, plus a push channel that fires whenever anything changes.
// Delivery is at-least-once and updates may be coalesced; there is no
// ordering guarantee relative to service call completion.
type States interface {
	Current(ctx context.Context) (Snapshot, error)
	Watch(ctx context.Context) (<-chan Snapshot, error)
}

// ServiceCaller executes one platform service call. At most one attempt per
// invocation; retries are the platform's business, not the client's.
type ServiceCaller interface {
	Call(ctx context.Context, domain, service string, data map[string]any) error
}

// Catalog is the platform's live inventory of controllable entities and
// services, queried lazily when the automation builder opens.
type Catalog interface {
	Entities(ctx context.Context, domainPrefix string) ([]EntityRecord, error)
	Services(ctx context.Context) (map[string][]string, error)
}

// AutomationStore persists and reloads trigger/action rules. The rule body
// is the already-rendered document; the store does not interpret it beyond
// keeping it addressable by id.
type AutomationStore interface {
	WriteRule(ctx context.Context, id string, rule json.RawMessage) error
	DeleteRule(ctx context.Context, id string) error
	Reload(ctx context.Context) error
}

// Navigator hands navigation off to the host UI. Fire and forget.
type Navigator interface {
	OpenEditor(automationID string)
}
