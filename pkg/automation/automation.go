// Package automation reads the platform's trigger/action rules back out of
// the global snapshot and defines the rule document the builder sends in.
package automation

import (
	"strings"

	"alarmdeck/pkg/ha"
)

// Domain is the entity-id prefix for automation records.
const Domain = "automation"

// Summary is one automation as observed in the snapshot. Read-only to the
// client; all mutation goes through the platform.
type Summary struct {
	ID          string
	DisplayName string
	Active      bool
	TriggerRefs []string
}

// Trigger is the state-change trigger of a rule document: fires when the
// bound entity transitions into the given state.
type Trigger struct {
	Platform string `json:"platform"`
	EntityID string `json:"entity_id"`
	To       string `json:"to"`
}

// RuleDocument is the persisted rule layout. Constructed transiently by the
// action-kind registry, written once, then discarded; the client observes
// the authoritative copy again through Match.
type RuleDocument struct {
	Alias       string         `json:"alias"`
	Description string         `json:"description"`
	Trigger     Trigger        `json:"trigger"`
	Action      map[string]any `json:"action"`
}

// Match returns the automations whose trigger set references alarmID, in
// snapshot enumeration order restricted to automation-domain records. An
// automation with several matching triggers appears once. No matches yields
// an empty list, which callers render as an explicit "none configured".
func Match(snap ha.Snapshot, alarmID string) []Summary {
	prefix := Domain + "."
	var out []Summary
	snap.Each(func(r ha.EntityRecord) bool {
		if !strings.HasPrefix(r.EntityID, prefix) {
			return true
		}
		refs := triggerRefs(r)
		for _, ref := range refs {
			if ref == alarmID {
				out = append(out, Summary{
					ID:          r.EntityID,
					DisplayName: displayName(r),
					Active:      r.State == "on",
					TriggerRefs: refs,
				})
				break
			}
		}
		return true
	})
	return out
}

// triggerRefs extracts the entity ids referenced by state triggers. The
// attribute arrives as a list of trigger objects decoded from JSON.
func triggerRefs(r ha.EntityRecord) []string {
	raw, ok := r.Attr("trigger").([]any)
	if !ok {
		return nil
	}
	var refs []string
	for _, item := range raw {
		t, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if platform, _ := t["platform"].(string); platform != "state" {
			continue
		}
		if id, _ := t["entity_id"].(string); id != "" {
			refs = append(refs, id)
		}
	}
	return refs
}

func displayName(r ha.EntityRecord) string {
	if name := r.StringAttr("friendly_name"); name != "" {
		return name
	}
	return strings.TrimPrefix(r.EntityID, Domain+".")
}
