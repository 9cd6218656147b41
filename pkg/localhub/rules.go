package localhub

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/ha"
)

// WriteRule persists a rule document. The entity record does not exist until
// Reload runs, mirroring how the platform only picks up rule edits on reload.
func (h *Hub) WriteRule(ctx context.Context, id string, rule json.RawMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var doc automation.RuleDocument
	if err := json.Unmarshal(rule, &doc); err != nil {
		return fmt.Errorf("rule %s: %w", id, err)
	}
	return h.d.Write(rulesSpace+"."+id, rule)
}

// RulePath returns the file backing a rule id.
func (h *Hub) RulePath(ruleID string) string {
	return filepath.Join(h.basePath, rulesSpace, ruleID)
}

// OpenEditor opens the rule behind an automation in $EDITOR. Without an
// editor configured it prints the file path instead, which is as close to
// the platform's automation editor as a local hub gets.
func (h *Hub) OpenEditor(automationID string) {
	id := strings.TrimPrefix(automationID, automation.Domain+".")
	path := h.RulePath(id)

	editor := os.Getenv("EDITOR")
	if editor == "" {
		fmt.Println(path)
		return
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	_ = cmd.Run()
}

func (h *Hub) DeleteRule(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.eraseRecord(rulesSpace + "." + id)
}

// Reload reconciles automation entity records against the stored rules:
// entities gain or lose backing rules, and entities whose rule is gone are
// removed. Existing on/off state survives the reload.
func (h *Hub) Reload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reloadLocked(ctx)
}

func (h *Hub) reloadLocked(ctx context.Context) error {
	ruleIDs := map[string]bool{}
	for key := range h.d.Keys(ctx.Done()) {
		id, found := strings.CutPrefix(key, rulesSpace+".")
		if !found {
			continue
		}
		ruleIDs[id] = true

		raw, err := h.d.Read(key)
		if err != nil {
			return fmt.Errorf("rule %s: %w", id, err)
		}
		var doc automation.RuleDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("rule %s: %w", id, err)
		}

		entityID := automation.Domain + "." + id
		state := "on"
		if prev, err := h.readRecord(entityID); err == nil && prev.State != "" {
			state = prev.State
		}
		if err := h.touch(ha.EntityRecord{
			EntityID: entityID,
			State:    state,
			Attributes: map[string]any{
				"friendly_name": doc.Alias,
				"trigger": []any{map[string]any{
					"platform":  doc.Trigger.Platform,
					"entity_id": doc.Trigger.EntityID,
					"to":        doc.Trigger.To,
				}},
			},
		}); err != nil {
			return err
		}
	}

	// Drop automation entities whose rule no longer exists.
	var orphans []string
	for key := range h.d.Keys(ctx.Done()) {
		id, found := strings.CutPrefix(key, automation.Domain+".")
		if found && !ruleIDs[id] {
			orphans = append(orphans, key)
		}
	}
	for _, key := range orphans {
		if err := h.eraseRecord(key); err != nil {
			return err
		}
	}
	return nil
}
