package actions

import (
	"context"
	"fmt"
	"strings"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/ha"
)

// Declared ranges. Validation rejects values outside them outright; nothing
// is clamped on the way in.
const (
	brightnessMin = 0
	brightnessMax = 100
	transitionMin = 0
	transitionMax = 300
	volumeMin     = 0
	volumeMax     = 100
)

// Media player operations.
const (
	OpPlay      = "play"
	OpVolumeSet = "volume_set"
)

func lightDefinition() Definition {
	return Definition{
		Kind:  KindLight,
		Title: "Turn on a light",
		DescribeForm: func(ctx context.Context, catalog ha.Catalog) (FormSchema, error) {
			choices, err := entityChoices(ctx, catalog, "light.")
			return FormSchema{
				Kind:  KindLight,
				Title: "Turn on a light",
				Fields: []Field{
					{Name: "entity", Label: "Light", Type: FieldChoice, Required: true, Choices: choices},
					{Name: "brightness", Label: "Brightness %", Type: FieldNumber, Required: true, Min: brightnessMin, Max: brightnessMax},
					{Name: "transition", Label: "Transition (s)", Type: FieldNumber, Min: transitionMin, Max: transitionMax},
				},
			}, err
		},
		BuildRule: func(values Values, alarmID string) (automation.RuleDocument, error) {
			entity, err := requireEntity(values, "entity", "light.")
			if err != nil {
				return automation.RuleDocument{}, err
			}
			brightness, err := requireNumber(values, "brightness", brightnessMin, brightnessMax)
			if err != nil {
				return automation.RuleDocument{}, err
			}
			data := map[string]any{"brightness_pct": brightness}
			if _, present := values["transition"]; present {
				transition, err := requireNumber(values, "transition", transitionMin, transitionMax)
				if err != nil {
					return automation.RuleDocument{}, err
				}
				data["transition"] = transition
			}
			return ruleFor(alarmID, KindLight, map[string]any{
				"service":   "light.turn_on",
				"entity_id": entity,
				"data":      data,
			}), nil
		},
	}
}

func mediaPlayerDefinition() Definition {
	return Definition{
		Kind:  KindMediaPlayer,
		Title: "Control a media player",
		DescribeForm: func(ctx context.Context, catalog ha.Catalog) (FormSchema, error) {
			choices, err := entityChoices(ctx, catalog, "media_player.")
			return FormSchema{
				Kind:  KindMediaPlayer,
				Title: "Control a media player",
				Fields: []Field{
					{Name: "entity", Label: "Player", Type: FieldChoice, Required: true, Choices: choices},
					{Name: "operation", Label: "Operation", Type: FieldChoice, Required: true, Choices: []Choice{
						{Value: OpPlay, Label: "Play"},
						{Value: OpVolumeSet, Label: "Set volume"},
					}},
					{Name: "volume", Label: "Volume %", Type: FieldNumber, Min: volumeMin, Max: volumeMax},
				},
			}, err
		},
		BuildRule: func(values Values, alarmID string) (automation.RuleDocument, error) {
			entity, err := requireEntity(values, "entity", "media_player.")
			if err != nil {
				return automation.RuleDocument{}, err
			}
			operation, err := requireString(values, "operation")
			if err != nil {
				return automation.RuleDocument{}, err
			}
			switch operation {
			case OpPlay:
				return ruleFor(alarmID, KindMediaPlayer, map[string]any{
					"service":   "media_player.media_play",
					"entity_id": entity,
				}), nil
			case OpVolumeSet:
				volume, err := requireNumber(values, "volume", volumeMin, volumeMax)
				if err != nil {
					return automation.RuleDocument{}, err
				}
				return ruleFor(alarmID, KindMediaPlayer, map[string]any{
					"service":   "media_player.volume_set",
					"entity_id": entity,
					"data":      map[string]any{"volume_level": volume / 100},
				}), nil
			default:
				return automation.RuleDocument{}, &InvalidFormValueError{
					Field:  "operation",
					Reason: fmt.Sprintf("must be %s or %s", OpPlay, OpVolumeSet),
				}
			}
		},
	}
}

func notifyDefinition() Definition {
	return Definition{
		Kind:  KindNotify,
		Title: "Send a notification",
		DescribeForm: func(ctx context.Context, catalog ha.Catalog) (FormSchema, error) {
			// No capability query: the notify service takes free text.
			return FormSchema{
				Kind:  KindNotify,
				Title: "Send a notification",
				Fields: []Field{
					{Name: "message", Label: "Message", Type: FieldText, Required: true},
				},
			}, nil
		},
		BuildRule: func(values Values, alarmID string) (automation.RuleDocument, error) {
			message, err := requireString(values, "message")
			if err != nil {
				return automation.RuleDocument{}, err
			}
			return ruleFor(alarmID, KindNotify, map[string]any{
				"service": "notify.notify",
				"data":    map[string]any{"message": message},
			}), nil
		},
	}
}

func scriptDefinition() Definition {
	return Definition{
		Kind:  KindScript,
		Title: "Run a script",
		DescribeForm: func(ctx context.Context, catalog ha.Catalog) (FormSchema, error) {
			choices, err := entityChoices(ctx, catalog, "script.")
			return FormSchema{
				Kind:  KindScript,
				Title: "Run a script",
				Fields: []Field{
					{Name: "entity", Label: "Script", Type: FieldChoice, Required: true, Choices: choices},
				},
			}, err
		},
		BuildRule: func(values Values, alarmID string) (automation.RuleDocument, error) {
			entity, err := requireEntity(values, "entity", "script.")
			if err != nil {
				return automation.RuleDocument{}, err
			}
			return ruleFor(alarmID, KindScript, map[string]any{
				"service":   "script.turn_on",
				"entity_id": entity,
			}), nil
		},
	}
}

func sceneDefinition() Definition {
	return Definition{
		Kind:  KindScene,
		Title: "Activate a scene",
		DescribeForm: func(ctx context.Context, catalog ha.Catalog) (FormSchema, error) {
			choices, err := entityChoices(ctx, catalog, "scene.")
			return FormSchema{
				Kind:  KindScene,
				Title: "Activate a scene",
				Fields: []Field{
					{Name: "entity", Label: "Scene", Type: FieldChoice, Required: true, Choices: choices},
				},
			}, err
		},
		BuildRule: func(values Values, alarmID string) (automation.RuleDocument, error) {
			entity, err := requireEntity(values, "entity", "scene.")
			if err != nil {
				return automation.RuleDocument{}, err
			}
			return ruleFor(alarmID, KindScene, map[string]any{
				"service":   "scene.turn_on",
				"entity_id": entity,
			}), nil
		},
	}
}

// ruleFor wraps an action object in the persisted rule layout, bound to the
// alarm's transition into the triggered marker state.
func ruleFor(alarmID string, kind Kind, action map[string]any) automation.RuleDocument {
	slug := strings.TrimPrefix(alarmID, alarm.Domain+".")
	return automation.RuleDocument{
		Alias:       fmt.Sprintf("%s action for %s", kind, slug),
		Description: fmt.Sprintf("Runs when %s fires", alarmID),
		Trigger: automation.Trigger{
			Platform: "state",
			EntityID: alarmID,
			To:       alarm.StateTriggered,
		},
		Action: action,
	}
}

func requireString(values Values, field string) (string, error) {
	raw, present := values[field]
	if !present {
		return "", &InvalidFormValueError{Field: field, Reason: "required"}
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", &InvalidFormValueError{Field: field, Reason: "required"}
	}
	return s, nil
}

func requireEntity(values Values, field, domainPrefix string) (string, error) {
	s, err := requireString(values, field)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(s, domainPrefix) {
		return "", &InvalidFormValueError{
			Field:  field,
			Reason: fmt.Sprintf("must be a %s* entity id", domainPrefix),
		}
	}
	return s, nil
}

// requireNumber accepts int or float64 form values and enforces the declared
// range. Out-of-range input is an error, not a clamp; clamping would hide a
// user mistake behind a silently different rule.
func requireNumber(values Values, field string, min, max float64) (float64, error) {
	raw, present := values[field]
	if !present {
		return 0, &InvalidFormValueError{Field: field, Reason: "required"}
	}
	var n float64
	switch v := raw.(type) {
	case int:
		n = float64(v)
	case float64:
		n = v
	default:
		return 0, &InvalidFormValueError{Field: field, Reason: "must be a number"}
	}
	if n < min || n > max {
		return 0, &InvalidFormValueError{
			Field:  field,
			Reason: fmt.Sprintf("must be between %g and %g", min, max),
		}
	}
	return n, nil
}
