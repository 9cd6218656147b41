package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/automation/actions"
	"alarmdeck/pkg/commands/options"
	"alarmdeck/pkg/runner/automations"
)

func addAutomation(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "automation",
		Aliases: []string{"auto"},
		Short:   "Manage the automations attached to alarms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addAutomationList(cmd)
	addAutomationCreate(cmd)
	addAutomationToggle(cmd)
	addAutomationEdit(cmd)
	addAutomationDelete(cmd)

	topLevel.AddCommand(cmd)
}

func addAutomationList(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "list <alarm-id>",
		Short: "List the automations of one alarm",
		Example: `
alarmdeck automation list alarm_clock.wake_up
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires an alarm id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := automations.List{AlarmID: args[0], Service: svc}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}

func addAutomationCreate(topLevel *cobra.Command) {
	fo := &options.FormOptions{}
	kind := ""

	cmd := &cobra.Command{
		Use:   "create <alarm-id>",
		Short: "Create an automation that reacts to an alarm firing",
		Example: `
alarmdeck automation create alarm_clock.wake_up --kind notify --set message="Good morning"
alarmdeck automation create alarm_clock.wake_up --kind light --set entity=light.bedroom --set brightness=80
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires an alarm id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			values := make(map[string]string, len(fo.Set))
			for _, pair := range fo.Set {
				field, value, found := strings.Cut(pair, "=")
				if !found {
					return fmt.Errorf("--set %q is not field=value", pair)
				}
				values[field] = value
			}
			s := automations.Create{
				AlarmID: args[0],
				Kind:    actions.Kind(kind),
				Values:  values,
				Service: svc,
			}
			return s.Do(context.Background())
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Action kind: light, media_player, notify, script, or scene.")
	_ = cmd.MarkFlagRequired("kind")
	options.AddFormArgs(cmd, fo)

	topLevel.AddCommand(cmd)
}

func addAutomationToggle(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "toggle <automation-id>",
		Short: "Activate or deactivate an automation",
		Example: `
alarmdeck automation toggle automation.wake_up_notify
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires an automation id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := automations.Toggle{AutomationID: args[0], Service: svc}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}

func addAutomationEdit(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "edit <automation-id>",
		Short: "Open an automation's rule in $EDITOR",
		Example: `
alarmdeck automation edit automation.wake_up_notify
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires an automation id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := automations.Edit{AutomationID: args[0], Service: svc}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}

func addAutomationDelete(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete an automation",
		Example: `
alarmdeck automation delete wake_up_notify --yes
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a rule id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(co.Yes)
			if err != nil {
				return err
			}
			s := automations.Delete{RuleID: args[0], Service: svc}
			return s.Do(context.Background())
		},
	}

	options.AddConfirmArgs(cmd, co)

	topLevel.AddCommand(cmd)
}
