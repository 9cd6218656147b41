package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/runner/alarms"
)

func addToggle(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "toggle <alarm-id>",
		Short: "Enable or disable an alarm",
		Example: `
alarmdeck toggle alarm_clock.wake_up
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
			s := alarms.Toggle{AlarmID: args[0], Service: svc}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
