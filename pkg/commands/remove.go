package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/commands/options"
	"alarmdeck/pkg/runner/alarms"
)

func addRemove(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:     "remove <alarm-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an alarm",
		Example: `
alarmdeck remove alarm_clock.nap --yes
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires an alarm id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(co.Yes)
			if err != nil {
				return err
			}
			s := alarms.Remove{AlarmID: args[0], Service: svc}
			return s.Do(context.Background())
		},
	}

	options.AddConfirmArgs(cmd, co)

	topLevel.AddCommand(cmd)
}
