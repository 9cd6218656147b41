package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/runner/alarms"
)

func addRepeat(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:       "repeat <alarm-id> <on|off>",
		Short:     "Set whether an alarm re-arms after firing",
		ValidArgs: []string{"on", "off"},
		Example: `
alarmdeck repeat alarm_clock.wake_up on
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires an alarm id and on or off")
			}
			if args[1] != "on" && args[1] != "off" {
				return fmt.Errorf("repeat must be on or off, got %q", args[1])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := alarms.SetRepeat{AlarmID: args[0], Repeat: args[1] == "on", Service: svc}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
