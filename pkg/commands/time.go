package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/runner/alarms"
)

func addTime(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "time <alarm-id> <HH:MM>",
		Short: "Set an alarm's time",
		Example: `
alarmdeck time alarm_clock.wake_up 06:45
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires an alarm id and a time")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := alarms.SetTime{AlarmID: args[0], Time: args[1], Service: svc}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
