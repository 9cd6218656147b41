package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/runner/alarms"
)

func addDays(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "days <alarm-id> [mon,tue,...]",
		Short: "Set an alarm's weekday schedule",
		Long:  "Set the full weekday schedule. An empty list means the alarm fires every day.",
		Example: `
alarmdeck days alarm_clock.wake_up mon,tue,wed,thu,fri
alarmdeck days alarm_clock.wake_up
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires an alarm id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			var days []alarm.Day
			if len(args) > 1 {
				for _, tag := range strings.Split(args[1], ",") {
					if tag = strings.TrimSpace(tag); tag != "" {
						days = append(days, alarm.Day(tag))
					}
				}
			}
			s := alarms.SetDays{AlarmID: args[0], Days: days, Service: svc}
			return s.Do(context.Background())
		},
	}

	dayCmd := &cobra.Command{
		Use:   "day <alarm-id> <tag>",
		Short: "Toggle a single weekday on an alarm",
		Example: `
alarmdeck day alarm_clock.wake_up sat
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires an alarm id and a day tag")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := alarms.ToggleDay{AlarmID: args[0], Day: alarm.Day(args[1]), Service: svc}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
	topLevel.AddCommand(dayCmd)
}
