package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/runner/alarms"
)

func addAdd(topLevel *cobra.Command) {
	at := ""

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an alarm",
		Example: `
alarmdeck add "Wake Up" --time 07:00
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires an alarm name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := alarms.Add{
				Name:    strings.Join(args, " "),
				Time:    at,
				Service: svc,
			}
			return s.Do(context.Background())
		},
	}

	cmd.Flags().StringVarP(&at, "time", "t", "", "Alarm time as HH:MM.")
	_ = cmd.MarkFlagRequired("time")

	topLevel.AddCommand(cmd)
}
