package commands

import (
	"context"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/commands/options"
	"alarmdeck/pkg/runner/schedule"
)

func addSchedule(topLevel *cobra.Command) {
	wo := &options.WindowOptions{}

	cmd := &cobra.Command{
		Use:     "schedule",
		Aliases: []string{"next"},
		Short:   "Show upcoming alarm firings",
		Example: `
alarmdeck schedule
alarmdeck schedule --within 1w
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := schedule.Schedule{Window: wo.Window, Service: svc}
			return s.Do(context.Background())
		},
	}

	options.AddWindowArgs(cmd, wo)

	topLevel.AddCommand(cmd)
}
