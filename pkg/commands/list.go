package commands

import (
	"context"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/commands/options"
	"alarmdeck/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	withAutomations := false

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "alarms"},
		Short:   "List alarms",
		Example: `
alarmdeck list
alarmdeck list --automations --show-id
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			s := list.List{
				ShowID:          io.ShowID,
				WithAutomations: withAutomations,
				Service:         svc,
			}
			return s.Do(context.Background())
		},
	}

	options.AddShowIDArgs(cmd, io)
	cmd.Flags().BoolVarP(&withAutomations, "automations", "a", false,
		"Also list the automations of each alarm.")

	topLevel.AddCommand(cmd)
}
