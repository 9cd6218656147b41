package commands

import (
	"context"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/runner/seed"
)

func addSeed(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty hub with demo alarms",
		Example: `
alarmdeck seed
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, hub, err := newService(false)
			if err != nil {
				return err
			}
			s := seed.Seed{Hub: hub}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
