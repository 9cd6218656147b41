package commands

import (
	"context"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/dispatch"
	"alarmdeck/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the text-based user interface",
		Example: `
alarmdeck ui
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(false)
			if err != nil {
				return err
			}
			// The UI runs its own confirmation overlay before dispatching,
			// and an external editor cannot take over the alternate screen.
			svc.Confirm = dispatch.ConfirmFunc(func(string) bool { return true })
			svc.Nav = nil
			i := ui.UI{Service: svc}
			return i.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
