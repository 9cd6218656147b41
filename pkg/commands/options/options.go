// Package options defines shared flag helpers for CLI commands.
package options

import (
	"github.com/spf13/cobra"
)

// IDOptions captures the show-id flag shared by listing commands.
type IDOptions struct {
	ShowID bool
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show entity ids.")
}

// ConfirmOptions captures the --yes flag for destructive commands.
type ConfirmOptions struct {
	Yes bool
}

func AddConfirmArgs(cmd *cobra.Command, o *ConfirmOptions) {
	cmd.Flags().BoolVarP(&o.Yes, "yes", "y", false,
		"Skip the confirmation prompt.")
}

// WindowOptions captures the schedule window flag.
type WindowOptions struct {
	Window string
}

func AddWindowArgs(cmd *cobra.Command, o *WindowOptions) {
	cmd.Flags().StringVarP(&o.Window, "within", "w", "",
		"Time window, e.g. 1d, 12h, 1w. Defaults to one day.")
}

// FormOptions collects --set key=value pairs for the automation builder.
type FormOptions struct {
	Set []string
}

func AddFormArgs(cmd *cobra.Command, o *FormOptions) {
	cmd.Flags().StringArrayVar(&o.Set, "set", nil,
		"Form value as field=value. Repeatable.")
}

// LogOptions captures the logging verbosity flags.
type LogOptions struct {
	Debug bool
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().BoolVar(&o.Debug, "debug", false,
		"Enable debug logging.")
}
