package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"alarmdeck/pkg/app"
	"alarmdeck/pkg/commands/options"
	"alarmdeck/pkg/dispatch"
	"alarmdeck/pkg/localhub"
	"alarmdeck/pkg/logging"
)

var lo = &options.LogOptions{}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarmdeck",
		Short: "Alarm clocks and their automations on the command line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddLogArgs(cmd, lo)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addList(topLevel)
	addAdd(topLevel)
	addToggle(topLevel)
	addTime(topLevel)
	addDays(topLevel)
	addRepeat(topLevel)
	addRemove(topLevel)
	addAutomation(topLevel)
	addSchedule(topLevel)
	addSeed(topLevel)
	addUI(topLevel)
	addVersion(topLevel)
}

// newService connects to the local hub and assembles the app service. The
// confirmer prompts on stdin unless yes pre-approves destructive intents.
func newService(yes bool) (*app.Service, *localhub.Hub, error) {
	hub, err := localhub.Open(nil)
	if err != nil {
		return nil, nil, err
	}

	level := "warn"
	if lo.Debug {
		level = "debug"
	}
	log, err := logging.New(logging.Options{Level: level})
	if err != nil {
		return nil, nil, err
	}

	confirm := dispatch.Confirmer(dispatch.ConfirmFunc(promptConfirm))
	if yes {
		confirm = dispatch.ConfirmFunc(func(string) bool { return true })
	}

	svc := &app.Service{
		States:  hub,
		Caller:  hub,
		Catalog: hub,
		Store:   hub,
		Nav:     hub,
		Confirm: confirm,
		Log:     log,
	}
	return svc, hub, nil
}

func promptConfirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
