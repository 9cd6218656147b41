package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea/v2"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/app"
	"alarmdeck/pkg/tui"
)

type UI struct {
	Service *app.Service
}

// Do runs the terminal UI until quit. Push updates from the platform are fed
// into the program as messages; the watch loop stops with the program.
func (d *UI) Do(ctx context.Context) error {
	if d.Service == nil {
		return errors.New("can not run ui, no service")
	}

	p := tea.NewProgram(tui.New(d.Service), tea.WithAltScreen())

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := d.Service.Run(watchCtx, func(alarms []alarm.Alarm) {
			p.Send(tui.AlarmsChangedMsg{Alarms: alarms})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			p.Send(tui.ErrMsg{Err: err})
		}
	}()

	_, err := p.Run()
	return err
}
