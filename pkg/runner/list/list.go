package list

import (
	"context"
	"errors"
	"fmt"

	"alarmdeck/pkg/app"
	"alarmdeck/pkg/printers"
)

type List struct {
	ShowID          bool
	WithAutomations bool
	Service         *app.Service
}

func (n *List) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not list, no service")
	}
	if _, err := n.Service.Refresh(ctx); err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	fmt.Println("")

	alarms := n.Service.Alarms()
	pp.TitleWithCount("Alarms", len(alarms))
	pp.Alarms(alarms...)

	if !n.WithAutomations {
		return nil
	}
	for _, a := range alarms {
		pp.Title(a.Name)
		pp.Automations(n.Service.Automations(a.ID)...)
	}
	return nil
}
