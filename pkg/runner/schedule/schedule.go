package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alarmdeck/pkg/app"
	"alarmdeck/pkg/printers"
	"alarmdeck/pkg/timeutil"
)

type Schedule struct {
	Window  string
	Service *app.Service
}

func (n *Schedule) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not run, no service")
	}
	window, err := timeutil.ParseWindow(n.Window)
	if err != nil {
		return err
	}
	if _, err := n.Service.Refresh(ctx); err != nil {
		return err
	}

	pp := printers.PrettyPrint{}
	fmt.Println("")
	pp.Schedule(n.Service.Schedule(time.Now(), window))
	return nil
}
