// Package alarms holds the runners behind the alarm mutation commands. Each
// runner maps to exactly one platform intent.
package alarms

import (
	"context"
	"errors"
	"fmt"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/app"
)

var errNoService = errors.New("can not run, no service")

type Add struct {
	Name    string
	Time    string
	Service *app.Service
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if err := n.Service.Dispatcher().AddAlarm(ctx, n.Name, n.Time); err != nil {
		return err
	}
	fmt.Printf("added alarm %q at %s\n", n.Name, n.Time)
	return nil
}

type Toggle struct {
	AlarmID string
	Service *app.Service
}

func (n *Toggle) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	return n.Service.Dispatcher().ToggleAlarm(ctx, n.AlarmID)
}

type SetTime struct {
	AlarmID string
	Time    string
	Service *app.Service
}

func (n *SetTime) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	return n.Service.Dispatcher().SetTime(ctx, n.AlarmID, n.Time)
}

type SetDays struct {
	AlarmID string
	Days    []alarm.Day
	Service *app.Service
}

func (n *SetDays) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	return n.Service.Dispatcher().SetDays(ctx, n.AlarmID, n.Days)
}

// ToggleDay flips one weekday on the alarm's current day set, so it needs the
// current view before it can dispatch.
type ToggleDay struct {
	AlarmID string
	Day     alarm.Day
	Service *app.Service
}

func (n *ToggleDay) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if _, err := n.Service.Refresh(ctx); err != nil {
		return err
	}
	a, ok := n.Service.AlarmByID(n.AlarmID)
	if !ok {
		return fmt.Errorf("alarm %s not found", n.AlarmID)
	}
	return n.Service.Dispatcher().ToggleDay(ctx, a, n.Day)
}

type SetRepeat struct {
	AlarmID string
	Repeat  bool
	Service *app.Service
}

func (n *SetRepeat) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	return n.Service.Dispatcher().SetRepeat(ctx, n.AlarmID, n.Repeat)
}

type Remove struct {
	AlarmID string
	Service *app.Service
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoService
	}
	if err := n.Service.Dispatcher().RemoveAlarm(ctx, n.AlarmID); err != nil {
		return err
	}
	fmt.Printf("removed %s\n", n.AlarmID)
	return nil
}
