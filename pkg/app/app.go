// Package app provides the high-level operations for alarms and their
// automations. It wraps the platform collaborators and the view model so
// the terminal UI and the CLI can share logic.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"alarmdeck/pkg/alarm"
	"alarmdeck/pkg/alarm/viewmodel"
	"alarmdeck/pkg/automation"
	"alarmdeck/pkg/automation/actions"
	"alarmdeck/pkg/builder"
	"alarmdeck/pkg/dispatch"
	"alarmdeck/pkg/ha"
)

// Service provides high-level operations over one platform connection.
type Service struct {
	States  ha.States
	Caller  ha.ServiceCaller
	Catalog ha.Catalog
	Store   ha.AutomationStore
	Nav     ha.Navigator
	Confirm dispatch.Confirmer
	Log     *slog.Logger

	once       sync.Once
	model      *viewmodel.Model
	dispatcher *dispatch.Dispatcher
	registry   *actions.Registry

	mu       sync.RWMutex
	lastSnap ha.Snapshot
}

func (s *Service) init() {
	s.once.Do(func() {
		if s.Log == nil {
			s.Log = slog.Default()
		}
		if s.Confirm == nil {
			// Destructive intents stay blocked until the host wires a real
			// confirmation prompt.
			s.Confirm = dispatch.ConfirmFunc(func(string) bool { return false })
		}
		s.model = viewmodel.New()
		s.dispatcher = dispatch.New(s.Caller, s.Store, s.Nav, s.Confirm, s.Log)
		s.registry = actions.NewRegistry()
	})
}

// Refresh pulls the current state and applies it to the view model. It
// returns true when the alarm view changed.
func (s *Service) Refresh(ctx context.Context) (bool, error) {
	s.init()
	if s.States == nil {
		return false, errors.New("app: no state source configured")
	}
	snap, err := s.States.Current(ctx)
	if err != nil {
		return false, err
	}
	return s.apply(snap), nil
}

// Run refreshes once, then consumes pushed snapshots until ctx is done.
// onChange fires with the new alarm list after every accepted update,
// including the initial one. Updates that leave the alarm view unchanged
// are dropped without a callback.
func (s *Service) Run(ctx context.Context, onChange func([]alarm.Alarm)) error {
	s.init()
	if s.States == nil {
		return errors.New("app: no state source configured")
	}

	if _, err := s.Refresh(ctx); err != nil {
		return err
	}
	if onChange != nil {
		onChange(s.model.Alarms())
	}

	updates, err := s.States.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if !s.apply(snap) {
				s.Log.Debug("state update left alarm view unchanged")
				continue
			}
			if onChange != nil {
				onChange(s.model.Alarms())
			}
		}
	}
}

func (s *Service) apply(snap ha.Snapshot) bool {
	s.mu.Lock()
	s.lastSnap = snap
	s.mu.Unlock()
	return s.model.Apply(snap)
}

// Alarms returns the currently held alarm list.
func (s *Service) Alarms() []alarm.Alarm {
	s.init()
	return s.model.Alarms()
}

// AlarmByID looks up one alarm in the current list.
func (s *Service) AlarmByID(id string) (alarm.Alarm, bool) {
	s.init()
	return s.model.AlarmByID(id)
}

// Automations lists the automations attached to one alarm, derived from the
// last accepted snapshot.
func (s *Service) Automations(alarmID string) []automation.Summary {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return viewmodel.Automations(s.lastSnap, alarmID)
}

// Dispatcher exposes the command surface for the UI and CLI layers.
func (s *Service) Dispatcher() *dispatch.Dispatcher {
	s.init()
	return s.dispatcher
}

// ActionKinds lists the registered automation action kinds in display order.
func (s *Service) ActionKinds() []actions.Kind {
	s.init()
	return s.registry.Kinds()
}

// NewBuilderSession starts an automation builder session for the given alarm
// and action kind.
func (s *Service) NewBuilderSession(ctx context.Context, alarmID string, kind actions.Kind) (*builder.Session, error) {
	s.init()
	if s.Store == nil {
		return nil, errors.New("app: no automation store configured")
	}
	sess, err := builder.NewSession(s.registry, s.Catalog, s.Store)
	if err != nil {
		return nil, err
	}
	if err := sess.Open(ctx, alarmID, kind); err != nil {
		return nil, err
	}
	return sess, nil
}
