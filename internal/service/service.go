package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"

	"zapretctl/internal/process"
	"zapretctl/pkg/logging"
)

const subsystem = "Service"

// Action is a systemctl verb accepted by Control.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
)

// ParseAction validates a systemctl verb.
func ParseAction(name string) (Action, error) {
	switch a := Action(strings.ToLower(name)); a {
	case ActionStart, ActionStop, ActionRestart:
		return a, nil
	}
	return "", fmt.Errorf("unknown service action %q", name)
}

// Status is a snapshot of the unit.
type Status struct {
	Unit        string
	LoadState   string
	ActiveState string
	SubState    string
	// Source is "dbus" or "systemctl".
	Source string
}

// Active reports whether the unit is running.
func (s Status) Active() bool {
	return s.ActiveState == "active"
}

// Installed reports whether systemd knows the unit. Unknown when the status
// came from systemctl.
func (s Status) Installed() bool {
	return s.LoadState != "not-found"
}

// unitLister is the part of the D-Bus connection Status needs.
type unitLister interface {
	ListUnitsByNamesContext(ctx context.Context, units []string) ([]dbus.UnitStatus, error)
	Close()
}

func connectSystemBus(ctx context.Context) (unitLister, error) {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Manager reads and controls one unit.
type Manager struct {
	Unit   string
	Runner process.Runner

	connect func(ctx context.Context) (unitLister, error)
}

// NewManager returns a Manager for unit. A bare name gets the .service
// suffix.
func NewManager(unit string, runner process.Runner) *Manager {
	return &Manager{
		Unit:    unitName(unit),
		Runner:  runner,
		connect: connectSystemBus,
	}
}

func unitName(unit string) string {
	if strings.Contains(unit, ".") {
		return unit
	}
	return unit + ".service"
}

// Status returns the unit state.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	status, err := m.busStatus(ctx)
	if err == nil {
		return status, nil
	}
	if ctx.Err() != nil {
		return Status{}, ctx.Err()
	}
	logging.Debug(subsystem, "D-Bus status for %s unavailable (%v), using systemctl", m.Unit, err)
	return m.systemctlStatus(ctx)
}

func (m *Manager) busStatus(ctx context.Context) (Status, error) {
	if m.connect == nil {
		return Status{}, errors.New("no system bus")
	}
	conn, err := m.connect(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	units, err := conn.ListUnitsByNamesContext(ctx, []string{m.Unit})
	if err != nil {
		return Status{}, fmt.Errorf("failed to list %s: %w", m.Unit, err)
	}
	for _, u := range units {
		if u.Name == m.Unit {
			return Status{
				Unit:        m.Unit,
				LoadState:   u.LoadState,
				ActiveState: u.ActiveState,
				SubState:    u.SubState,
				Source:      "dbus",
			}, nil
		}
	}
	return Status{Unit: m.Unit, LoadState: "not-found", ActiveState: "inactive", SubState: "dead", Source: "dbus"}, nil
}

// systemctlStatus runs `systemctl is-active`. It exits non-zero for every
// state but active and still prints the state.
func (m *Manager) systemctlStatus(ctx context.Context) (Status, error) {
	out, err := m.Runner.Run(ctx, process.Spec{Name: "systemctl", Args: []string{"is-active", m.Unit}})
	state := strings.TrimSpace(out)
	if err != nil {
		var exitErr *process.ExitError
		if !errors.As(err, &exitErr) || state == "" {
			return Status{}, fmt.Errorf("failed to query %s: %w", m.Unit, err)
		}
	}
	return Status{Unit: m.Unit, ActiveState: state, Source: "systemctl"}, nil
}

// Control runs `systemctl <action> <unit>` elevated.
func (m *Manager) Control(ctx context.Context, action Action) error {
	logging.Info(subsystem, "Running systemctl %s %s", action, m.Unit)
	if _, err := m.Runner.Run(ctx, process.Spec{Name: "systemctl", Args: []string{string(action), m.Unit}, Elevated: true}); err != nil {
		return fmt.Errorf("failed to %s %s: %w", action, m.Unit, err)
	}
	return nil
}

func (m *Manager) Start(ctx context.Context) error   { return m.Control(ctx, ActionStart) }
func (m *Manager) Stop(ctx context.Context) error    { return m.Control(ctx, ActionStop) }
func (m *Manager) Restart(ctx context.Context) error { return m.Control(ctx, ActionRestart) }

// Watch polls the unit every interval and calls onChange with the first
// status and every change after it. It returns when ctx is done.
func (m *Manager) Watch(ctx context.Context, interval time.Duration, onChange func(Status)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *Status
	for {
		status, err := m.Status(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil:
			logging.Warn(subsystem, "Status of %s failed: %v", m.Unit, err)
		case last == nil || status != *last:
			onChange(status)
			last = &status
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
