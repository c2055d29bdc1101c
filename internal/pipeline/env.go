package pipeline

import (
	"context"
	"time"

	"zapretctl/internal/config"
	"zapretctl/internal/distro"
	"zapretctl/internal/process"
	"zapretctl/internal/strategy"
)

// Starter launches supervised child processes.
type Starter interface {
	Start(ctx context.Context, spec process.Spec) (*process.Handle, error)
	Killer
}

// Env bundles the collaborators every pipeline runs against.
type Env struct {
	Config     config.ZapretConfig
	Supervisor Starter
	Runner     process.Runner
	Store      *strategy.Store

	// DistroID overrides distribution detection when set.
	DistroID string
	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewEnv wires an Env from configuration, elevating through the configured
// elevator.
func NewEnv(cfg config.ZapretConfig) Env {
	sup := process.NewSupervisor(cfg.Elevation.Command)
	return Env{
		Config:     cfg,
		Supervisor: sup,
		Runner:     process.NewExecRunner(sup),
		Store:      strategy.NewStore(cfg.StrategyStorePath),
	}
}

func (e Env) distroID() string {
	if e.DistroID != "" {
		return e.DistroID
	}
	return distro.Detect()
}

func (e Env) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
