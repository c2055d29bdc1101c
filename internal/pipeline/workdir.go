package pipeline

import (
	"context"
	"fmt"
	"os"

	"zapretctl/internal/config"
	"zapretctl/internal/process"
	"zapretctl/pkg/logging"
)

// InstallState describes what is present on the host.
type InstallState struct {
	SystemInstalled bool
	StoreExists     bool
	WorkTreeExists  bool
}

// WorkTreeRemovable reports whether the local work tree is no longer needed:
// zapret is installed system-wide and strategies were saved.
func (s InstallState) WorkTreeRemovable() bool {
	return s.SystemInstalled && s.StoreExists && s.WorkTreeExists
}

// InspectInstall checks the system install, the strategy store and the work
// tree.
func InspectInstall(cfg config.ZapretConfig) InstallState {
	return InstallState{
		SystemInstalled: pathExists(cfg.SystemDir),
		StoreExists:     pathExists(cfg.StrategyStorePath),
		WorkTreeExists:  pathExists(cfg.WorkDir),
	}
}

// RemoveWorkTree deletes the work tree, retrying elevated when the build left
// root-owned files behind.
func RemoveWorkTree(ctx context.Context, cfg config.ZapretConfig, runner process.Runner) error {
	err := os.RemoveAll(cfg.WorkDir)
	if err == nil {
		logging.Info(subsystem, "Removed %s", cfg.WorkDir)
		return nil
	}
	logging.Debug(subsystem, "Removing %s failed (%v), retrying elevated", cfg.WorkDir, err)

	if _, err := runner.Run(ctx, process.Spec{Name: "rm", Args: []string{"-rf", cfg.WorkDir}, Elevated: true}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", cfg.WorkDir, err)
	}
	logging.Info(subsystem, "Removed %s", cfg.WorkDir)
	return nil
}
