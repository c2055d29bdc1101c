package pipeline

import (
	"errors"
	"fmt"
	"os"

	"zapretctl/internal/patcher"
	"zapretctl/internal/process"
	"zapretctl/pkg/logging"
)

// ErrNoSelection is returned when apply is called without strategies.
var ErrNoSelection = errors.New("no strategies selected")

// Applier writes selected strategies into the system config and restarts
// the service.
type Applier struct {
	Env
}

// Task returns applying selected as a controller task.
func (a Applier) Task(selected []string) Task {
	return func(run *Run, out chan<- Message) ([]string, error) {
		if err := a.Run(run, out, selected); err != nil {
			return nil, err
		}
		return selected, nil
	}
}

// Run patches NFQWS_OPT with the selected strategies. The new document is
// staged in a temp file and moved into place by one elevated step that also
// restarts the service.
func (a Applier) Run(run *Run, out chan<- Message, selected []string) error {
	if len(selected) == 0 {
		return ErrNoSelection
	}
	if run.Cancelled() {
		return ErrCancelled
	}
	cfg := a.Config

	status(run, out, StagePatchingConfig, "Updating "+cfg.SystemConfigPath+"...")
	current, err := a.readSystemConfig(run)
	if err != nil {
		return err
	}
	patched := patcher.PatchOptionVariable(current, patcher.JoinStrategies(selected))
	if err := os.WriteFile(cfg.Paths.ConfigStaging, []byte(patched), 0644); err != nil {
		return fmt.Errorf("failed to stage config: %w", err)
	}

	if run.Cancelled() {
		return ErrCancelled
	}
	status(run, out, StageRestartingService, "Restarting "+cfg.Service.Unit+"...")
	script := fmt.Sprintf("mv -f %s %s && systemctl restart %s",
		shellQuote(cfg.Paths.ConfigStaging), shellQuote(cfg.SystemConfigPath), shellQuote(cfg.Service.Unit))
	if _, err := a.Runner.Run(run.Context(), process.Spec{Name: "sh", Args: []string{"-c", script}, Elevated: true}); err != nil {
		if run.Cancelled() {
			return ErrCancelled
		}
		return fmt.Errorf("failed to install config: %w", err)
	}
	logging.Info(subsystem, "Applied %d strategies to %s", len(selected), cfg.SystemConfigPath)
	return nil
}

// readSystemConfig reads the config directly, falling back to an elevated
// cat when it is not readable by the current user.
func (a Applier) readSystemConfig(run *Run) (string, error) {
	data, err := os.ReadFile(a.Config.SystemConfigPath)
	if err == nil {
		return string(data), nil
	}
	logging.Debug(subsystem, "Reading %s directly failed (%v), retrying elevated", a.Config.SystemConfigPath, err)

	content, err := a.Runner.Run(run.Context(), process.Spec{Name: "cat", Args: []string{a.Config.SystemConfigPath}, Elevated: true})
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", a.Config.SystemConfigPath, err)
	}
	return content, nil
}

// SelectStrategies picks entries of stored by 1-based index.
func SelectStrategies(stored []string, indexes []int) ([]string, error) {
	selected := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 1 || idx > len(stored) {
			return nil, fmt.Errorf("strategy %d does not exist (have %d)", idx, len(stored))
		}
		selected = append(selected, stored[idx-1])
	}
	return selected, nil
}
