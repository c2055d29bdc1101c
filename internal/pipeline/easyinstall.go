package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zapretctl/internal/parser"
	"zapretctl/internal/process"
	"zapretctl/pkg/logging"
)

const easyInstallSubsystem = "EasyInstall"

// EasyInstallScript is zapret's interactive installer inside the work tree.
const EasyInstallScript = "install_easy.sh"

// EasyInstaller installs zapret system-wide by answering install_easy.sh's
// prompts from a file.
type EasyInstaller struct {
	Env
}

// Task returns the easy install as a controller task.
func (e EasyInstaller) Task() Task {
	return func(run *Run, out chan<- Message) ([]string, error) {
		return nil, e.Run(run, out)
	}
}

// Run writes the answers file and wrapper script and runs the wrapper
// elevated, forwarding every output line.
func (e EasyInstaller) Run(run *Run, out chan<- Message) error {
	if run.Cancelled() {
		return ErrCancelled
	}
	cfg := e.Config

	script := filepath.Join(cfg.WorkDir, EasyInstallScript)
	if _, err := os.Stat(script); err != nil {
		return fmt.Errorf("%s not found: %w", script, err)
	}

	if err := os.WriteFile(cfg.Paths.InstallAnswers, []byte(answersFile(cfg.InstallAnswers)), 0644); err != nil {
		return fmt.Errorf("failed to write installer answers: %w", err)
	}

	wrapper, err := EasyInstallWrapper{
		WorkDir:      cfg.WorkDir,
		Script:       script,
		Answers:      cfg.Paths.InstallAnswers,
		SystemConfig: cfg.SystemConfigPath,
	}.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Paths.WrapperScript, []byte(wrapper), 0755); err != nil {
		return fmt.Errorf("failed to write installer wrapper: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(cfg.Paths.WrapperScript, 0755); err != nil {
		return fmt.Errorf("failed to make installer wrapper executable: %w", err)
	}

	status(run, out, StageTriggeringInstall, "Running zapret installer...")
	spec := process.Spec{Name: cfg.Paths.WrapperScript, Elevated: true}
	err = stream(run, out, e.Supervisor, spec, func(line string) {
		logging.Debug(easyInstallSubsystem, "%s", line)
		if trimmed := strings.TrimSpace(parser.StripANSI(line)); trimmed != "" {
			send(run, out, LogLine{Text: trimmed})
		}
	})
	if err != nil {
		if Classify(err) == ErrorNonZeroExit {
			return fmt.Errorf("install failed: %w", err)
		}
		return err
	}
	logging.Info(easyInstallSubsystem, "zapret installed to %s", cfg.SystemDir)
	return nil
}
