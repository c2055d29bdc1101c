package pipeline

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"zapretctl/internal/distro"
	"zapretctl/internal/parser"
	"zapretctl/internal/process"
	"zapretctl/pkg/logging"
)

const installSubsystem = "Install"

// InstallOptions controls an install run.
type InstallOptions struct {
	// Overwrite deletes an existing work tree and downloads it again.
	Overwrite bool
}

// Installer prepares the host: system packages, DNSCrypt configuration,
// network services and a built zapret work tree.
type Installer struct {
	Env
}

// Task returns the install pipeline as a controller task.
func (i Installer) Task(opts InstallOptions) Task {
	return func(run *Run, out chan<- Message) ([]string, error) {
		return nil, i.Run(run, out, opts)
	}
}

// Run executes the install pipeline. An existing work tree is reused unless
// opts.Overwrite is set.
func (i Installer) Run(run *Run, out chan<- Message, opts InstallOptions) error {
	cfg := i.Config
	status(run, out, StageCheckingPrereqs, "Checking system...")
	if run.Cancelled() {
		return ErrCancelled
	}

	job := InstallerJob{DNSCryptConfig: cfg.DNSCrypt.ConfigPath}
	if opts.Overwrite && pathExists(cfg.WorkDir) {
		job.CleanPath = cfg.WorkDir
	}
	if run.Cancelled() {
		return ErrCancelled
	}

	id := i.distroID()
	missing := MissingBinaries(run.Context(), i.Runner, distro.BinaryDependencies)
	deps := slices.Concat(missing, distro.LibraryDependencies)
	cmds, err := distro.InstallCommands(id, deps)
	if err != nil {
		logging.Warn(installSubsystem, "Skipping dependencies that cannot be installed automatically: %v", err)
	}
	if len(cmds) > 0 {
		job.RefreshCommand = distro.RefreshCommand(id)
		job.InstallCommands = cmds
	}
	logging.Info(installSubsystem, "Distribution %s, missing binaries: %v", id, missing)
	if run.Cancelled() {
		return ErrCancelled
	}

	if err := i.runJob(run, out, job); err != nil {
		return err
	}

	if run.Cancelled() {
		return ErrCancelled
	}
	if pathExists(cfg.WorkDir) {
		status(run, out, StageCloningRepo, "Using existing folder")
		return nil
	}

	status(run, out, StageCloningRepo, "Downloading zapret repository...")
	clone := process.Spec{Name: "git", Args: []string{"clone", cfg.RepoURL, cfg.WorkDir}}
	if err := stream(run, out, i.Supervisor, clone, logTo(installSubsystem)); err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}

	status(run, out, StageBuilding, "Building zapret...")
	build := process.Spec{Name: "make", Args: []string{"-C", cfg.WorkDir}}
	if err := stream(run, out, i.Supervisor, build, logTo(installSubsystem)); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

// runJob writes the job script and runs it elevated, translating STATUS:
// markers into stage transitions.
func (i Installer) runJob(run *Run, out chan<- Message, job InstallerJob) error {
	cfg := i.Config
	script, err := job.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Paths.InstallerJob, []byte(script), 0700); err != nil {
		return fmt.Errorf("failed to write installer job: %w", err)
	}
	logging.Debug(installSubsystem, "Installer job:\n%s", script)

	status(run, out, StageAwaitingElevatedScript, "Waiting for authorization...")
	spec := process.Spec{Name: "/bin/sh", Args: []string{cfg.Paths.InstallerJob}, Elevated: true}
	err = stream(run, out, i.Supervisor, spec, func(line string) {
		logging.Debug(installSubsystem, "%s", line)
		if stage, ok := parser.StatusMarker(line); ok {
			pipelineStage, text := markerStatus(stage)
			status(run, out, pipelineStage, text)
			return
		}
		if strings.TrimSpace(line) != "" {
			send(run, out, LogLine{Text: parser.StripANSI(line)})
		}
	})
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return err
		}
		var exitErr *process.ExitError
		if errors.As(err, &exitErr) && exitErr.LastLine == "" {
			return fmt.Errorf("installer job failed, authorization was not granted or an unknown error occurred: %w", err)
		}
		return fmt.Errorf("installer job failed: %w", err)
	}

	status(run, out, StageAwaitingElevatedScript, "Waiting for NetworkManager...")
	if err := os.Remove(cfg.Paths.InstallerJob); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn(installSubsystem, "Failed to remove %s: %v", cfg.Paths.InstallerJob, err)
	}
	if err := i.sleep(run.Context(), cfg.NetworkSettleDelay); err != nil {
		return ErrCancelled
	}
	return nil
}

func markerStatus(stage parser.Stage) (Stage, string) {
	switch stage {
	case parser.StageCleaning:
		return StageCleaning, "Removing old files..."
	case parser.StageInstallingDeps:
		return StageInstallingDeps, "Installing missing packages..."
	case parser.StageInstalling:
		return StageInstallingDeps, "Installing DNSCrypt-proxy..."
	case parser.StageConfiguring:
		return StageConfiguring, "Configuring DNS..."
	default:
		return StageFinalizing, "Starting network services..."
	}
}

func logTo(subsystem string) func(string) {
	return func(line string) {
		logging.Debug(subsystem, "%s", parser.StripANSI(line))
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
