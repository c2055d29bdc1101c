package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"zapretctl/internal/parser"
	"zapretctl/internal/process"
	"zapretctl/pkg/logging"
)

const discoverySubsystem = "Discovery"

// BlockcheckScript is the probing script inside the work tree.
const BlockcheckScript = "blockcheck.sh"

// DiscoveryOptions controls a discovery run.
type DiscoveryOptions struct {
	Domains []string
	Level   ScanLevel
	// AutoInstall runs the easy installer in the same run once strategies
	// were found and saved.
	AutoInstall bool
}

// Discoverer runs blockcheck and persists the strategies it reports.
type Discoverer struct {
	Env
}

// Task returns the discovery pipeline as a controller task.
func (d Discoverer) Task(opts DiscoveryOptions) Task {
	return func(run *Run, out chan<- Message) ([]string, error) {
		return d.Run(run, out, opts)
	}
}

// Run probes the domains, extracts working strategies, saves them and, when
// requested, installs zapret with them.
func (d Discoverer) Run(run *Run, out chan<- Message, opts DiscoveryOptions) ([]string, error) {
	if run.Cancelled() {
		return nil, ErrCancelled
	}
	level := opts.Level
	if level == "" {
		level = ScanStandard
	}

	script := filepath.Join(d.Config.WorkDir, BlockcheckScript)
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%s not found: %w", script, err)
	}

	status(run, out, StageRunning, fmt.Sprintf("Scanning %s (repeats=%d, level=%s)...",
		strings.Join(opts.Domains, " "), level.Repeats(), level))

	spec := process.Spec{
		Name: script,
		Env: []string{
			"BATCH=1",
			"REPEATS=" + strconv.Itoa(level.Repeats()),
			"SCANLEVEL=" + string(level),
			"SKIP_TPWS=1",
			"ENABLE_HTTP=1",
			"ENABLE_HTTPS_TLS12=1",
			"ENABLE_HTTPS_TLS13=1",
			"ZAPRET_BASE=" + d.Config.WorkDir,
			"DOMAINS=" + strings.Join(opts.Domains, " "),
		},
		Elevated: true,
	}

	var output []string
	err := stream(run, out, d.Supervisor, spec, func(line string) {
		logging.Debug(discoverySubsystem, "%s", line)
		output = append(output, line)
		if parser.IsProgressLine(line) {
			send(run, out, ProgressTick{})
		}
		if trimmed := strings.TrimSpace(parser.StripANSI(line)); trimmed != "" {
			send(run, out, LogLine{Text: trimmed})
		}
	})
	switch {
	case err == nil:
	case Classify(err) == ErrorNonZeroExit:
		// blockcheck's exit status carries no meaning; the report decides.
		logging.Warn(discoverySubsystem, "blockcheck exited with an error, parsing its output anyway: %v", err)
	default:
		return nil, err
	}
	if run.Cancelled() {
		return nil, ErrCancelled
	}

	status(run, out, StageParsingOutput, "Parsing results...")
	strategies := parser.ExtractStrategies(output)
	logging.Info(discoverySubsystem, "Found %d working strategies", len(strategies))

	if run.Cancelled() {
		return nil, ErrCancelled
	}
	status(run, out, StagePersistingResult, "Saving strategies...")
	if err := d.Store.Save(strategies); err != nil {
		return nil, err
	}

	if !opts.AutoInstall || len(strategies) == 0 {
		return strategies, nil
	}

	status(run, out, StageTriggeringInstall, fmt.Sprintf("Installing zapret (%s)...", d.Config.SystemDir))
	if err := (EasyInstaller{Env: d.Env}).Run(run, out); err != nil {
		return nil, err
	}
	return strategies, nil
}
