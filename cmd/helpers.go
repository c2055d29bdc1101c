package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zapretctl/internal/cli"
	"zapretctl/internal/config"
	"zapretctl/internal/pipeline"
	"zapretctl/pkg/logging"
)

// loadEnv loads the configuration named by --config-path and wires the
// pipeline collaborators.
func loadEnv() (pipeline.Env, error) {
	cfg, err := config.LoadConfig(rootFlags.ConfigPath)
	if err != nil {
		return pipeline.Env{}, err
	}
	return pipeline.NewEnv(cfg), nil
}

func interactive() bool {
	return cli.IsTerminal(os.Stdin) && cli.IsTerminal(os.Stdout)
}

func renderer(cmd *cobra.Command) cli.TableRenderer {
	format, _ := rootFlags.Format()
	return cli.TableRenderer{Out: cmd.OutOrStdout(), Format: format}
}

// runPipeline drives task under a controller until it stops, showing
// progress on the terminal. Ctrl-C cancels the run through the command
// context.
func runPipeline(cmd *cobra.Command, env pipeline.Env, kind pipeline.Kind, task pipeline.Task, success func(pipeline.Result) string) (pipeline.Result, error) {
	progress := cli.NewProgress(cmd.OutOrStdout(), cli.IsTerminal(os.Stdout), rootFlags.Quiet, rootFlags.Debug)
	// Log records are routed through the progress display while it owns
	// the terminal.
	logsDone := progress.Logs(logging.InitForChannel(rootFlags.LogLevel()))
	defer func() {
		logging.CloseChannel()
		<-logsDone
		logging.InitForCLI(rootFlags.LogLevel(), os.Stderr)
	}()

	ctrl := pipeline.Start(cmd.Context(), kind, env.Supervisor, task, progress)
	res := ctrl.Drive(cmd.Context(), env.Config.PollInterval)

	msg := ""
	if res.Outcome == pipeline.OutcomeSucceeded && success != nil {
		msg = success(res)
	}
	progress.Finish(res, msg)

	switch res.Outcome {
	case pipeline.OutcomeCancelled:
		return res, pipeline.ErrCancelled
	case pipeline.OutcomeFailed:
		return res, res.Err
	}
	return res, nil
}

// withPrompter opens a prompter for fn, failing when there is no terminal.
func withPrompter(cmd *cobra.Command, fn func(p *cli.Prompter) error) error {
	if !interactive() {
		return cli.ErrNotInteractive
	}
	p, err := cli.NewPrompter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

func printWarning(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf(format, args...)))
}
