package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zapretctl/internal/cli"
	"zapretctl/internal/config"
	"zapretctl/internal/pipeline"
	"zapretctl/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodePermissionDenied indicates the elevation prompt was refused or dismissed.
	ExitCodePermissionDenied = 2
	// ExitCodeParseError indicates a malformed configuration or strategy file.
	ExitCodeParseError = 3
	// ExitCodeCancelled indicates the run was interrupted with Ctrl-C.
	ExitCodeCancelled = 130
)

var rootFlags cli.CommandFlags

// rootCmd represents the base command for the zapretctl application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zapretctl",
	Short: "Install, probe and configure zapret",
	Long: `zapretctl installs the zapret DPI circumvention toolset, runs blockcheck
to discover working nfqws strategies for blocked domains, and writes the
chosen strategies into the system configuration.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	// Errors are printed by Execute so a cancelled run stays silent.
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rootFlags.Format(); err != nil {
			return err
		}
		logging.InitForCLI(rootFlags.LogLevel(), os.Stderr)
		return nil
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "zapretctl version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(getExitCode(err))
	}
}

// reportError prints err and a hint to stderr. Cancellation is not an error
// from the user's point of view and prints nothing.
func reportError(err error) {
	if pipeline.Classify(err) == pipeline.ErrorCancelled {
		return
	}
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		fmt.Fprintln(os.Stderr, cfgErr.DetailedError())
		return
	}
	fmt.Fprintln(os.Stderr, cli.FormatError(err))
	if hint := cli.Hint(err); hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	switch pipeline.Classify(err) {
	case pipeline.ErrorNone:
		return ExitCodeSuccess
	case pipeline.ErrorCancelled:
		return ExitCodeCancelled
	case pipeline.ErrorPermissionDenied:
		return ExitCodePermissionDenied
	case pipeline.ErrorParse:
		return ExitCodeParseError
	}

	// Default to general error
	return ExitCodeError
}

func init() {
	cli.RegisterCommonFlags(rootCmd, &rootFlags)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newConflictsCmd())
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newStrategiesCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newServiceCmd())
	rootCmd.AddCommand(newCleanupCmd())
}
