package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"zapretctl/internal/config"
	"zapretctl/pkg/logging"
)

// OutputFormat selects how tables are rendered.
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatPlain OutputFormat = "plain"
)

// CommandFlags holds the flag values shared by every zapretctl command.
type CommandFlags struct {
	// OutputFormat specifies the table style (table, plain)
	OutputFormat string
	// Quiet suppresses the spinner and non-essential output
	Quiet bool
	// Debug enables debug logging of every subprocess line
	Debug bool
	// LogLevelName names the minimum log level (debug, info, warn, error)
	LogLevelName string
	// ConfigPath specifies a custom configuration directory path
	ConfigPath string
}

// RegisterCommonFlags registers the persistent flags on the root command.
//
// The registered flags are:
//   - --output/-o: Output format (table, plain), default: "table"
//   - --quiet/-q: Suppress non-essential output
//   - --debug: Enable debug logging
//   - --log-level: Minimum log level, overridden by --debug
//   - --config-path: Configuration directory
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, plain)")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging (show every subprocess line)")
	cmd.PersistentFlags().StringVar(&flags.LogLevelName, "log-level", "warn", "Minimum log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config-path", config.GetDefaultConfigPath(), "Configuration directory")
}

// Format validates the output flag.
func (f *CommandFlags) Format() (OutputFormat, error) {
	switch format := OutputFormat(f.OutputFormat); format {
	case OutputFormatTable, OutputFormatPlain:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table or plain)", f.OutputFormat)
	}
}

// LogLevel is debug with --debug, else the --log-level value. Unset or
// unknown names give warn, so normal runs only show the controller output.
func (f *CommandFlags) LogLevel() logging.LogLevel {
	if f.Debug {
		return logging.LevelDebug
	}
	if level, ok := logging.ParseLevel(f.LogLevelName); ok {
		return level
	}
	return logging.LevelWarn
}
