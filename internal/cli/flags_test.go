package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapretctl/pkg/logging"
)

func TestCommandFlags_Format(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    OutputFormat
		wantErr bool
	}{
		{name: "table", format: "table", want: OutputFormatTable},
		{name: "plain", format: "plain", want: OutputFormatPlain},
		{name: "json is not supported", format: "json", wantErr: true},
		{name: "empty", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&CommandFlags{OutputFormat: tt.format}).Format()
			if tt.wantErr {
				assert.ErrorContains(t, err, "unsupported output format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandFlags_LogLevel(t *testing.T) {
	assert.Equal(t, logging.LevelWarn, (&CommandFlags{}).LogLevel())
	assert.Equal(t, logging.LevelDebug, (&CommandFlags{Debug: true}).LogLevel())
	assert.Equal(t, logging.LevelInfo, (&CommandFlags{LogLevelName: "info"}).LogLevel())
	assert.Equal(t, logging.LevelDebug, (&CommandFlags{LogLevelName: "error", Debug: true}).LogLevel())
	assert.Equal(t, logging.LevelWarn, (&CommandFlags{LogLevelName: "loud"}).LogLevel())
}

func TestRegisterCommonFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	flags := &CommandFlags{}
	RegisterCommonFlags(cmd, flags)

	require.NoError(t, cmd.PersistentFlags().Parse([]string{"-o", "plain", "--debug", "-q", "--log-level", "info", "--config-path", "/tmp/cfg"}))
	assert.Equal(t, "plain", flags.OutputFormat)
	assert.True(t, flags.Debug)
	assert.True(t, flags.Quiet)
	assert.Equal(t, "info", flags.LogLevelName)
	assert.Equal(t, "/tmp/cfg", flags.ConfigPath)
}
