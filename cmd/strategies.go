package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zapretctl/internal/pipeline"
	"zapretctl/internal/strategy"
	"zapretctl/pkg/logging"
)

func newStrategiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Inspect stored strategies",
	}
	cmd.AddCommand(newStrategiesListCmd())
	return cmd
}

func newStrategiesListCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stored strategies",
		Long: `Prints the strategies saved by the last discovery or import, numbered
for use with apply. With --watch the list is printed again whenever the
store changes, until Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			if err := printStrategies(cmd, env); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchStrategies(cmd, env)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print again when the store changes")
	return cmd
}

func printStrategies(cmd *cobra.Command, env pipeline.Env) error {
	stored, err := env.Store.Load()
	if err != nil {
		return err
	}
	renderer(cmd).Strategies(stored)
	return nil
}

func watchStrategies(cmd *cobra.Command, env pipeline.Env) error {
	changed := make(chan struct{}, 1)
	w := strategy.NewWatcher(strategy.WatcherConfig{
		Path: env.Store.Path,
		OnChange: func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	})
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", env.Store.Path, err)
	}
	defer w.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-changed:
			fmt.Fprintln(cmd.OutOrStdout())
			if err := printStrategies(cmd, env); err != nil {
				logging.Warn("CLI", "Reloading strategies failed: %v", err)
			}
		}
	}
}
