package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"zapretctl/internal/cli"
	"zapretctl/internal/pipeline"
)

func newCleanupCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove the local zapret work directory",
		Long: `Removes the cloned and built zapret work directory once zapret is
installed system-wide and strategies have been saved. Nothing is removed
before that, since discovery needs the work directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			state := pipeline.InspectInstall(env.Config)
			switch {
			case !state.WorkTreeExists:
				cmd.Println("Nothing to clean up.")
				return nil
			case !state.SystemInstalled:
				return fmt.Errorf("zapret is not installed in %s yet; keep %s", env.Config.SystemDir, env.Config.WorkDir)
			case !state.StoreExists:
				return fmt.Errorf("no strategies saved yet; run discover before removing %s", env.Config.WorkDir)
			}

			if !yes {
				err := withPrompter(cmd, func(p *cli.Prompter) error {
					ok, err := p.Confirm(fmt.Sprintf("Remove %s?", env.Config.WorkDir), false)
					if err == nil && !ok {
						return pipeline.ErrCancelled
					}
					return err
				})
				if errors.Is(err, cli.ErrNotInteractive) {
					return errors.New("refusing to remove without confirmation; pass --yes")
				}
				if err != nil {
					return err
				}
			}

			if err := pipeline.RemoveWorkTree(cmd.Context(), env.Config, env.Runner); err != nil {
				return err
			}
			cmd.Println(cli.FormatSuccess("Removed " + env.Config.WorkDir))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
