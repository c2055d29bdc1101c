package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"zapretctl/internal/cli"
	"zapretctl/internal/pipeline"
)

type installFlags struct {
	overwrite bool
	reuse     bool
	force     bool
}

func newInstallCmd() *cobra.Command {
	flags := &installFlags{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install dependencies, then clone and build zapret",
		Long: `Installs the build and runtime dependencies for this distribution, sets
up dnscrypt-proxy, then clones and builds zapret into the work directory.

An existing work directory is reused unless --overwrite is given. Without
either flag you are asked on a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Remove an existing work directory first")
	cmd.Flags().BoolVar(&flags.reuse, "reuse", false, "Reuse an existing work directory")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Continue even when conflicting programs are running")
	cmd.MarkFlagsMutuallyExclusive("overwrite", "reuse")
	return cmd
}

func runInstall(cmd *cobra.Command, flags *installFlags) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	if !flags.force {
		running, err := scanConflicts(cmd, env)
		if err != nil {
			return err
		}
		if len(running) > 0 {
			return &conflictsFoundError{Running: running}
		}
	}

	overwrite, err := chooseOverwrite(cmd, env, flags)
	if err != nil {
		return err
	}

	installer := pipeline.Installer{Env: env}
	_, err = runPipeline(cmd, env, pipeline.KindInstall, installer.Task(pipeline.InstallOptions{Overwrite: overwrite}),
		func(pipeline.Result) string {
			return fmt.Sprintf("zapret is ready in %s. Next: zapretctl discover", env.Config.WorkDir)
		})
	return err
}

// chooseOverwrite decides what to do with an existing work tree.
func chooseOverwrite(cmd *cobra.Command, env pipeline.Env, flags *installFlags) (bool, error) {
	if flags.overwrite || flags.reuse {
		return flags.overwrite, nil
	}
	if !pipeline.InspectInstall(env.Config).WorkTreeExists {
		return false, nil
	}

	var overwrite bool
	err := withPrompter(cmd, func(p *cli.Prompter) error {
		idx, err := p.Choose(fmt.Sprintf("%s already exists", env.Config.WorkDir), []string{"reuse", "overwrite"}, 0)
		overwrite = idx == 1
		return err
	})
	if errors.Is(err, cli.ErrNotInteractive) {
		return false, nil
	}
	return overwrite, err
}
