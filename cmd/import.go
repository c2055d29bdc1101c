package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zapretctl/internal/pipeline"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a strategy file and install zapret with it",
		Long: `Validates a strategy file shared from another machine, copies it into the
strategy store and runs the zapret installer. Every entry must start with
"--"; the store is left untouched when any entry is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			installer := pipeline.EasyInstaller{Env: env}
			_, err = runPipeline(cmd, env, pipeline.KindEasyInstall, installer.ImportTask(args[0]), func(res pipeline.Result) string {
				return fmt.Sprintf("Imported %d strategies and installed zapret", len(res.Strategies))
			})
			return err
		},
	}
}
