package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"zapretctl/internal/pipeline"
)

func newApplyCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "apply <index...>",
		Short: "Write stored strategies into the zapret config and restart it",
		Long: `Replaces NFQWS_OPT in the system zapret config with the selected stored
strategies and restarts the zapret service. Indexes are the numbers shown
by "zapretctl strategies list".`,
		Example: `  zapretctl apply 1 3
  zapretctl apply --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("pass strategy indexes or --all")
			}
			env, err := loadEnv()
			if err != nil {
				return err
			}
			selected, err := selectStored(env, args, all)
			if err != nil {
				return err
			}
			applier := pipeline.Applier{Env: env}
			_, err = runPipeline(cmd, env, pipeline.KindApply, applier.Task(selected), func(pipeline.Result) string {
				return fmt.Sprintf("Applied %d strategies and restarted %s", len(selected), env.Config.Service.Unit)
			})
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Apply every stored strategy")
	return cmd
}

func selectStored(env pipeline.Env, args []string, all bool) ([]string, error) {
	stored, err := env.Store.Load()
	if err != nil {
		return nil, err
	}
	if all {
		if len(stored) == 0 {
			return nil, pipeline.ErrNoSelection
		}
		return stored, nil
	}

	indexes := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid strategy index %q", a)
		}
		indexes[i] = n
	}
	return pipeline.SelectStrategies(stored, indexes)
}
