package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zapretctl/internal/pipeline"
)

// conflictsFoundError reports DPI tools or VPNs that interfere with zapret.
type conflictsFoundError struct {
	Running []string
}

func (e *conflictsFoundError) Error() string {
	return fmt.Sprintf("conflicting processes are running: %s (stop them or pass --force)", strings.Join(e.Running, ", "))
}

func newConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List running programs that conflict with zapret",
		Long: `Checks whether other DPI circumvention tools or VPN clients are running.
They intercept the same traffic as zapret and make blockcheck results
meaningless. Exits with code 1 when any is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			running, err := scanConflicts(cmd, env)
			if err != nil {
				return err
			}
			renderer(cmd).Conflicts(env.Config.Conflicts, running)
			if len(running) > 0 {
				return &conflictsFoundError{Running: running}
			}
			return nil
		},
	}
}

// scanConflicts runs the conflict scan. Probe failures are printed as a
// warning and do not fail the scan.
func scanConflicts(cmd *cobra.Command, env pipeline.Env) ([]string, error) {
	running, err := pipeline.ScanConflicts(cmd.Context(), env.Runner, env.Config.Conflicts)
	if err != nil {
		if pipeline.Classify(err) == pipeline.ErrorCancelled {
			return nil, err
		}
		printWarning(cmd, "some processes could not be checked: %v", err)
	}
	return running, nil
}
