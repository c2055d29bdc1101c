package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"zapretctl/internal/cli"
	"zapretctl/internal/service"
)

const serviceWatchInterval = 2 * time.Second

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Show or control the zapret service",
	}
	cmd.AddCommand(newServiceStatusCmd())
	for _, action := range []service.Action{service.ActionStart, service.ActionStop, service.ActionRestart} {
		cmd.AddCommand(newServiceActionCmd(action))
	}
	return cmd
}

func newServiceStatusCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the zapret unit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			mgr := service.NewManager(env.Config.Service.Unit, env.Runner)
			if watch {
				return mgr.Watch(cmd.Context(), serviceWatchInterval, func(s service.Status) {
					renderer(cmd).ServiceStatus(s)
				})
			}
			status, err := mgr.Status(cmd.Context())
			if err != nil {
				return err
			}
			renderer(cmd).ServiceStatus(status)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print again whenever the state changes")
	return cmd
}

func newServiceActionCmd(action service.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action),
		Short: "Run systemctl " + string(action) + " on the zapret unit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			mgr := service.NewManager(env.Config.Service.Unit, env.Runner)
			if err := mgr.Control(cmd.Context(), action); err != nil {
				return err
			}
			if !rootFlags.Quiet {
				cmd.Println(cli.FormatSuccess(mgr.Unit + ": " + string(action) + " done"))
			}
			return nil
		},
	}
}
