package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"zapretctl/internal/cli"
	"zapretctl/internal/pipeline"
)

type discoverFlags struct {
	level     string
	noInstall bool
}

func newDiscoverCmd() *cobra.Command {
	flags := &discoverFlags{}
	cmd := &cobra.Command{
		Use:   "discover [domain...]",
		Short: "Run blockcheck to find working strategies",
		Long: `Runs zapret's blockcheck against the given domains and stores the nfqws
strategies it reports. Unless --no-install is given, zapret is then
installed system-wide with those strategies.

Domains may be separated by spaces or commas. Without arguments you are
asked for them on a terminal.`,
		Example: `  zapretctl discover youtube.com discord.com
  zapretctl discover rutracker.org --level standard --no-install`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, flags, args)
		},
	}
	cmd.Flags().StringVar(&flags.level, "level", "", "Scan level: quick, standard or force (default quick)")
	cmd.Flags().BoolVar(&flags.noInstall, "no-install", false, "Only store the strategies, do not run the installer")
	return cmd
}

func runDiscover(cmd *cobra.Command, flags *discoverFlags, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	domains, level, err := discoverInputs(cmd, flags, args)
	if err != nil {
		return err
	}

	discoverer := pipeline.Discoverer{Env: env}
	opts := pipeline.DiscoveryOptions{Domains: domains, Level: level, AutoInstall: !flags.noInstall}
	res, err := runPipeline(cmd, env, pipeline.KindDiscovery, discoverer.Task(opts), func(res pipeline.Result) string {
		if len(res.Strategies) == 0 {
			return "blockcheck found no working strategy"
		}
		return fmt.Sprintf("Saved %d strategies to %s", len(res.Strategies), env.Config.StrategyStorePath)
	})
	if err != nil {
		return err
	}
	if len(res.Strategies) > 0 && !rootFlags.Quiet {
		renderer(cmd).Strategies(res.Strategies)
	}
	return nil
}

// discoverInputs resolves domains and scan level from arguments, asking on
// a terminal for whatever is missing.
func discoverInputs(cmd *cobra.Command, flags *discoverFlags, args []string) ([]string, pipeline.ScanLevel, error) {
	var (
		domains []string
		level   pipeline.ScanLevel
		err     error
	)
	if len(args) > 0 {
		if domains, err = pipeline.CollectDomains(args); err != nil {
			return nil, "", err
		}
	}
	if flags.level != "" {
		if level, err = pipeline.ParseScanLevel(flags.level); err != nil {
			return nil, "", err
		}
	}
	if domains != nil && level != "" {
		return domains, level, nil
	}

	err = withPrompter(cmd, func(p *cli.Prompter) error {
		if domains == nil {
			if domains, err = p.Domains(); err != nil {
				return err
			}
		}
		if level == "" {
			level, err = p.ScanLevel()
		}
		return err
	})
	if errors.Is(err, cli.ErrNotInteractive) {
		if domains == nil {
			return nil, "", pipeline.ErrNoDomains
		}
		return domains, pipeline.ScanQuick, nil
	}
	return domains, level, err
}
