package cmd

import (
	"errors"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the owner/repo whose releases carry zapretctl builds.
const githubRepoSlug = "zapretctl/zapretctl"

func newSelfUpdateCmd() *cobra.Command {
	var checkOnly bool
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update zapretctl to the latest release",
		Long: `Looks up the latest zapretctl release on GitHub and replaces the
running binary when it is newer. When zapretctl lives in a system directory,
run this with sufficient rights to write there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd, checkOnly)
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether a newer release exists")
	return cmd
}

func runSelfUpdate(cmd *cobra.Command, checkOnly bool) error {
	current := rootCmd.Version
	// Development builds carry no semantic version to compare.
	if current == "" || current == "dev" {
		return errors.New("cannot self-update a development version")
	}

	out := cmd.OutOrStdout()
	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	latest, found, err := updater.DetectLatest(cmd.Context(), selfupdate.ParseSlug(githubRepoSlug))
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", githubRepoSlug)
	}
	if !latest.GreaterThan(current) {
		fmt.Fprintf(out, "zapretctl %s is the latest version.\n", current)
		return nil
	}

	fmt.Fprintf(out, "zapretctl %s is available (running %s, published %s).\n",
		latest.Version(), current, latest.PublishedAt.Format("2006-01-02"))
	if checkOnly {
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := updater.UpdateTo(cmd.Context(), latest, exe); err != nil {
		return fmt.Errorf("update of %s failed: %w", exe, err)
	}
	fmt.Fprintf(out, "Updated %s to %s.\n", exe, latest.Version())
	return nil
}
