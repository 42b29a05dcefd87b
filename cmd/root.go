// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-insights",
	Short: "A CLI tool to summarize the repositories of a GitHub account.",
	Long: `github-insights collects stars, forks, traffic views, languages,
contributions and changed lines for one GitHub account, prints a summary and
saves a chart image of the results.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging with caller information")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default ./.github-stats.yaml or ~/.config/github-stats/.github-stats.yaml)")
}
