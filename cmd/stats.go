// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/naka-gawa/github-insights/internal/config"
	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/naka-gawa/github-insights/internal/gateway"
	"github.com/naka-gawa/github-insights/internal/logging"
	"github.com/naka-gawa/github-insights/internal/prompt"
	"github.com/naka-gawa/github-insights/internal/report"
	"github.com/naka-gawa/github-insights/internal/usecase"
	"github.com/naka-gawa/github-insights/internal/visual"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarizes a GitHub account and saves a chart of the results",
	Long: `Collects repository statistics (stars, forks, 14-day traffic views, languages,
commit search count and lines changed in recent pushes) for one GitHub account,
prints a report and writes a 2x2 chart image to the chart directory.

The account and token are read from flags, the environment (GITHUB_STATS_ACCOUNT,
GITHUB_STATS_TOKEN or GITHUB_TOKEN) or the config file, and prompted for otherwise.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		logger := logging.New(cfg.Log, cfg.Verbose, cfg.Debug, os.Stderr)

		run := &statsRun{
			cfg:    cfg,
			in:     cmd.InOrStdin(),
			out:    cmd.OutOrStdout(),
			errOut: cmd.ErrOrStderr(),
			logger: logger,
			now:    time.Now(),
		}
		if err := run.execute(ctx); err != nil {
			printFailure(cmd.ErrOrStderr(), err)
			os.Exit(1)
		}
	},
}

// statsRun carries everything one invocation of the stats command needs.
type statsRun struct {
	cfg    *config.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger zerolog.Logger
	now    time.Time
}

// execute collects, renders and prints. Nothing is printed and no image is
// left behind unless every step succeeds.
func (r *statsRun) execute(ctx context.Context) error {
	format, err := report.ParseFormat(r.cfg.Format)
	if err != nil {
		return err
	}
	account, token, err := r.credentials()
	if err != nil {
		return err
	}

	// The window is computed once so the report, the chart and its file name agree.
	window := domain.NewWindow(r.now)

	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:      token,
		APIURL:     r.cfg.APIURL,
		GraphQLURL: r.cfg.GraphQLURL,
	}, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	visualizer, err := visual.New(visual.Options{
		Prefix: r.cfg.Chart.Prefix,
		Format: r.cfg.Chart.Format,
		Dir:    r.cfg.Chart.Dir,
		Width:  vg.Length(r.cfg.Chart.Width) * vg.Inch,
		Height: vg.Length(r.cfg.Chart.Height) * vg.Inch,
	}, r.logger)
	if err != nil {
		return err
	}
	collector := usecase.NewCollector(githubGateway, r.logger,
		usecase.WithConcurrency(r.cfg.Concurrency),
		usecase.WithWindowContributions(r.cfg.WindowContributions),
	)

	result, err := collector.Collect(ctx, account, window)
	if err != nil {
		return err
	}
	path, err := visualizer.Render(result, account, window)
	if err != nil {
		return err
	}

	if format != report.FormatText {
		r.logger.Info().Str("path", path).Msg("Visualizations saved.")
		return report.Encode(r.out, result, account, window, format)
	}
	if err := report.Print(r.out, report.Build(result, account, window), report.NewTheme(r.out)); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\nVisualizations saved as '%s'\n", path)
	fmt.Fprintf(r.out, "Data collection period: %s to %s\n", window.StartLabel(), window.EndLabel())
	return nil
}

// credentials returns the configured account and token, prompting for missing ones.
func (r *statsRun) credentials() (account, token string, err error) {
	account, token = r.cfg.Account, r.cfg.Token
	if account != "" && token != "" {
		return account, token, nil
	}
	p := prompt.New(r.in, r.errOut)
	if account == "" {
		if account, err = p.Ask("Enter GitHub username: "); err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
	}
	if token == "" {
		if token, err = p.AskSecret("Enter GitHub token: "); err != nil {
			return "", "", fmt.Errorf("failed to read token: %w", err)
		}
	}
	return account, token, nil
}

// printFailure writes the generic diagnostic shown for every failed run.
func printFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "\nError occurred: %v\n", err)
	fmt.Fprintln(w, "Please check if your GitHub token is valid.")
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("account", "a", "", "Target GitHub account name")
	statsCmd.Flags().String("token", "", "GitHub access token (prefer GITHUB_TOKEN)")
	statsCmd.Flags().String("api-url", gateway.DefaultAPIURL, "GitHub REST API base URL")
	statsCmd.Flags().String("graphql-url", gateway.DefaultGraphQLURL, "GitHub GraphQL API URL")
	statsCmd.Flags().Int("concurrency", 1, "Maximum parallel per-repository and per-commit requests")
	statsCmd.Flags().StringP("format", "f", string(report.FormatText), "Report format: text, json or yaml")
	statsCmd.Flags().Bool("window-contributions", false, "Also count commit contributions inside the 90-day window (GraphQL)")
	statsCmd.Flags().String("chart-prefix", visual.DefaultPrefix, "Chart file name prefix")
	statsCmd.Flags().String("chart-format", visual.DefaultFormat, "Chart format: png, jpg, tif, svg, pdf or eps")
	statsCmd.Flags().String("chart-dir", ".", "Directory the chart is written to")
}
