package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-pulse/internal/config"
	"github.com/kurihiro0119/github-pulse/internal/domain"
	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
	"github.com/kurihiro0119/github-pulse/internal/pulse"
	"github.com/kurihiro0119/github-pulse/internal/report"
)

var (
	days       int
	token      string
	strategy   string
	exportPath string
	outputJSON bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "github-pulse",
	Short: "GitHub repository pulse reports",
	Long: `A CLI tool for generating pulse reports for a GitHub repository.

A pulse report summarizes commit, issue, and pull request activity over a
trailing period, plus repository metadata (stars, forks, open issues).
Data is collected either through the GitHub REST API or by rendering the
repository's pulse page in a headless browser.`,
}

var pulseCmd = &cobra.Command{
	Use:   "pulse [owner] [repo]",
	Short: "Generate a pulse report for a repository",
	Long:  `Collect activity for a repository over the reporting window and print or export the resulting report.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runPulse,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	pulseCmd.Flags().IntVar(&days, "days", 0, "reporting period in days (default 30)")
	pulseCmd.Flags().StringVar(&token, "token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	pulseCmd.Flags().StringVar(&strategy, "strategy", "", "collection strategy: api or web (default api)")
	pulseCmd.Flags().StringVar(&exportPath, "export", "", "write the report to a JSON file")
	pulseCmd.Flags().BoolVar(&outputJSON, "json", false, "print the report as JSON instead of tables")

	rootCmd.AddCommand(pulseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPulse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("days") {
		// An explicitly given bad value must error, not fall back to the
		// configured default.
		if days <= 0 {
			return apperrors.NewInvalidWindowError(days)
		}
		cfg.Days = days
	}
	if strategy != "" {
		cfg.Strategy = strategy
	}
	if token == "" {
		token = cfg.GitHubToken
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	runner := pulse.NewRunner(logger)
	rep, err := runner.Run(cmd.Context(), pulse.Options{
		Repo:          domain.RepoRef{Owner: args[0], Name: args[1]},
		Window:        domain.ReportWindow{Days: cfg.Days},
		Token:         token,
		Strategy:      pulse.Strategy(cfg.Strategy),
		ExportPath:    exportPath,
		PageSize:      cfg.PageSize,
		RecentCap:     cfg.RecentCap,
		Headless:      cfg.BrowserHeadless,
		RenderTimeout: cfg.RenderTimeout,
	})
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := report.Serialize(rep)
		if err != nil {
			return fmt.Errorf("failed to serialize report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	renderReport(cmd.OutOrStdout(), rep)
	return nil
}
