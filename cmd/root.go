package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "jira-overdue-mover",
	Short: "Move overdue Jira tasks and mail a summary report",
	Long: `A batch job that fetches Jira issues via saved team filters, finds the
overdue ones, optionally moves their due date to the next working day, and
emails an HTML summary report.

Intended to run single-shot from an external scheduler (CI pipeline, cron).
Team credentials are resolved from environment variables; teams without a
specific identity fall back to the designated default one.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Global flags
var (
	logLevel   string
	jiraURL    string
	moveTasks  bool
	configPath string
	insecure   bool
)

func init() {
	rootCmd.Flags().StringVar(&logLevel, "loglevel", "debug", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().StringVar(&jiraURL, "jiraurl", "", "URL to the Jira server (overrides config)")
	rootCmd.Flags().BoolVar(&moveTasks, "movetasks", false, "Move due dates instead of only reporting")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.Flags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
}

func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
