package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [plugin]",
	Short: "Show the import run log",
	Long: `Lists past import runs, newest first. With a plugin name only
that plugin's runs are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	if importerService == nil {
		return errors.New("importer not configured")
	}

	plugin := ""
	if len(args) > 0 {
		plugin = args[0]
	}

	runs, err := importerService.Runs(context.Background(), plugin, runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for i := range runs {
		run := &runs[i]
		cmd.Printf("%s  %s  %s  +%d =%d",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.PluginName, run.Status,
			run.ItemsInserted, run.ItemsSkippedDuplicate)
		if run.ErrorSummary != "" {
			cmd.Printf("  (%s)", run.ErrorSummary)
		}
		cmd.Println()
	}
	return nil
}
