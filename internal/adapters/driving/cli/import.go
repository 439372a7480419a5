package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import [plugin...]",
	Short: "Run an import from configured plugins",
	Long: `Runs an orchestrated import. With no arguments every enabled plugin
is imported; with plugin names only those plugins run, enabled or not.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importerService == nil {
		return errors.New("importer not configured")
	}

	rc := domain.RunContext{
		Plugins:   args,
		InvokedAt: time.Now().UTC(),
		Trigger:   domain.TriggerManual,
	}

	runs, err := importerService.Run(context.Background(), rc)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	for i := range runs {
		printRun(cmd, &runs[i])
	}
	return nil
}

func printRun(cmd *cobra.Command, run *domain.ImportRun) {
	cmd.Printf("%s: %s\n", run.PluginName, run.Status)
	cmd.Printf("  fetched %d, inserted %d, skipped %d duplicates\n",
		run.ItemsFetched, run.ItemsInserted, run.ItemsSkippedDuplicate)
	if run.ErrorSummary != "" {
		cmd.Printf("  error: %s\n", run.ErrorSummary)
	}
}
