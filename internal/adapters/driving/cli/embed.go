package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed records that lack a current vector",
	Long: `Backfills embeddings for records without a vector from the current
model. Run after switching embedding models or after imports made while
the embedding provider was unreachable.`,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	if embedderService == nil {
		return errors.New("embedder not configured")
	}

	count, err := embedderService.Backfill(context.Background())
	if err != nil {
		return fmt.Errorf("backfill: %w (embedded %d before failing)", err, count)
	}

	cmd.Printf("Embedded %d records.\n", count)
	return nil
}
