package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

var (
	searchTopK   int
	searchPlugin string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored records by meaning",
	Long: `Embeds the query and ranks stored records by cosine similarity.
Only records that have been embedded are candidates; run 'alcove embed'
after switching embedding models.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVar(&searchPlugin, "plugin", "", "restrict results to one plugin")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		TopK:   searchTopK,
		Plugin: searchPlugin,
	}

	results, err := searchService.Search(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	type jsonResult struct {
		Plugin    string  `json:"plugin"`
		SourceID  string  `json:"source_id"`
		ItemType  string  `json:"item_type"`
		Title     string  `json:"title"`
		Timestamp string  `json:"timestamp"`
		Score     float64 `json:"score"`
	}

	out := make([]jsonResult, 0, len(results))
	for i := range results {
		rec := results[i].Record
		out = append(out, jsonResult{
			Plugin:    rec.SourcePlugin,
			SourceID:  rec.SourceID,
			ItemType:  rec.ItemType,
			Title:     rec.Title,
			Timestamp: rec.SourceTimestamp.Format("2006-01-02 15:04"),
			Score:     results[i].Score,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		rec := results[i].Record
		title := rec.Title
		if title == "" {
			title = rec.SourceID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		cmd.Printf("      %s/%s, %s\n", rec.SourcePlugin, rec.ItemType,
			rec.SourceTimestamp.Format("2006-01-02 15:04"))
		cmd.Println()
	}
	return nil
}
