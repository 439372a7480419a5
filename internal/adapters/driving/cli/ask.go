package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

const (
	askSystemPrompt = `You are a helpful assistant answering questions about the
user's personal data. Use only the provided context. When the context does
not contain the answer, say so instead of guessing. Reference the sources
you used by their bracketed numbers.`

	// askSnippetChars bounds one record's contribution to the prompt.
	askSnippetChars = 1500

	askMaxTokens   = 1024
	askTemperature = 0.2
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over your data",
	Long: `Retrieves the records most relevant to the question and asks the
configured chat model to answer from them. Requires an LLM API key in the
configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top", "n", 5, "number of records given to the model")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	if chatService == nil {
		return errors.New("chat model not configured; set llm.api_key in the config file")
	}

	question := args[0]
	ctx := context.Background()

	results, err := searchService.Search(ctx, question, domain.SearchOptions{TopK: askTopK})
	if err != nil {
		return fmt.Errorf("retrieve context: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No relevant records found; nothing to answer from.")
		return nil
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: askSystemPrompt},
		{Role: "user", Content: buildPrompt(question, results)},
	}
	opts := driven.ChatOptions{MaxTokens: askMaxTokens, Temperature: askTemperature}

	answer, err := chatService.Chat(ctx, messages, opts)
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}

	cmd.Println(answer)
	cmd.Println()
	cmd.Println("Sources:")
	for i := range results {
		rec := results[i].Record
		cmd.Printf("  [%d] %s (%s, %s)\n", i+1, rec.Title, rec.SourcePlugin,
			rec.SourceTimestamp.Format("2006-01-02"))
	}
	return nil
}

// buildPrompt renders the retrieved records and the question into one
// user message.
func buildPrompt(question string, results []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	b.WriteString(buildContext(results))
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// buildContext formats ranked records into a numbered context block.
func buildContext(results []domain.SearchResult) string {
	var b strings.Builder
	for i := range results {
		rec := results[i].Record
		fmt.Fprintf(&b, "[%d] %s (%s, %s)\n", i+1, rec.Title, rec.SourcePlugin,
			rec.SourceTimestamp.Format("2006-01-02"))

		content := rec.Content
		if len(content) > askSnippetChars {
			content = content[:askSnippetChars] + "..."
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return b.String()
}
