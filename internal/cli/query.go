package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the knowledge base",
	Long: `Search for relevant chunks by semantic similarity.

Examples:
  kbrag query -q "do you have hoodies"
  kbrag query -q "shipping time" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

// queryResult is a simplified result for CLI output.
type queryResult struct {
	Source string  `json:"source"`
	Type   string  `json:"type"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
	Text   string  `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryTopK > 0 {
		cfg.Retrieval.TopK = queryTopK
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, embedder)

	found, err := engine.Search(queryText)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]queryResult, 0, len(found))
	for _, r := range found {
		source := r.Document.Metadata.Filename
		if source == "" {
			source = r.Document.Metadata.Source
		}
		results = append(results, queryResult{
			Source: source,
			Type:   r.Document.Metadata.Type,
			Score:  r.Score,
			Rank:   r.Rank,
			Text:   r.Document.Content,
		})
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for _, r := range results {
		fmt.Printf("--- [%d] %s (%s, score: %.2f) ---\n", r.Rank, r.Source, r.Type, r.Score)
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
