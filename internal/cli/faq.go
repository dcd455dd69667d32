package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kbrag/internal/usecase"
)

var faqQuery string

var faqCmd = &cobra.Command{
	Use:   "faq",
	Short: "Find the FAQ entry most relevant to a query",
	Long: `Search the knowledge base and return the highest-ranked result whose
filename contains "faq".

Example:
  kbrag faq -q "how long do I have to return an item"`,
	RunE: runFAQ,
}

func init() {
	rootCmd.AddCommand(faqCmd)
	faqCmd.Flags().StringVarP(&faqQuery, "query", "q", "", "query (required)")
	faqCmd.MarkFlagRequired("query")
}

func runFAQ(cmd *cobra.Command, args []string) error {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, embedder)

	r, err := engine.FindFirstByFilename(faqQuery, "faq")
	if errors.Is(err, usecase.ErrNotFound) {
		fmt.Println("No FAQ entry matched.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("faq search failed: %w", err)
	}

	fmt.Printf("[%s, score: %.2f]\n%s\n", r.Document.Metadata.Filename, r.Score, r.Document.Content)
	return nil
}
