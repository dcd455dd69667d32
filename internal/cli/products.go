package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kbrag/internal/domain"
)

var (
	productsQuery string
	productsJSON  bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Search the product catalog",
	Long: `Search and return only product documents, in rank order. No
similarity threshold is applied: every type-matching result in the top-k
comes back with its score.

Example:
  kbrag products -q "warm winter jacket"`,
	RunE: runProducts,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.Flags().StringVarP(&productsQuery, "query", "q", "", "query (required)")
	productsCmd.Flags().BoolVar(&productsJSON, "json", false, "output as JSON")
	productsCmd.MarkFlagRequired("query")
}

type productResult struct {
	ProductID string  `json:"product_id"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Score     float64 `json:"score"`
	Content   string  `json:"content"`
}

func runProducts(cmd *cobra.Command, args []string) error {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, embedder)

	found, err := engine.SearchFiltered(productsQuery, domain.TypeProduct)
	if err != nil {
		return fmt.Errorf("product search failed: %w", err)
	}

	results := make([]productResult, 0, len(found))
	for _, r := range found {
		results = append(results, productResult{
			ProductID: r.Document.Metadata.ProductID,
			Category:  r.Document.Metadata.Category,
			Price:     r.Document.Metadata.Price,
			Score:     r.Score,
			Content:   r.Document.Content,
		})
	}

	if productsJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No matching products.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("--- [%d] %s (%s, $%g, score: %.2f) ---\n", i+1, r.ProductID, r.Category, r.Price, r.Score)
		fmt.Println(r.Content)
		fmt.Println()
	}

	return nil
}
