package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"kbrag/internal/usecase"
)

var (
	contextQuery  string
	contextMaxLen int
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Assemble ranked context for a query",
	Long: `Retrieve the top results above the similarity threshold and assemble
them into a provenance-annotated context string under the character budget,
ready to be placed into a generation prompt.

Examples:
  kbrag context -q "what is the return policy"
  kbrag context -q "hoodie options" --max-length 800`,
	Run: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().StringVarP(&contextQuery, "query", "q", "", "query (required)")
	contextCmd.Flags().IntVar(&contextMaxLen, "max-length", 0, "context budget in characters (default from config)")
	contextCmd.MarkFlagRequired("query")
}

func runContext(cmd *cobra.Command, args []string) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		log.Error().Err(err).Msg("context retrieval failed")
		fmt.Println(usecase.NoRelevantContext)
		return
	}
	engine := newEngine(cfg, embedder)

	// Query-time failures degrade to the sentinel for the end user; the
	// cause still reaches the operator through the log.
	ctx, err := engine.GetContext(contextQuery, contextMaxLen)
	if err != nil {
		log.Error().Err(err).Msg("context retrieval failed")
		fmt.Println(usecase.NoRelevantContext)
		return
	}
	fmt.Println(ctx)
}
