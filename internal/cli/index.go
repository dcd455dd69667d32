package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kbrag/internal/port"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the knowledge base",
	Long: `Load the knowledge-base directory, chunk and embed every document,
and persist the index. Without --force an existing persisted index is loaded
instead of rebuilt.

Examples:
  kbrag index            # Load the persisted index, build it if missing
  kbrag index --force    # Rebuild from the knowledge base unconditionally`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "rebuild even if a persisted index exists")
}

// progressEmbedder advances a progress bar as chunk batches are encoded.
type progressEmbedder struct {
	port.Embedder
	bar *progressbar.ProgressBar
}

func (p *progressEmbedder) Embed(texts []string) ([][]float32, error) {
	vectors, err := p.Embedder.Embed(texts)
	if err == nil {
		p.bar.Add(len(texts))
	}
	return vectors, err
}

func runIndex(cmd *cobra.Command, args []string) error {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	bar := progressbar.Default(-1, "embedding chunks")
	engine := newEngine(cfg, &progressEmbedder{Embedder: embedder, bar: bar})

	if err := engine.Initialize(indexForce); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	bar.Finish()

	chunks, err := engine.Len()
	if err != nil {
		return err
	}

	fmt.Printf("\nIndex ready:\n")
	fmt.Printf("  Chunks:     %d\n", chunks)
	fmt.Printf("  Model:      %s\n", embedder.ModelName())
	fmt.Printf("  Dimension:  %d\n", embedder.Dimension())
	fmt.Printf("  Stored at:  %s.{db,chunks.json,vectors.bin}\n", cfg.KnowledgeBase.IndexPath)
	return nil
}
