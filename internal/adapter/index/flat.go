package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// Flat is an exact inner-product index over L2-normalized vectors. Vectors
// are normalized on insert, so inner product equals cosine similarity.
// Position i always identifies the same (chunk, vector) pair for the life of
// the index contents; ties in score resolve to the lower position.
type Flat struct {
	mu       sync.RWMutex
	embedder port.Embedder
	chunks   []domain.Document
	vectors  [][]float32
}

var _ port.SearchIndex = (*Flat)(nil)

func NewFlat(embedder port.Embedder) *Flat {
	return &Flat{embedder: embedder}
}

// Build encodes every chunk and replaces the index contents. An empty chunk
// list produces an empty, queryable index. On error the previous contents
// are left untouched.
func (ix *Flat) Build(chunks []domain.Document) error {
	if len(chunks) == 0 {
		ix.mu.Lock()
		ix.chunks = nil
		ix.vectors = nil
		ix.mu.Unlock()
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := ix.embedder.Embed(texts)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for _, v := range vectors {
		normalize(v)
	}

	ix.mu.Lock()
	ix.chunks = chunks
	ix.vectors = vectors
	ix.mu.Unlock()
	return nil
}

// Restore replaces the index contents with previously persisted state. The
// vectors are expected to be normalized already (they are stored that way).
func (ix *Flat) Restore(chunks []domain.Document, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	ix.mu.Lock()
	ix.chunks = chunks
	ix.vectors = vectors
	ix.mu.Unlock()
	return nil
}

// Search encodes the query and returns the top-k chunks by inner product,
// descending. Equal scores rank by ascending index position. An unbuilt or
// empty index returns no results and no error.
func (ix *Flat) Search(query string, k int) ([]domain.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vectors) == 0 || k <= 0 {
		return nil, nil
	}

	embedded, err := ix.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if len(embedded) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	q := embedded[0]
	normalize(q)

	type scored struct {
		position int
		score    float64
	}
	scores := make([]scored, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = scored{position: i, score: dot(q, v)}
	}

	// Stable sort keeps ascending position order for equal scores.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]domain.SearchResult, k)
	for i := 0; i < k; i++ {
		results[i] = domain.SearchResult{
			Document: ix.chunks[scores[i].position],
			Score:    scores[i].score,
			Rank:     i + 1,
		}
	}
	return results, nil
}

// Len returns the number of indexed chunks.
func (ix *Flat) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Chunks returns the indexed chunk list in position order.
func (ix *Flat) Chunks() []domain.Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.chunks
}

// Vectors returns the normalized vector matrix in position order.
func (ix *Flat) Vectors() [][]float32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.vectors
}

// ModelName reports the embedding model backing the index.
func (ix *Flat) ModelName() string {
	return ix.embedder.ModelName()
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
