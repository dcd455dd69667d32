package usecase

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"kbrag/internal/adapter/index"
	"kbrag/internal/adapter/store"
	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// NoRelevantContext is returned by GetContext when nothing in the knowledge
// base passes the similarity threshold.
const NoRelevantContext = "No relevant information found in the knowledge base."

// contextSeparator joins formatted results in the assembled context.
const contextSeparator = "\n---\n"

// ErrNotFound reports that no ranked result matched a filename filter.
var ErrNotFound = errors.New("no matching document")

// Params configures a retrieval engine.
type Params struct {
	KnowledgeDir        string
	TopK                int
	SimilarityThreshold float64
	MaxContextLength    int
}

// Engine orchestrates loading, chunking, indexing, persistence and query-time
// context assembly. It is the only surface external collaborators use.
//
// Reads on a built index run concurrently; Initialize holds the writer lock
// for the whole load-chunk-embed-save sequence, so no reader ever observes a
// half-built index.
type Engine struct {
	mu      sync.RWMutex
	loader  port.Loader
	chunker port.Chunker
	index   *index.Flat
	store   *store.Store
	params  Params

	initialized bool
}

// New creates an engine. The engine is not initialized until Initialize is
// called or the first query triggers it.
func New(loader port.Loader, chunker port.Chunker, ix *index.Flat, st *store.Store, params Params) *Engine {
	if params.TopK < 1 {
		params.TopK = 3
	}
	if params.MaxContextLength < 1 {
		params.MaxContextLength = 2000
	}
	return &Engine{
		loader:  loader,
		chunker: chunker,
		index:   ix,
		store:   st,
		params:  params,
	}
}

// Initialize loads the persisted index, or rebuilds it from the knowledge
// base when loading fails or force is set. Calling it again after a
// successful initialize is a no-op unless force is set. On a failed rebuild
// the previous index contents stay in place and the error is returned.
func (e *Engine) Initialize(force bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initLocked(force)
}

func (e *Engine) initLocked(force bool) error {
	if e.initialized && !force {
		return nil
	}

	if !force {
		chunks, vectors, err := e.store.Load(e.index.ModelName())
		if err == nil {
			if err := e.index.Restore(chunks, vectors); err == nil {
				e.initialized = true
				return nil
			}
		} else {
			log.Info().Err(err).Msg("no usable persisted index, rebuilding")
		}
	}

	return e.rebuildLocked()
}

func (e *Engine) rebuildLocked() error {
	log.Info().Str("dir", e.params.KnowledgeDir).Msg("building index")

	docs, loadErrs := e.loader.Load(e.params.KnowledgeDir)
	for _, le := range loadErrs {
		log.Warn().Err(le.Err).Str("file", le.Path).Msg("source skipped during build")
	}
	if len(docs) == 0 && len(loadErrs) > 0 {
		return fmt.Errorf("load knowledge base: %w", loadErrs[0])
	}

	chunks := e.chunker.Split(docs)

	if err := e.index.Build(chunks); err != nil {
		log.Error().Err(err).Msg("index build failed")
		return fmt.Errorf("build index: %w", err)
	}

	if err := e.store.Save(e.index.ModelName(), e.index.Chunks(), e.index.Vectors()); err != nil {
		log.Error().Err(err).Msg("index persist failed")
		e.initialized = false
		return fmt.Errorf("save index: %w", err)
	}

	e.initialized = true
	log.Info().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("index built")
	return nil
}

// ensureInitialized makes every query method usable without an explicit init
// step. The first query in a process pays the full load or rebuild latency.
func (e *Engine) ensureInitialized() error {
	e.mu.RLock()
	ok := e.initialized
	e.mu.RUnlock()
	if ok {
		return nil
	}
	return e.Initialize(false)
}

// Search returns the raw ranked top-k results for the query. No similarity
// threshold is applied.
func (e *Engine) Search(query string) ([]domain.SearchResult, error) {
	if err := e.ensureInitialized(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.Search(query, e.params.TopK)
}

// GetContext retrieves ranked results, drops those below the similarity
// threshold, and greedily assembles provenance-prefixed blocks in rank order
// until appending the next block would exceed maxLength (characters of the
// formatted text; truncation is at result granularity, never mid-result).
// maxLength <= 0 selects the configured default. When nothing passes the
// threshold the sentinel NoRelevantContext is returned.
func (e *Engine) GetContext(query string, maxLength int) (string, error) {
	if err := e.ensureInitialized(); err != nil {
		return "", err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	if maxLength <= 0 {
		maxLength = e.params.MaxContextLength
	}

	results, err := e.index.Search(query, e.params.TopK)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	var relevant []domain.SearchResult
	for _, r := range results {
		if r.Score >= e.params.SimilarityThreshold {
			relevant = append(relevant, r)
		}
	}
	if len(relevant) == 0 {
		return NoRelevantContext, nil
	}

	var parts []string
	total := 0
	for _, r := range relevant {
		block := formatResult(r)
		cost := len(block)
		if len(parts) > 0 {
			cost += len(contextSeparator)
		}
		if total+cost > maxLength {
			break
		}
		parts = append(parts, block)
		total += cost
	}

	return strings.Join(parts, contextSeparator), nil
}

// SearchFiltered returns the ranked results whose document type equals
// typeFilter, preserving rank order. Unlike GetContext it applies no
// similarity threshold: filtered callers get every type-matching result and
// must combine with a score cutoff themselves if they want one.
func (e *Engine) SearchFiltered(query, typeFilter string) ([]domain.SearchResult, error) {
	results, err := e.Search(query)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Document.Metadata.Type == typeFilter {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// FindFirstByFilename returns the highest-ranked result whose filename
// metadata contains substring (case-insensitive), or ErrNotFound.
func (e *Engine) FindFirstByFilename(query, substring string) (domain.SearchResult, error) {
	results, err := e.Search(query)
	if err != nil {
		return domain.SearchResult{}, err
	}

	needle := strings.ToLower(substring)
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Document.Metadata.Filename), needle) {
			return r, nil
		}
	}
	return domain.SearchResult{}, ErrNotFound
}

// Len reports the number of indexed chunks, initializing on demand.
func (e *Engine) Len() (int, error) {
	if err := e.ensureInitialized(); err != nil {
		return 0, err
	}
	return e.index.Len(), nil
}

// formatResult prefixes a result with its provenance line. The budget in
// GetContext counts this formatted text.
func formatResult(r domain.SearchResult) string {
	name := r.Document.Metadata.Filename
	if name == "" {
		name = r.Document.Metadata.Source
	}
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("[Source: %s]\n%s\n", name, r.Document.Content)
}
