package port

import "kbrag/internal/domain"

// SearchIndex is a similarity-searchable collection of chunk documents.
type SearchIndex interface {
	// Build encodes the chunks and replaces the index contents. An empty
	// chunk list produces an empty, queryable index.
	Build(chunks []domain.Document) error

	// Search returns the top-k chunks for the query by descending
	// similarity, ties broken by ascending index position. Searching an
	// empty index returns no results and no error.
	Search(query string, k int) ([]domain.SearchResult, error)

	// Len returns the number of indexed chunks.
	Len() int
}
