package port

import "kbrag/internal/domain"

// Chunker splits documents into bounded-length chunk documents. Chunk order
// follows source order and every chunk inherits its parent's metadata.
type Chunker interface {
	Split(docs []domain.Document) []domain.Document
}
