package domain

// Document is a unit of retrievable content. Chunks produced by the splitter
// are Documents too, carrying a copy of their parent's metadata.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata carries provenance for a Document. Type discriminates which of the
// optional fields are meaningful; anything outside the known set goes into
// Extra.
type Metadata struct {
	Source    string            `json:"source"`
	Type      string            `json:"type"`
	Filename  string            `json:"filename,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
	Category  string            `json:"category,omitempty"`
	Price     float64           `json:"price,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Document types emitted by the loader. The set is open: callers may tag
// documents with their own values.
const (
	TypeMarkdown          = "markdown"
	TypeJSON              = "json"
	TypeProduct           = "product"
	TypeCustomizationInfo = "customization_info"
)

// Clone returns a copy of the metadata that shares no mutable state with the
// original.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// SearchResult pairs a chunk with its similarity score for one query.
// Rank starts at 1. Results are created per query and never persisted.
type SearchResult struct {
	Document Document
	Score    float64
	Rank     int
}
