package chunker

import (
	"strings"
	"unicode/utf8"

	"kbrag/internal/domain"
)

// DefaultSeparators is the split priority order: paragraph break, line break,
// sentence end, word boundary, character boundary.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// RecursiveSplitter splits text by trying separators in priority order,
// preferring the highest-priority separator that yields pieces within the
// size bound. Separators stay attached to the preceding piece, so
// concatenating the produced chunks (minus overlap) reproduces the input
// exactly.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewRecursiveSplitter creates a splitter with the given maximum chunk size
// and overlap, both in runes. Overlap must be smaller than the chunk size;
// out-of-range values are clamped.
func NewRecursiveSplitter(chunkSize, overlap int) *RecursiveSplitter {
	if chunkSize < 1 {
		chunkSize = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &RecursiveSplitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: DefaultSeparators,
	}
}

// Split produces chunk documents for each input document, in source order.
// A document no longer than the chunk size yields exactly one chunk equal to
// itself. Each chunk carries a copy of the parent's metadata.
func (s *RecursiveSplitter) Split(docs []domain.Document) []domain.Document {
	var out []domain.Document
	for _, doc := range docs {
		for _, piece := range s.splitText(doc.Content) {
			out = append(out, domain.Document{
				Content:  piece,
				Metadata: doc.Metadata.Clone(),
			})
		}
	}
	return out
}

func (s *RecursiveSplitter) splitText(text string) []string {
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	// Pick the highest-priority separator that occurs in the text. The
	// empty separator always applies and splits into single runes.
	sep := separators[len(separators)-1]
	var rest []string
	for i, cand := range separators {
		if cand == "" {
			sep = cand
			rest = nil
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	pieces := splitAfter(text, sep)

	var final []string
	var fitting []string
	for _, p := range pieces {
		if utf8.RuneCountInString(p) <= s.chunkSize {
			fitting = append(fitting, p)
			continue
		}
		if len(fitting) > 0 {
			final = append(final, s.merge(fitting)...)
			fitting = nil
		}
		if len(rest) == 0 {
			final = append(final, p)
		} else {
			final = append(final, s.split(p, rest)...)
		}
	}
	if len(fitting) > 0 {
		final = append(final, s.merge(fitting)...)
	}
	return final
}

// merge greedily packs fitting pieces into chunks within the size bound,
// carrying a tail of up to overlap runes into the next chunk.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	var chunks []string
	var cur []string
	total := 0

	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if total+n > s.chunkSize && len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, ""))
			for len(cur) > 0 && (total > s.overlap || total+n > s.chunkSize) {
				total -= utf8.RuneCountInString(cur[0])
				cur = cur[1:]
			}
		}
		cur = append(cur, p)
		total += n
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, ""))
	}
	return chunks
}

// splitAfter splits keeping the separator attached to the preceding piece.
// An empty separator splits into single runes.
func splitAfter(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.SplitAfter(text, sep)
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
