package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// CatalogFilename is the well-known structured catalog file. Its product
// entries and customization info get exploded into individual documents;
// every other JSON file is passed through as one generic document.
const CatalogFilename = "products.json"

// DefaultIncludes matches the supported knowledge-base source files.
var DefaultIncludes = []string{"*.md", "*.txt", "*.json", "*.pdf"}

// FileLoader reads a knowledge-base directory and normalizes every supported
// source file into Documents with provenance metadata.
type FileLoader struct {
	includes []string
	excludes []string
}

// New creates a loader with doublestar include/exclude patterns matched
// against paths relative to the knowledge-base directory.
func New(includes, excludes []string) *FileLoader {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	return &FileLoader{
		includes: includes,
		excludes: excludes,
	}
}

// Load produces Documents for every supported file in dir. Malformed or
// unreadable files are reported in the returned error list and skipped;
// loading never aborts for one bad file. Document order is deterministic
// (directory order, products before customization info within the catalog).
func (l *FileLoader) Load(dir string) ([]domain.Document, []port.LoadError) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []port.LoadError{{Path: dir, Err: err}}
	}

	var docs []domain.Document
	var failures []port.LoadError

	fail := func(path string, err error) {
		failures = append(failures, port.LoadError{Path: path, Err: err})
		log.Warn().Err(err).Str("file", path).Msg("skipping unreadable source")
	}

	for _, entry := range entries {
		if entry.IsDir() || !l.matches(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var (
			loaded  []domain.Document
			loadErr error
		)
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".md", ".txt":
			loaded, loadErr = l.loadMarkdown(path)
		case ".json":
			loaded, loadErr = l.loadJSON(path)
		case ".pdf":
			loaded, loadErr = l.loadPDF(path)
		default:
			continue
		}
		if loadErr != nil {
			fail(path, loadErr)
			continue
		}

		docs = append(docs, loaded...)
		log.Info().Str("file", entry.Name()).Int("documents", len(loaded)).Msg("loaded source")
	}

	return docs, failures
}

func (l *FileLoader) matches(name string) bool {
	for _, pattern := range l.excludes {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return false
		}
	}
	for _, pattern := range l.includes {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// loadMarkdown reads a free-text file and strips markup down to plain text.
func (l *FileLoader) loadMarkdown(path string) ([]domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, err := markdownToText(raw)
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content")
	}

	return []domain.Document{{
		Content: text,
		Metadata: domain.Metadata{
			Source:   path,
			Type:     domain.TypeMarkdown,
			Filename: filepath.Base(path),
		},
	}}, nil
}
