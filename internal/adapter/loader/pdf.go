package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"kbrag/internal/domain"
)

// loadPDF extracts plain text from a PDF, one document per file.
func (l *FileLoader) loadPDF(path string) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	content := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if content == "" {
		return nil, fmt.Errorf("no text content")
	}

	return []domain.Document{{
		Content: content,
		Metadata: domain.Metadata{
			Source:   path,
			Type:     domain.TypeMarkdown,
			Filename: filepath.Base(path),
		},
	}}, nil
}
