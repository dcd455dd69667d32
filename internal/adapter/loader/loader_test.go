package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kbrag/internal/domain"
)

const catalogJSON = `{
  "products": [
    {
      "id": "P1",
      "name": "Classic Hoodie",
      "category": "hoodies",
      "base_price": 39.99,
      "description": "A warm cotton hoodie",
      "sizes": ["S", "M", "L"],
      "colors": ["red", "black"],
      "materials": ["cotton"],
      "features": ["kangaroo pocket"],
      "customization_options": ["front print"],
      "stock_status": "in_stock",
      "lead_time": "5 days"
    },
    {
      "id": "P2",
      "name": "Basic Tee",
      "category": "tshirts",
      "base_price": 14.5,
      "description": "Plain t-shirt",
      "sizes": ["M"],
      "colors": ["white"],
      "materials": ["cotton"],
      "stock_status": "in_stock",
      "lead_time": "3 days"
    }
  ],
  "customization_info": {
    "design_formats": ["PNG", "SVG"],
    "minimum_resolution": "300dpi",
    "maximum_colors": 8,
    "rush_order": {"available": true, "additional_cost": 15, "lead_time": "2 days"}
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMarkdownStripsMarkup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "faq.md", "# Returns\n\nYou have **30 days** to return an item.\n")

	l := New(nil, nil)
	docs, failures := l.Load(dir)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	d := docs[0]
	if d.Metadata.Type != domain.TypeMarkdown {
		t.Errorf("expected type markdown, got %q", d.Metadata.Type)
	}
	if d.Metadata.Filename != "faq.md" {
		t.Errorf("expected filename metadata, got %q", d.Metadata.Filename)
	}
	if strings.Contains(d.Content, "#") || strings.Contains(d.Content, "**") || strings.Contains(d.Content, "<") {
		t.Errorf("markup not stripped: %q", d.Content)
	}
	if !strings.Contains(d.Content, "30 days") {
		t.Errorf("text content lost: %q", d.Content)
	}
}

func TestLoadCatalogExplodesProducts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.json", catalogJSON)

	l := New(nil, nil)
	docs, failures := l.Load(dir)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 2 products + 1 customization doc, got %d", len(docs))
	}

	p1 := docs[0]
	if p1.Metadata.Type != domain.TypeProduct || p1.Metadata.ProductID != "P1" {
		t.Errorf("unexpected product metadata: %+v", p1.Metadata)
	}
	if p1.Metadata.Category != "hoodies" || p1.Metadata.Price != 39.99 {
		t.Errorf("product fields not carried into metadata: %+v", p1.Metadata)
	}
	for _, want := range []string{"Classic Hoodie", "P1", "$39.99", "S, M, L", "in_stock"} {
		if !strings.Contains(p1.Content, want) {
			t.Errorf("product content missing %q:\n%s", want, p1.Content)
		}
	}

	info := docs[2]
	if info.Metadata.Type != domain.TypeCustomizationInfo {
		t.Errorf("expected customization_info doc, got %q", info.Metadata.Type)
	}
	for _, want := range []string{"PNG, SVG", "300dpi", "Rush Order Available: true", "$15"} {
		if !strings.Contains(info.Content, want) {
			t.Errorf("customization content missing %q:\n%s", want, info.Content)
		}
	}
}

func TestLoadGenericJSONVerbatim(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shipping.json", `{"zones": ["EU", "US"], "free_above": 50}`)

	l := New(nil, nil)
	docs, failures := l.Load(dir)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Metadata.Type != domain.TypeJSON {
		t.Errorf("expected type json, got %q", docs[0].Metadata.Type)
	}
	if !strings.Contains(docs[0].Content, `"free_above"`) {
		t.Errorf("generic json content lost: %q", docs[0].Content)
	}
}

func TestMalformedFileSkippedNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", "{not json")
	writeFile(t, dir, "ok.md", "Fine content.")

	l := New(nil, nil)
	docs, failures := l.Load(dir)
	if len(docs) != 1 {
		t.Fatalf("expected the good file to load, got %d docs", len(docs))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if !strings.Contains(failures[0].Path, "broken.json") {
		t.Errorf("failure does not name the bad file: %v", failures[0])
	}
}

func TestMissingDirectoryReported(t *testing.T) {
	l := New(nil, nil)
	docs, failures := l.Load(filepath.Join(t.TempDir(), "nope"))
	if len(docs) != 0 || len(failures) != 1 {
		t.Fatalf("expected no docs and one failure, got %d docs, %d failures", len(docs), len(failures))
	}
}

func TestExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.md", "Keep me.")
	writeFile(t, dir, "draft.md", "Skip me.")

	l := New(nil, []string{"draft.*"})
	docs, _ := l.Load(dir)
	if len(docs) != 1 || docs[0].Metadata.Filename != "keep.md" {
		t.Fatalf("exclude pattern not applied: %+v", docs)
	}
}
