package index

import (
	"math"
	"testing"

	"kbrag/internal/adapter/embedding"
	"kbrag/internal/domain"
)

func chunk(content string) domain.Document {
	return domain.Document{
		Content:  content,
		Metadata: domain.Metadata{Source: "/kb/test.md", Type: domain.TypeMarkdown},
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := NewFlat(embedding.NewMockEmbedder(64))

	results, err := ix.Search("anything", 5)
	if err != nil {
		t.Fatalf("empty index search must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestBuildEmptyChunkList(t *testing.T) {
	ix := NewFlat(embedding.NewMockEmbedder(64))
	if err := ix.Build(nil); err != nil {
		t.Fatalf("building an empty index must not error: %v", err)
	}
	if ix.Len() != 0 {
		t.Errorf("expected empty index, got %d entries", ix.Len())
	}
}

func TestVectorsAreNormalized(t *testing.T) {
	ix := NewFlat(embedding.NewMockEmbedder(64))
	err := ix.Build([]domain.Document{
		chunk("red hoodie with front print"),
		chunk("thirty day return policy"),
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range ix.Vectors() {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
			t.Errorf("vector %d has norm %f, want 1", i, math.Sqrt(sum))
		}
	}
}

func TestScoresNonIncreasing(t *testing.T) {
	ix := NewFlat(embedding.NewMockEmbedder(128))
	err := ix.Build([]domain.Document{
		chunk("red hoodie sizes small medium large"),
		chunk("return policy thirty days"),
		chunk("blue hoodie with zipper"),
		chunk("shipping takes five days"),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("hoodie", 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, r.Rank)
		}
	}
}

func TestTiesBreakByPosition(t *testing.T) {
	ix := NewFlat(embedding.NewMockEmbedder(64))
	// Identical content embeds identically, forcing a score tie.
	first := chunk("identical text")
	first.Metadata.Filename = "first.md"
	second := chunk("identical text")
	second.Metadata.Filename = "second.md"

	if err := ix.Build([]domain.Document{first, second}); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("identical text", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Score != results[1].Score {
		t.Fatalf("expected a tie, got %f vs %f", results[0].Score, results[1].Score)
	}
	if results[0].Document.Metadata.Filename != "first.md" {
		t.Errorf("earlier-indexed chunk must win ties, got %q first", results[0].Document.Metadata.Filename)
	}
}

func TestKCappedToIndexSize(t *testing.T) {
	ix := NewFlat(embedding.NewMockEmbedder(64))
	if err := ix.Build([]domain.Document{chunk("only one")}); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("one", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestRepeatedQueriesDeterministic(t *testing.T) {
	ix := NewFlat(embedding.NewMockEmbedder(128))
	err := ix.Build([]domain.Document{
		chunk("red hoodie sizes small medium large"),
		chunk("return policy thirty days"),
		chunk("blue hoodie with zipper"),
	})
	if err != nil {
		t.Fatal(err)
	}

	first, err := ix.Search("hoodie sizes", 3)
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 3; run++ {
		again, err := ix.Search("hoodie sizes", 3)
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("result count changed between runs")
		}
		for i := range again {
			if again[i].Score != first[i].Score || again[i].Document.Content != first[i].Document.Content {
				t.Errorf("run %d result %d differs", run, i)
			}
		}
	}
}
