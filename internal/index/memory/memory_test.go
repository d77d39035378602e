package memory

import (
	"context"
	"testing"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/index"
)

func entry(id string, vector []float32, metadata map[string]any) index.Entry {
	return index.Entry{ID: id, Vector: vector, Metadata: metadata, Document: "doc-" + id}
}

func TestUpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	idx := New()

	if err := idx.Upsert(ctx, []index.Entry{entry("a", []float32{1, 0}, nil)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := idx.Upsert(ctx, []index.Entry{entry("a", []float32{0, 1}, nil)}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := idx.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected overwrite to keep a single entry, got %d", count)
	}

	entries, err := idx.Fetch(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if entries[0].Vector[1] != 1 {
		t.Errorf("fetch returned stale vector: %v", entries[0].Vector)
	}
}

func TestUpsertRejectsEmptyID(t *testing.T) {
	idx := New()
	if err := idx.Upsert(context.Background(), []index.Entry{entry("", []float32{1}, nil)}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestQueryOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := New()

	err := idx.Upsert(ctx, []index.Entry{
		entry("exact", []float32{1, 0, 0}, nil),
		entry("close", []float32{0.9, 0.1, 0}, nil),
		entry("far", []float32{0, 0, 1}, nil),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := idx.Query(ctx, []float32{1, 0, 0}, nil, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected topK to cap results at 2, got %d", len(hits))
	}
	if hits[0].ID != "exact" || hits[1].ID != "close" {
		t.Errorf("wrong ordering: %q then %q", hits[0].ID, hits[1].ID)
	}
	if hits[0].Distance > hits[1].Distance {
		t.Errorf("distances not ascending: %f then %f", hits[0].Distance, hits[1].Distance)
	}
}

func TestQueryFilters(t *testing.T) {
	ctx := context.Background()
	idx := New()

	err := idx.Upsert(ctx, []index.Entry{
		entry("a1", []float32{1, 0}, map[string]any{"course_title": "A", "lesson_number": 1}),
		entry("a2", []float32{1, 0}, map[string]any{"course_title": "A", "lesson_number": 2}),
		entry("b1", []float32{1, 0}, map[string]any{"course_title": "B", "lesson_number": 1}),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := idx.Query(ctx, []float32{1, 0}, index.Filter{"course_title": "A"}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("course filter: expected 2 hits, got %d", len(hits))
	}

	hits, err = idx.Query(ctx, []float32{1, 0}, index.Filter{"course_title": "A", "lesson_number": 2}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a2" {
		t.Fatalf("combined filter: expected only a2, got %v", hits)
	}

	// numeric filter values survive a JSON round-trip as float64
	hits, err = idx.Query(ctx, []float32{1, 0}, index.Filter{"lesson_number": float64(1)}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("float filter: expected 2 hits, got %d", len(hits))
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	hits, err := New().Query(context.Background(), []float32{1, 0}, nil, 5)
	if err != nil {
		t.Fatalf("query on empty index must not error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestDeleteByFilter(t *testing.T) {
	ctx := context.Background()
	idx := New()

	err := idx.Upsert(ctx, []index.Entry{
		entry("a1", []float32{1}, map[string]any{"course_title": "A"}),
		entry("a2", []float32{1}, map[string]any{"course_title": "A"}),
		entry("b1", []float32{1}, map[string]any{"course_title": "B"}),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := idx.Delete(ctx, index.Filter{"course_title": "A"}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ids, err := idx.IDs(ctx)
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != "b1" {
		t.Fatalf("expected only b1 to survive, got %v", ids)
	}
}
