package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/index"
)

// Index is an in-memory vector collection using brute-force cosine distance.
// It backs local development and tests; production deployments use the
// chroma or pgvector backends.
type Index struct {
	mu      sync.RWMutex
	entries map[string]index.Entry
}

func New() *Index {
	return &Index{
		entries: make(map[string]index.Entry),
	}
}

func (s *Index) Upsert(_ context.Context, entries []index.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("upsert entry with empty id")
		}
		s.entries[e.ID] = e
	}
	return nil
}

func (s *Index) Query(_ context.Context, vector []float32, filter index.Filter, topK int) ([]index.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	hits := make([]index.Hit, 0, len(s.entries))
	for _, e := range s.entries {
		if !matches(e.Metadata, filter) {
			continue
		}
		hits = append(hits, index.Hit{
			Entry:    e,
			Distance: cosineDistance(vector, e.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *Index) Fetch(_ context.Context, ids []string) ([]index.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []index.Entry
	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Index) Delete(_ context.Context, filter index.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if matches(e.Metadata, filter) {
			delete(s.entries, id)
		}
	}
	return nil
}

func (s *Index) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *Index) IDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func matches(metadata map[string]any, filter index.Filter) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || !equalValue(got, want) {
			return false
		}
	}
	return true
}

// equalValue compares metadata values tolerating the int/float64 drift that
// JSON round-trips introduce.
func equalValue(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// cosineDistance is 1 - cosine similarity. Mismatched or zero-length vectors
// land at the far end of the ordering instead of failing the query.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
