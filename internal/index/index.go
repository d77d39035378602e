package index

import "context"

// Entry is one stored vector with its payload. Metadata values must be
// strings, numbers or bools so every backend can persist them.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
	Document string
}

// Hit is one query match. Lower Distance means more similar.
type Hit struct {
	Entry
	Distance float64
}

// Filter restricts queries and deletes to entries whose metadata matches
// every listed key/value exactly. A nil or empty filter matches everything.
type Filter map[string]any

// Index is one logical vector collection. Implementations must treat Upsert
// as overwrite-by-id so re-ingestion with stable ids converges instead of
// duplicating.
type Index interface {
	Upsert(ctx context.Context, entries []Entry) error
	Query(ctx context.Context, vector []float32, filter Filter, topK int) ([]Hit, error)
	Fetch(ctx context.Context, ids []string) ([]Entry, error)
	Delete(ctx context.Context, filter Filter) error
	Count(ctx context.Context) (int, error)
	IDs(ctx context.Context) ([]string, error)
}
