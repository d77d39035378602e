package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/index"
	pgvec "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// Index is one collection stored in the shared entries table. Similarity
// uses cosine distance (the <=> operator); rows are matched to filters with
// jsonb containment, which the GIN index on metadata serves.
type Index struct {
	pool       *pgxpool.Pool
	collection string
	dimensions int
	logger     *zap.Logger
}

func (s *Index) Upsert(ctx context.Context, entries []index.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	const q = `
		INSERT INTO entries (collection, id, embedding, metadata, document, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (collection, id) DO UPDATE SET
			embedding  = EXCLUDED.embedding,
			metadata   = EXCLUDED.metadata,
			document   = EXCLUDED.document,
			updated_at = now();`

	batch := &pgx.Batch{}
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("upsert entry with empty id")
		}
		// the embedding column is declared with a fixed dimension
		if s.dimensions > 0 && len(e.Vector) != s.dimensions {
			return fmt.Errorf("entry %q has %d dimensions, column expects %d", e.ID, len(e.Vector), s.dimensions)
		}
		metadata, err := marshalMetadata(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata of %q: %w", e.ID, err)
		}
		batch.Queue(q, s.collection, e.ID, pgvec.NewVector(e.Vector), metadata, e.Document)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert into %q: %w", s.collection, err)
		}
	}
	return nil
}

func (s *Index) Query(ctx context.Context, vector []float32, filter index.Filter, topK int) ([]index.Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	args := []any{pgvec.NewVector(vector), s.collection}
	where := "collection = $2"
	if len(filter) > 0 {
		metadata, err := marshalMetadata(filter)
		if err != nil {
			return nil, fmt.Errorf("marshal filter: %w", err)
		}
		args = append(args, metadata)
		where += " AND metadata @> $3::jsonb"
	}

	q := fmt.Sprintf(`
		SELECT id, metadata, document, embedding <=> $1 AS distance
		FROM entries
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT %d`, where, topK)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", s.collection, err)
	}
	defer rows.Close()

	var hits []index.Hit
	for rows.Next() {
		var hit index.Hit
		if err := rows.Scan(&hit.ID, &hit.Metadata, &hit.Document, &hit.Distance); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (s *Index) Fetch(ctx context.Context, ids []string) ([]index.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const q = `
		SELECT id, metadata, document
		FROM entries
		WHERE collection = $1 AND id = ANY($2)`

	rows, err := s.pool.Query(ctx, q, s.collection, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch from %q: %w", s.collection, err)
	}
	defer rows.Close()

	var entries []index.Entry
	for rows.Next() {
		var e index.Entry
		if err := rows.Scan(&e.ID, &e.Metadata, &e.Document); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Index) Delete(ctx context.Context, filter index.Filter) error {
	args := []any{s.collection}
	q := "DELETE FROM entries WHERE collection = $1"
	if len(filter) > 0 {
		metadata, err := marshalMetadata(filter)
		if err != nil {
			return fmt.Errorf("marshal filter: %w", err)
		}
		args = append(args, metadata)
		q += " AND metadata @> $2::jsonb"
	}

	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete from %q: %w", s.collection, err)
	}

	s.logger.Debug("pgvector delete done",
		zap.String("collection", s.collection),
		zap.Int64("rows", tag.RowsAffected()),
	)
	return nil
}

func (s *Index) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM entries WHERE collection = $1", s.collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", s.collection, err)
	}
	return count, nil
}

func (s *Index) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id FROM entries WHERE collection = $1 ORDER BY id", s.collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list ids of %q: %w", s.collection, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}
