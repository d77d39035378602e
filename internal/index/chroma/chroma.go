package chroma

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/index"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/integration/common"
	pkghttp "github.com/mshayganfar/starting-ragchatbot-codebase/pkg/http"
	"go.uber.org/zap"
)

const collectionsEndpoint = "/api/v1/collections"

type createCollectionRequest struct {
	Name        string `json:"name"`
	GetOrCreate bool   `json:"get_or_create"`
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type upsertRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Metadatas  []map[string]any `json:"metadatas"`
	Documents  []string         `json:"documents"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Where           map[string]any `json:"where,omitempty"`
	Include         []string       `json:"include"`
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

type getRequest struct {
	IDs     []string       `json:"ids,omitempty"`
	Where   map[string]any `json:"where,omitempty"`
	Include []string       `json:"include"`
}

type getResponse struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

type deleteRequest struct {
	IDs   []string       `json:"ids,omitempty"`
	Where map[string]any `json:"where,omitempty"`
}

// Index is one collection on a Chroma server, addressed over its REST API.
type Index struct {
	config     config.ChromaConnectorConfig
	connector  *pkghttp.Connector
	logger     *zap.Logger
	name       string
	collection string
}

// New resolves (or creates) the named collection and returns an index bound
// to it.
func New(ctx context.Context, cfg config.ChromaConnectorConfig, name string, logger *zap.Logger) (*Index, error) {
	idx := &Index{
		config:    cfg,
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		logger:    logger,
		name:      name,
	}

	req := &createCollectionRequest{Name: name, GetOrCreate: true}
	var resp collectionResponse
	if err := idx.do(ctx, http.MethodPost, collectionsEndpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", name, err)
	}
	idx.collection = resp.ID

	logger.Info("chroma collection ready",
		zap.String("name", name),
		zap.String("collection_id", resp.ID),
	)
	return idx, nil
}

func (s *Index) Upsert(ctx context.Context, entries []index.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	req := &upsertRequest{
		IDs:        make([]string, len(entries)),
		Embeddings: make([][]float32, len(entries)),
		Metadatas:  make([]map[string]any, len(entries)),
		Documents:  make([]string, len(entries)),
	}
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("upsert entry with empty id")
		}
		req.IDs[i] = e.ID
		req.Embeddings[i] = e.Vector
		req.Metadatas[i] = e.Metadata
		req.Documents[i] = e.Document
	}

	endpoint := fmt.Sprintf("%s/%s/upsert", collectionsEndpoint, s.collection)
	if err := s.do(ctx, http.MethodPost, endpoint, req, nil); err != nil {
		return fmt.Errorf("upsert %d entries into %q: %w", len(entries), s.name, err)
	}

	ctxzap.Debug(ctx, "chroma upsert done",
		zap.String("collection", s.name),
		zap.Int("entry_count", len(entries)),
	)
	return nil
}

func (s *Index) Query(ctx context.Context, vector []float32, filter index.Filter, topK int) ([]index.Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	req := &queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        topK,
		Where:           whereClause(filter),
		Include:         []string{"documents", "metadatas", "distances"},
	}

	endpoint := fmt.Sprintf("%s/%s/query", collectionsEndpoint, s.collection)
	var resp queryResponse
	if err := s.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("query %q: %w", s.name, err)
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	hits := make([]index.Hit, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		hit := index.Hit{Entry: index.Entry{ID: id}}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Document = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hit.Distance = resp.Distances[0][i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *Index) Fetch(ctx context.Context, ids []string) ([]index.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	req := &getRequest{
		IDs:     ids,
		Include: []string{"documents", "metadatas"},
	}

	endpoint := fmt.Sprintf("%s/%s/get", collectionsEndpoint, s.collection)
	var resp getResponse
	if err := s.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("get from %q: %w", s.name, err)
	}

	entries := make([]index.Entry, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		e := index.Entry{ID: id}
		if i < len(resp.Documents) {
			e.Document = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			e.Metadata = resp.Metadatas[i]
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Index) Delete(ctx context.Context, filter index.Filter) error {
	req := &deleteRequest{Where: whereClause(filter)}

	// Chroma rejects a delete with no selector, so delete-all goes by ids.
	if len(filter) == 0 {
		ids, err := s.IDs(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		req = &deleteRequest{IDs: ids}
	}

	endpoint := fmt.Sprintf("%s/%s/delete", collectionsEndpoint, s.collection)
	if err := s.do(ctx, http.MethodPost, endpoint, req, nil); err != nil {
		return fmt.Errorf("delete from %q: %w", s.name, err)
	}
	return nil
}

func (s *Index) Count(ctx context.Context) (int, error) {
	endpoint := fmt.Sprintf("%s/%s/count", collectionsEndpoint, s.collection)
	var count int
	if err := s.do(ctx, http.MethodGet, endpoint, nil, &count); err != nil {
		return 0, fmt.Errorf("count %q: %w", s.name, err)
	}
	return count, nil
}

func (s *Index) IDs(ctx context.Context) ([]string, error) {
	req := &getRequest{Include: []string{}}

	endpoint := fmt.Sprintf("%s/%s/get", collectionsEndpoint, s.collection)
	var resp getResponse
	if err := s.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("list ids of %q: %w", s.name, err)
	}

	ids := resp.IDs
	sort.Strings(ids)
	return ids, nil
}

func (s *Index) do(ctx context.Context, method, endpoint string, reqBody, respBody any) error {
	opts := append(s.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(common.RetryableHTTP),
	)
	return retry.Do(func() error {
		return s.connector.DoRequest(ctx, method, endpoint, reqBody, respBody)
	}, opts...)
}

// whereClause builds Chroma's filter document: a single {"field": {"$eq": v}}
// clause, or an $and of them when more than one key is present. Keys are
// sorted so the emitted document is deterministic.
func whereClause(filter index.Filter) map[string]any {
	if len(filter) == 0 {
		return nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) == 1 {
		return map[string]any{keys[0]: map[string]any{"$eq": filter[keys[0]]}}
	}

	clauses := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, map[string]any{k: map[string]any{"$eq": filter[k]}})
	}
	return map[string]any{"$and": clauses}
}
