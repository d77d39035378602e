package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

type stubUsecase struct {
	queryFn func(ctx context.Context, query, sessionID string) (*entity.QueryResult, error)
	called  bool
}

func (s *stubUsecase) Query(ctx context.Context, query, sessionID string) (*entity.QueryResult, error) {
	s.called = true
	if s.queryFn != nil {
		return s.queryFn(ctx, query, sessionID)
	}
	return &entity.QueryResult{Answer: "an answer", SessionID: sessionID}, nil
}

func newTestRouter(uc RAGUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc))
	return r
}

func postQuery(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQueryReturnsAnswerWithSources(t *testing.T) {
	uc := &stubUsecase{
		queryFn: func(ctx context.Context, query, sessionID string) (*entity.QueryResult, error) {
			if query != "What is MCP?" {
				t.Errorf("unexpected query passed to usecase: %q", query)
			}
			return &entity.QueryResult{
				Answer: "MCP is a protocol.",
				Sources: []entity.Source{
					{Text: "MCP Basics - Lesson 1", Link: "https://example.com/lesson1"},
					{Text: "MCP Basics"},
				},
				SessionID: sessionID,
			}, nil
		},
	}
	router := newTestRouter(uc)

	rec := postQuery(t, router, `{"query":"What is MCP?","session_id":"sess-1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp entity.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "MCP is a protocol." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.SessionID != "sess-1" {
		t.Errorf("expected session id sess-1 got %q", resp.SessionID)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("expected 2 sources got %d", len(resp.Sources))
	}
	if resp.Sources[0].Link != "https://example.com/lesson1" {
		t.Errorf("expected first source link got %q", resp.Sources[0].Link)
	}
	if resp.Sources[1].Link != "" {
		t.Errorf("expected second source without link got %q", resp.Sources[1].Link)
	}
}

func TestQueryMintsSessionWhenMissing(t *testing.T) {
	uc := &stubUsecase{
		queryFn: func(ctx context.Context, query, sessionID string) (*entity.QueryResult, error) {
			if sessionID != "" {
				t.Errorf("expected empty session id got %q", sessionID)
			}
			return &entity.QueryResult{Answer: "ok", SessionID: "fresh-session"}, nil
		},
	}
	router := newTestRouter(uc)

	rec := postQuery(t, router, `{"query":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp entity.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "fresh-session" {
		t.Errorf("expected minted session id got %q", resp.SessionID)
	}
}

func TestQuerySourcesSerializeAsEmptyArray(t *testing.T) {
	uc := &stubUsecase{
		queryFn: func(ctx context.Context, query, sessionID string) (*entity.QueryResult, error) {
			return &entity.QueryResult{Answer: "general knowledge", SessionID: "s"}, nil
		},
	}
	router := newTestRouter(uc)

	rec := postQuery(t, router, `{"query":"what is go"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"sources":[]`) {
		t.Errorf("expected sources to serialize as empty array, body: %s", rec.Body.String())
	}
}

func TestQueryInvalidBody(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	rec := postQuery(t, router, `{"query": `)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}

	var resp entity.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != http.StatusText(http.StatusBadRequest) {
		t.Errorf("unexpected error field: %q", resp.Error)
	}
}

func TestQueryRejectsBlankQuery(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc)

	rec := postQuery(t, router, `{"query":"   "}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if uc.called {
		t.Error("blank query should be rejected before reaching the usecase")
	}
}

func TestQueryUsecaseErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "empty query becomes bad request",
			err:        fmt.Errorf("answer query: %w", entity.ErrInvalidParameter),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "generation failure becomes internal error",
			err:        fmt.Errorf("generate answer: %w", entity.ErrGenerationFailed),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown failure becomes internal error",
			err:        errors.New("index unreachable"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUsecase{
				queryFn: func(ctx context.Context, query, sessionID string) (*entity.QueryResult, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(uc)

			rec := postQuery(t, router, `{"query":"anything"}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d got %d", tt.wantStatus, rec.Code)
			}

			var resp entity.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Error != http.StatusText(tt.wantStatus) {
				t.Errorf("unexpected error field: %q", resp.Error)
			}
			if resp.Message == "" {
				t.Error("expected a message describing the failure")
			}
		})
	}
}

