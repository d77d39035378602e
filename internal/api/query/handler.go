package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/logger"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/metrics"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/validator"
	"go.uber.org/zap"
)

type Handler struct {
	usecase RAGUsecase
}

func NewHandler(usecase RAGUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// Query handles POST /api/query
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Query")

	var req entity.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := validator.ValidateQuery(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "answering query",
		zap.Int("query_length", len(req.Query)),
		zap.String("session_id", req.SessionID),
	)

	metrics.QueriesTotal.Inc()
	start := time.Now()

	result, err := h.usecase.Query(ctx, req.Query, req.SessionID)
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueryFailures.Inc()
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "query answered successfully",
		zap.String("session_id", result.SessionID),
		zap.Int("source_count", len(result.Sources)),
	)

	h.respondJSON(w, http.StatusOK, toQueryResponse(result))
}

// Helper methods
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else if errors.Is(err, entity.ErrGenerationFailed) {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to generate answer", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
