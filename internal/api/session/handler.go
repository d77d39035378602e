package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/logger"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/response"
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

// ClearSession handles DELETE /api/sessions/{session_id}
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "ClearSession"),
	)

	ctxzap.Info(ctx, "clearing session")

	if err := h.usecase.ClearSession(ctx, sessionID); err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to clear session", err)
		return
	}

	ctxzap.Info(ctx, "session cleared successfully")
	response.NoContent(w)
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
