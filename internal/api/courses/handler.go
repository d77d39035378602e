package courses

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/logger"
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

// GetCourseStats handles GET /api/courses
func (h *Handler) GetCourseStats(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetCourseStats")

	ctxzap.Debug(ctx, "fetching course analytics")

	analytics, err := h.usecase.Analytics(ctx)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to load course analytics", err)
		return
	}

	ctxzap.Info(ctx, "course analytics fetched successfully",
		zap.Int("total_courses", analytics.TotalCourses),
	)

	h.respondJSON(w, http.StatusOK, toCourseStats(analytics))
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
