package courses

import (
	"context"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

type RAGUsecase interface {
	Analytics(ctx context.Context) (*entity.CourseAnalytics, error)
}
