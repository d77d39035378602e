package query

import (
	"context"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

type RAGUsecase interface {
	Query(ctx context.Context, query, sessionID string) (*entity.QueryResult, error)
}
