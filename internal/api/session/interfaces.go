package session

import (
	"context"
)

type RAGUsecase interface {
	ClearSession(ctx context.Context, sessionID string) error
}
