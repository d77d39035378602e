package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

type LLMConnector interface {
	Generate(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
}

type ToolExecutor interface {
	Definitions() []entity.ToolDefinition
	Execute(ctx context.Context, name string, args json.RawMessage) (string, []entity.Source, error)
}
