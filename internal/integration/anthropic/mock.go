package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"go.uber.org/zap"
)

// MockConnector answers without calling the API. The first call with tools
// available requests a course-content search built from the user's words, so
// the full tool loop can be driven locally.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctxzap.Info(ctx, "[MOCK] generating model response",
		zap.Int("message_count", len(req.Messages)),
		zap.Int("tool_count", len(req.Tools)),
	)

	if len(req.Tools) > 0 && !hasToolResults(req.Messages) {
		input, err := json.Marshal(map[string]string{"query": lastUserText(req.Messages)})
		if err != nil {
			return nil, err
		}
		return &entity.ChatResponse{
			Content: []entity.ContentBlock{
				{
					Type:  "tool_use",
					ID:    "toolu_mock_1",
					Name:  "search_course_content",
					Input: input,
				},
			},
			StopReason: entity.StopToolUse,
			Model:      "mock",
		}, nil
	}

	answer := "This is a mock answer. Configure a real Anthropic key to get generated responses."
	if results := lastToolResult(req.Messages); results != "" {
		answer = "Based on the course material: " + firstLine(results)
	}

	return &entity.ChatResponse{
		Content:    []entity.ContentBlock{entity.TextBlock(answer)},
		StopReason: entity.StopEndTurn,
		Model:      "mock",
	}, nil
}

func hasToolResults(messages []entity.ChatMessage) bool {
	for _, msg := range messages {
		for _, block := range msg.Content {
			if block.Type == "tool_result" {
				return true
			}
		}
	}
	return false
}

func lastUserText(messages []entity.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != entity.RoleUser {
			continue
		}
		for _, block := range messages[i].Content {
			if block.Type == "text" && block.Text != "" {
				return block.Text
			}
		}
	}
	return "course overview"
}

func lastToolResult(messages []entity.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, block := range messages[i].Content {
			if block.Type == "tool_result" && !block.IsError {
				return block.Content
			}
		}
	}
	return ""
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
