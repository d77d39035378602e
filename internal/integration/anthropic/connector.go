package anthropic

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/integration/common"
	pkghttp "github.com/mshayganfar/starting-ragchatbot-codebase/pkg/http"
	"go.uber.org/zap"
)

const messagesEndpoint = "/v1/messages"

// messagesRequest is the Anthropic Messages API request body.
type messagesRequest struct {
	Model       string                  `json:"model"`
	MaxTokens   int                     `json:"max_tokens"`
	Temperature float64                 `json:"temperature"`
	System      string                  `json:"system,omitempty"`
	Messages    []entity.ChatMessage    `json:"messages"`
	Tools       []entity.ToolDefinition `json:"tools,omitempty"`
	ToolChoice  *toolChoice             `json:"tool_choice,omitempty"`
}

type toolChoice struct {
	Type string `json:"type"`
}

type messagesResponse struct {
	ID         string                `json:"id"`
	Model      string                `json:"model"`
	Role       string                `json:"role"`
	Content    []entity.ContentBlock `json:"content"`
	StopReason entity.StopReason     `json:"stop_reason"`
	Usage      entity.TokenUsage     `json:"usage"`
}

type Connector struct {
	config    config.AnthropicConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.AnthropicConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithStaticHeader("x-api-key", cfg.Token),
			pkghttp.WithStaticHeader("anthropic-version", cfg.APIVersion),
		),
		config: cfg,
		logger: logger,
	}
}

// Generate performs one Messages API call. Rate limits and server errors are
// retried per the connector's retry config; other failures return as is.
func (c *Connector) Generate(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctxzap.Info(ctx, "calling model",
		zap.String("model", c.config.Model),
		zap.Int("message_count", len(req.Messages)),
		zap.Int("tool_count", len(req.Tools)),
	)

	wireReq := &messagesRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		System:      req.System,
		Messages:    req.Messages,
		Tools:       req.Tools,
	}
	if len(req.Tools) > 0 {
		wireReq.ToolChoice = &toolChoice{Type: "auto"}
	}

	var wireResp messagesResponse
	opts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(common.RetryableHTTP),
	)
	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, messagesEndpoint, wireReq, &wireResp)
	}, opts...)
	if err != nil {
		ctxzap.Error(ctx, "model call failed", zap.Error(err))
		return nil, fmt.Errorf("anthropic messages call: %w", err)
	}

	resp := &entity.ChatResponse{
		Content:    wireResp.Content,
		StopReason: wireResp.StopReason,
		Model:      wireResp.Model,
		Usage:      wireResp.Usage,
	}

	ctxzap.Info(ctx, "model responded",
		zap.String("stop_reason", string(resp.StopReason)),
		zap.Int("tool_use_count", len(resp.ToolUses())),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)

	return resp, nil
}
