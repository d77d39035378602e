package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/integration/common"
	pkghttp "github.com/mshayganfar/starting-ragchatbot-codebase/pkg/http"
	"go.uber.org/zap"
)

const embeddingsEndpoint = "/v1/embeddings"

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Connector embeds text through an OpenAI-compatible embeddings endpoint.
type Connector struct {
	config    config.EmbeddingConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithAuthToken(cfg.Token),
		),
		config: cfg,
		logger: logger,
	}
}

// Embed returns one vector per input text, in input order.
func (c *Connector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctxzap.Debug(ctx, "embedding texts",
		zap.String("model", c.config.Model),
		zap.Int("text_count", len(texts)),
	)

	req := &embeddingsRequest{
		Model: c.config.Model,
		Input: texts,
	}

	var resp embeddingsResponse
	opts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(common.RetryableHTTP),
	)
	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, embeddingsEndpoint, req, &resp)
	}, opts...)
	if err != nil {
		ctxzap.Error(ctx, "embedding call failed", zap.Error(err))
		return nil, fmt.Errorf("embeddings call: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings call: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func (c *Connector) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
