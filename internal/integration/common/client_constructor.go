package common

import (
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	pkgHTTP "github.com/mshayganfar/starting-ragchatbot-codebase/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a JSON connector with the shared transport tuning.
// Authentication differs per service (Bearer for OpenAI-style APIs, x-api-key
// for Anthropic, none for Chroma), so callers append their own auth option.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.Option) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.Option{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}
	opts = append(opts, extra...)

	return pkgHTTP.NewConnector(connCfg, opts...)
}
