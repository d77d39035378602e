package builder

import (
	"context"
	"fmt"
	"io"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/index"
	chromaindex "github.com/mshayganfar/starting-ragchatbot-codebase/internal/index/chroma"
	memoryindex "github.com/mshayganfar/starting-ragchatbot-codebase/internal/index/memory"
	pgvectorindex "github.com/mshayganfar/starting-ragchatbot-codebase/internal/index/pgvector"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/session"
	sessioninmemory "github.com/mshayganfar/starting-ragchatbot-codebase/internal/session/inmemory"
	sessionredis "github.com/mshayganfar/starting-ragchatbot-codebase/internal/session/redis"
	"go.uber.org/zap"
)

// setupIndexes creates the catalog and content collections on the configured
// vector backend. The returned pgvector store is nil unless that backend is
// active, the caller owns closing it.
func setupIndexes(ctx context.Context, cfg *config.Config, logger *zap.Logger) (index.Index, index.Index, *pgvectorindex.Store, error) {
	switch cfg.VectorCfg.Backend {
	case "chroma":
		catalog, err := chromaindex.New(ctx, cfg.VectorCfg.ChromaCfg, cfg.VectorCfg.CatalogCollection, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create catalog collection: %w", err)
		}
		content, err := chromaindex.New(ctx, cfg.VectorCfg.ChromaCfg, cfg.VectorCfg.ContentCollection, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create content collection: %w", err)
		}
		return catalog, content, nil, nil

	case "pgvector":
		logger.Info("Running database migrations")
		if err := pgvectorindex.RunMigrations(cfg.VectorCfg.PostgresCfg.DatabaseURL); err != nil {
			return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		store, err := pgvectorindex.NewStore(ctx, cfg.VectorCfg.PostgresCfg, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("setup pgvector store: %w", err)
		}
		return store.Collection(cfg.VectorCfg.CatalogCollection), store.Collection(cfg.VectorCfg.ContentCollection), store, nil

	default:
		return memoryindex.New(), memoryindex.New(), nil, nil
	}
}

// setupSessionStore creates the conversation memory backend. The returned
// closer is nil unless the backend holds an external connection.
func setupSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, io.Closer, error) {
	switch cfg.SessionCfg.Backend {
	case "redis":
		store, err := sessionredis.New(ctx, cfg.SessionCfg.RedisCfg, cfg.SessionCfg.MaxHistory, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("setup redis session store: %w", err)
		}
		return store, store, nil

	default:
		return sessioninmemory.New(cfg.SessionCfg.MaxHistory), nil, nil
	}
}
