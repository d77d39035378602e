package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"go.uber.org/zap"
)

// Store owns the Postgres connection pool shared by every collection-scoped
// Index. Collections live side by side in one entries table keyed by
// (collection, id).
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
	logger     *zap.Logger
}

func NewStore(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	// Configure pool settings from config
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
	)

	return &Store{pool: pool, dimensions: cfg.EmbeddingDimensions, logger: logger}, nil
}

// Collection returns an Index view over one named collection.
func (s *Store) Collection(name string) *Index {
	return &Index{pool: s.pool, collection: name, dimensions: s.dimensions, logger: s.logger}
}

func (s *Store) Close() {
	s.pool.Close()
}
