package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionKeyPrefix = "chat:session:"

// Store keeps session history as a Redis list per session, trimmed to the
// configured window on every append. Keys expire after the configured TTL of
// inactivity.
type Store struct {
	client     *goredis.Client
	maxHistory int
	ttl        time.Duration
	logger     *zap.Logger
}

func New(ctx context.Context, cfg config.RedisConfig, maxHistory int, logger *zap.Logger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("connected to redis session store",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB))

	return &Store{
		client:     client,
		maxHistory: maxHistory,
		ttl:        cfg.TTL,
		logger:     logger,
	}, nil
}

// Create only mints the id. The session key appears on first Append, which
// keeps unknown and empty sessions indistinguishable the way History
// requires.
func (s *Store) Create(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) History(ctx context.Context, id string) ([]entity.Exchange, error) {
	values, err := s.client.LRange(ctx, sessionKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read session history: %w", err)
	}

	history := make([]entity.Exchange, 0, len(values))
	for _, value := range values {
		var exchange entity.Exchange
		if err := json.Unmarshal([]byte(value), &exchange); err != nil {
			return nil, fmt.Errorf("decode session exchange: %w", err)
		}
		history = append(history, exchange)
	}
	return history, nil
}

func (s *Store) Append(ctx context.Context, id, query, answer string) error {
	if s.maxHistory <= 0 {
		return nil
	}

	data, err := json.Marshal(entity.Exchange{Query: query, Answer: answer})
	if err != nil {
		return fmt.Errorf("encode session exchange: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, sessionKey(id), data)
	pipe.LTrim(ctx, sessionKey(id), int64(-s.maxHistory), -1)
	pipe.Expire(ctx, sessionKey(id), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append session exchange: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
