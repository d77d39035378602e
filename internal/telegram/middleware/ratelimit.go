package middleware

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	warningInterval   = 30 * time.Second
	cleanupInterval   = 10 * time.Minute
	inactiveThreshold = time.Hour
)

// chatLimit tracks token bucket state for a single chat
type chatLimit struct {
	mu            sync.Mutex
	tokens        float64
	lastRefill    time.Time
	lastWarningAt time.Time
}

// RateLimiterMiddleware enforces a per-chat query budget. Every question
// triggers an LLM round-trip, so chats cannot be allowed to flood.
type RateLimiterMiddleware struct {
	mu         sync.Mutex
	limits     map[int64]*chatLimit
	capacity   float64 // bucket size, allows short bursts
	refillRate float64 // tokens per second
	logger     *zap.Logger
	api        *tgbotapi.BotAPI
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burst int,
	logger *zap.Logger,
	api *tgbotapi.BotAPI,
) *RateLimiterMiddleware {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}

	rl := &RateLimiterMiddleware{
		limits:     make(map[int64]*chatLimit),
		capacity:   float64(burst),
		refillRate: float64(requestsPerMinute) / 60.0,
		logger:     logger,
		api:        api,
	}

	// Remove idle chats so the limits map stays bounded
	go rl.cleanupInactiveChats()

	return rl
}

// Handle drops the update when the chat is over its budget
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	if update.Message == nil {
		next(update)
		return
	}

	chatID := update.Message.Chat.ID

	allowed, warn := rl.allow(chatID, time.Now())
	if !allowed {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("chat_id", chatID),
		)
		if warn {
			rl.sendWarning(chatID)
		}
		return
	}

	next(update)
}

// allow refills the chat bucket up to now and takes one token. The second
// return reports whether a warning should go out, at most one per interval.
func (rl *RateLimiterMiddleware) allow(chatID int64, now time.Time) (bool, bool) {
	rl.mu.Lock()
	limit, exists := rl.limits[chatID]
	if !exists {
		limit = &chatLimit{
			tokens:     rl.capacity,
			lastRefill: now,
		}
		rl.limits[chatID] = limit
	}
	rl.mu.Unlock()

	limit.mu.Lock()
	defer limit.mu.Unlock()

	elapsed := now.Sub(limit.lastRefill).Seconds()
	limit.tokens += elapsed * rl.refillRate
	if limit.tokens > rl.capacity {
		limit.tokens = rl.capacity
	}
	limit.lastRefill = now

	if limit.tokens >= 1.0 {
		limit.tokens -= 1.0
		return true, false
	}

	if now.Sub(limit.lastWarningAt) > warningInterval {
		limit.lastWarningAt = now
		return false, true
	}

	return false, false
}

// sendWarning tells the chat to slow down
func (rl *RateLimiterMiddleware) sendWarning(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Too many questions at once, please wait a moment.")
	if _, err := rl.api.Send(msg); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// cleanupInactiveChats drops chats that have been idle for a while
func (rl *RateLimiterMiddleware) cleanupInactiveChats() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		rl.mu.Lock()
		for chatID, limit := range rl.limits {
			limit.mu.Lock()
			idle := now.Sub(limit.lastRefill) > inactiveThreshold
			limit.mu.Unlock()

			if idle {
				delete(rl.limits, chatID)
				rl.logger.Debug("cleaned up inactive chat from rate limiter",
					zap.Int64("chat_id", chatID),
				)
			}
		}
		rl.mu.Unlock()
	}
}
