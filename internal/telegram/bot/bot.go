package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/telegram/middleware"
	"go.uber.org/zap"
)

const (
	welcomeMessage = "Hi! I answer questions about the indexed course materials.\n\n" +
		"Ask anything, for example:\n" +
		"• What is MCP?\n" +
		"• What does lesson 5 of the MCP course cover?\n\n" +
		"Use /reset to start a new conversation."

	resetMessage   = "Conversation cleared. Ask me anything about the course materials."
	errorMessage   = "Could not answer that, please try again."
	emptyHint      = "Send a text question about the course materials."
	unknownCommand = "Unknown command. Ask a question directly, or use /reset to start over."
)

// RAGUsecase answers course questions with per-session conversation memory.
type RAGUsecase interface {
	Query(ctx context.Context, query, sessionID string) (*entity.QueryResult, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// Bot represents the Telegram bot
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	usecase     RAGUsecase
	sessions    *chatSessions
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// New creates a new Telegram bot
func New(
	cfg *config.TelegramConfig,
	usecase RAGUsecase,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	bot := &Bot{
		api:      api,
		cfg:      cfg,
		usecase:  usecase,
		sessions: newChatSessions(),
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	// Initialize middleware
	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)
	b.updatesChan = updates

	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	// Wait for all active handlers to complete
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-b.updatesChan:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to the message handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	b.answerQuery(ctx, message)
}

// answerQuery runs one RAG round-trip for a chat message
func (b *Bot) answerQuery(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	query := strings.TrimSpace(message.Text)
	if query == "" {
		b.sendError(chatID, emptyHint)
		return
	}

	// Tool rounds can take a while, show activity in the chat
	b.sendTyping(chatID)

	sessionID := b.sessions.get(chatID)

	result, err := b.usecase.Query(ctx, query, sessionID)
	if err != nil {
		ctxzap.Error(ctx, "failed to answer query",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		b.sendError(chatID, errorMessage)
		return
	}

	b.sessions.set(chatID, result.SessionID)

	if _, err := b.sendMessage(chatID, formatReply(result)); err != nil {
		ctxzap.Error(ctx, "failed to send answer",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("chat_id", message.Chat.ID),
	)

	switch command {
	case "start":
		b.handleStartCommand(ctx, message)
	case "reset":
		b.handleResetCommand(ctx, message)
	default:
		b.sendError(message.Chat.ID, unknownCommand)
	}
}

// handleStartCommand handles /start command
func (b *Bot) handleStartCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, err := b.sendMessage(chatID, welcomeMessage); err != nil {
		ctxzap.Error(ctx, "failed to send welcome message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// handleResetCommand handles /reset command, dropping conversation memory
func (b *Bot) handleResetCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	sessionID := b.sessions.take(chatID)
	if sessionID != "" {
		if err := b.usecase.ClearSession(ctx, sessionID); err != nil {
			ctxzap.Error(ctx, "failed to clear session",
				zap.Error(err),
				zap.String("session_id", sessionID),
			)
		}
	}

	if _, err := b.sendMessage(chatID, resetMessage); err != nil {
		ctxzap.Error(ctx, "failed to send reset confirmation",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// sendMessage sends a message to chat
func (b *Bot) sendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	return b.api.Send(msg)
}

// sendError sends an error message
func (b *Bot) sendError(chatID int64, text string) {
	if _, err := b.sendMessage(chatID, text); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// sendTyping shows the typing indicator in a chat
func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		b.logger.Debug("failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}
