package builder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/api"
	coursesapi "github.com/mshayganfar/starting-ragchatbot-codebase/internal/api/courses"
	queryapi "github.com/mshayganfar/starting-ragchatbot-codebase/internal/api/query"
	sessionapi "github.com/mshayganfar/starting-ragchatbot-codebase/internal/api/session"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/chunker"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/docparser"
	pgvectorindex "github.com/mshayganfar/starting-ragchatbot-codebase/internal/index/pgvector"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/integration/anthropic"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/integration/embedding"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/orchestrator"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/telegram"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/tools"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/usecase/rag"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/vectorstore"
	"go.uber.org/zap"
)

// components bundles the wired core shared by every entry point.
type components struct {
	usecase  *rag.RAGUsecase
	vectors  *pgvectorindex.Store
	sessions io.Closer
}

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	ctx := ctxzap.ToContext(context.Background(), logger)

	comps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Load the course documents folder like the original startup hook did.
	// Failures are logged but do not prevent the server from starting.
	if cfg.IngestCfg.LoadOnStartup {
		loadStartupDocuments(ctx, comps.usecase, cfg.IngestCfg.DocsDir, logger)
	}

	// Setup API handlers
	queryHandler := queryapi.NewHandler(comps.usecase)
	coursesHandler := coursesapi.NewHandler(comps.usecase)
	sessionHandler := sessionapi.NewHandler(comps.usecase)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(queryHandler, coursesHandler, sessionHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:   server,
		vectors:  comps.vectors,
		sessions: comps.sessions,
		logger:   logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	ctx := ctxzap.ToContext(context.Background(), logger)

	comps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, comps.usecase, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}

// BuildLoader wires the ingestion pipeline for the course-loader CLI.
func BuildLoader() (*rag.RAGUsecase, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	ctx := ctxzap.ToContext(context.Background(), logger)

	comps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return comps.usecase, logger, nil
}

// buildComponents wires the RAG core: vector indexes, connectors, tools,
// orchestrator and session store.
func buildComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	catalog, content, vectors, err := setupIndexes(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup vector indexes: %w", err)
	}
	logger.Info("Vector indexes initialized", zap.String("backend", cfg.VectorCfg.Backend))

	// Initialize external service connectors (with mock support)
	var embedder vectorstore.Embedder
	var llm orchestrator.LLMConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(logger)
		llm = anthropic.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		embedder = embedding.NewConnector(cfg.EmbeddingCfg, logger)
		llm = anthropic.NewConnector(cfg.AnthropicCfg, logger)
	}

	store := vectorstore.New(catalog, content, embedder, cfg.VectorCfg, logger)

	registry := tools.NewRegistry(
		tools.NewCourseSearchTool(store),
		tools.NewCourseOutlineTool(store),
	)

	generator := orchestrator.New(llm, registry, cfg.AnthropicCfg.MaxToolRounds, logger)

	sessions, sessionsCloser, err := setupSessionStore(ctx, cfg, logger)
	if err != nil {
		if vectors != nil {
			vectors.Close()
		}
		return nil, fmt.Errorf("setup session store: %w", err)
	}
	logger.Info("Session store initialized", zap.String("backend", cfg.SessionCfg.Backend))

	usecase := rag.NewUsecase(
		docparser.New(),
		chunker.New(cfg.ChunkCfg),
		store,
		generator,
		sessions,
		logger,
	)
	logger.Info("Use cases initialized")

	return &components{
		usecase:  usecase,
		vectors:  vectors,
		sessions: sessionsCloser,
	}, nil
}

// loadStartupDocuments ingests the docs folder if it exists, keeping already
// indexed courses.
func loadStartupDocuments(ctx context.Context, usecase *rag.RAGUsecase, folder string, logger *zap.Logger) {
	if _, err := os.Stat(folder); err != nil {
		logger.Warn("Course documents folder not found, skipping initial load",
			zap.String("folder", folder),
		)
		return
	}

	logger.Info("Loading initial course documents", zap.String("folder", folder))

	report, err := usecase.AddCourseFolder(ctx, folder, false)
	if err != nil {
		logger.Error("Initial document load failed", zap.Error(err))
		return
	}

	logger.Info("Initial course documents loaded",
		zap.Int("courses_added", report.CoursesAdded),
		zap.Int("chunks_added", report.ChunksAdded),
		zap.Int("courses_skipped", report.CoursesSkipped),
		zap.Int("failed", report.Failed),
	)
}
