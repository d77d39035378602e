package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/karrick/godirwalk"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/logger"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/metrics"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/validator"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/session"
	"go.uber.org/zap"
)

// RAGUsecase ties the document pipeline, the vector store, the answer
// generator and the session memory into the operations the surfaces expose.
type RAGUsecase struct {
	parser    DocumentParser
	chunker   DocumentChunker
	store     CourseStore
	generator AnswerGenerator
	sessions  session.Store
	logger    *zap.Logger
}

func NewUsecase(
	parser DocumentParser,
	chunker DocumentChunker,
	store CourseStore,
	generator AnswerGenerator,
	sessions session.Store,
	logger *zap.Logger,
) *RAGUsecase {
	return &RAGUsecase{
		parser:    parser,
		chunker:   chunker,
		store:     store,
		generator: generator,
		sessions:  sessions,
		logger:    logger,
	}
}

// AddCourseDocument parses, chunks and indexes one course file. Returns the
// parsed course and the number of chunks written.
func (uc *RAGUsecase) AddCourseDocument(ctx context.Context, path string) (*entity.Course, int, error) {
	doc, err := uc.parser.ParseFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("parse course document: %w", err)
	}

	chunks := uc.chunker.ChunkDocument(doc)
	if err := uc.store.AddCourse(ctx, &doc.Course, chunks); err != nil {
		return nil, 0, fmt.Errorf("index course: %w", err)
	}

	metrics.CoursesIngested.Inc()
	metrics.ChunksIngested.Add(float64(len(chunks)))

	ctxzap.Info(ctx, "course document added",
		zap.String("course_title", doc.Course.Title),
		zap.Int("chunk_count", len(chunks)))

	return &doc.Course, len(chunks), nil
}

// AddCourseFolder ingests every supported document under the folder. Courses
// whose title is already indexed are skipped so repeated startups converge;
// clearExisting wipes both collections first for a full rebuild. A document
// that fails to parse or index is counted and logged, never aborts the rest.
func (uc *RAGUsecase) AddCourseFolder(ctx context.Context, folder string, clearExisting bool) (*entity.IngestReport, error) {
	if clearExisting {
		ctxzap.Info(ctx, "clearing vector store for full rebuild")
		if err := uc.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear vector store: %w", err)
		}
	}

	titles, err := uc.store.ExistingTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list existing courses: %w", err)
	}
	existing := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		existing[title] = struct{}{}
	}

	report := &entity.IngestReport{}
	walkErr := godirwalk.Walk(folder, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() || !validator.SupportedDocument(path) {
				return nil
			}

			doc, err := uc.parser.ParseFile(path)
			if err != nil {
				ctxzap.Warn(ctx, "skipping unreadable course document",
					zap.String("path", path),
					zap.Error(err))
				report.Failed++
				return nil
			}

			if _, ok := existing[doc.Course.Title]; ok {
				report.CoursesSkipped++
				return nil
			}

			chunks := uc.chunker.ChunkDocument(doc)
			if err := uc.store.AddCourse(ctx, &doc.Course, chunks); err != nil {
				ctxzap.Warn(ctx, "failed to index course",
					zap.String("course_title", doc.Course.Title),
					zap.Error(err))
				report.Failed++
				return nil
			}

			existing[doc.Course.Title] = struct{}{}
			report.CoursesAdded++
			report.ChunksAdded += len(chunks)
			metrics.CoursesIngested.Inc()
			metrics.ChunksIngested.Add(float64(len(chunks)))
			return nil
		},
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk course folder: %w", walkErr)
	}

	ctxzap.Info(ctx, "course folder ingested",
		zap.String("folder", folder),
		zap.Int("courses_added", report.CoursesAdded),
		zap.Int("chunks_added", report.ChunksAdded),
		zap.Int("courses_skipped", report.CoursesSkipped),
		zap.Int("failed", report.Failed))

	return report, nil
}

// Query answers one user question. An empty session id starts a fresh
// session; its id comes back in the result so the client can continue the
// conversation.
func (uc *RAGUsecase) Query(ctx context.Context, query, sessionID string) (*entity.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", entity.ErrInvalidParameter)
	}

	if sessionID == "" {
		var err error
		sessionID, err = uc.sessions.Create(ctx)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
	ctx = logger.WithSession(ctx, sessionID)

	history, err := uc.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}

	answer, sources, err := uc.generator.Respond(ctx, query, history)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	// An append failure must not fail a query that already has its answer.
	if err := uc.sessions.Append(ctx, sessionID, query, answer); err != nil {
		ctxzap.Warn(ctx, "failed to record exchange", zap.Error(err))
	}

	ctxzap.Info(ctx, "query answered", zap.Int("source_count", len(sources)))

	return &entity.QueryResult{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

// Analytics reports how many courses are indexed and their titles.
func (uc *RAGUsecase) Analytics(ctx context.Context) (*entity.CourseAnalytics, error) {
	analytics, err := uc.store.Analytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("course analytics: %w", err)
	}
	return analytics, nil
}

// ClearSession drops a conversation's history.
func (uc *RAGUsecase) ClearSession(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
