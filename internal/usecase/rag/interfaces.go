package rag

import (
	"context"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

type DocumentParser interface {
	ParseFile(path string) (*entity.CourseDocument, error)
}

type DocumentChunker interface {
	ChunkDocument(doc *entity.CourseDocument) []entity.CourseChunk
}

type CourseStore interface {
	AddCourse(ctx context.Context, course *entity.Course, chunks []entity.CourseChunk) error
	ExistingTitles(ctx context.Context) ([]string, error)
	Analytics(ctx context.Context) (*entity.CourseAnalytics, error)
	Clear(ctx context.Context) error
}

type AnswerGenerator interface {
	Respond(ctx context.Context, query string, history []entity.Exchange) (string, []entity.Source, error)
}
