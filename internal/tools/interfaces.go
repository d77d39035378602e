package tools

import (
	"context"
	"encoding/json"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

// Tool is one capability the model may invoke. Execute returns the text fed
// back to the model plus the citations collected for the caller. Errors mean
// the invocation itself failed and are reported to the model as error
// results; recoverable conditions such as an unknown course come back as
// plain text instead.
type Tool interface {
	Name() string
	Definition() entity.ToolDefinition
	Execute(ctx context.Context, args json.RawMessage) (string, []entity.Source, error)
}

type CourseStore interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int, limit int) ([]entity.SearchHit, error)
	ResolveCourseName(ctx context.Context, name string) (string, error)
	Outline(ctx context.Context, courseTitle string) (*entity.Course, error)
}
