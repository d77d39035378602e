package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

const SearchToolName = "search_course_content"

type searchParams struct {
	Query        string `json:"query"`
	CourseName   string `json:"course_name"`
	LessonNumber *int   `json:"lesson_number"`
}

// CourseSearchTool exposes semantic course search to the model. Results are
// rendered as "[Course - Lesson N]" headed blocks so the model can attribute
// what it reads, while the same attribution goes back to the caller as
// structured sources.
type CourseSearchTool struct {
	store CourseStore
}

func NewCourseSearchTool(store CourseStore) *CourseSearchTool {
	return &CourseSearchTool{store: store}
}

func (t *CourseSearchTool) Name() string {
	return SearchToolName
}

func (t *CourseSearchTool) Definition() entity.ToolDefinition {
	return entity.ToolDefinition{
		Name:        SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: entity.ToolSchema{
			Type: "object",
			Properties: map[string]entity.ToolProperty{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number to search within (e.g. 1, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

func (t *CourseSearchTool) Execute(ctx context.Context, args json.RawMessage) (string, []entity.Source, error) {
	var params searchParams
	if err := json.Unmarshal(args, &params); err != nil {
		return "", nil, fmt.Errorf("decode search arguments: %w", err)
	}
	if strings.TrimSpace(params.Query) == "" {
		return "", nil, fmt.Errorf("%w: query", entity.ErrMissingField)
	}

	hits, err := t.store.Search(ctx, params.Query, params.CourseName, params.LessonNumber, 0)
	if errors.Is(err, entity.ErrCourseNotFound) {
		return fmt.Sprintf("No course found matching '%s'", params.CourseName), nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("search course content: %w", err)
	}
	if len(hits) == 0 {
		return noResultsMessage(params), nil, nil
	}

	return t.formatHits(ctx, hits)
}

func noResultsMessage(params searchParams) string {
	var filter strings.Builder
	filter.WriteString("No relevant content found")
	if params.CourseName != "" {
		fmt.Fprintf(&filter, " in course '%s'", params.CourseName)
	}
	if params.LessonNumber != nil {
		fmt.Fprintf(&filter, " in lesson %d", *params.LessonNumber)
	}
	filter.WriteString(".")
	return filter.String()
}

func (t *CourseSearchTool) formatHits(ctx context.Context, hits []entity.SearchHit) (string, []entity.Source, error) {
	blocks := make([]string, 0, len(hits))
	sources := make([]entity.Source, 0, len(hits))
	outlines := make(map[string]*entity.Course)

	for _, hit := range hits {
		label := hit.CourseTitle
		if hit.LessonNumber != nil {
			label = fmt.Sprintf("%s - Lesson %d", hit.CourseTitle, *hit.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, hit.Content))
		sources = append(sources, entity.Source{
			Text: label,
			Link: t.sourceLink(ctx, outlines, hit),
		})
	}

	return strings.Join(blocks, "\n\n"), sources, nil
}

// sourceLink prefers the lesson link and falls back to the course link. A
// failed catalog lookup degrades to a linkless citation rather than failing
// the whole search.
func (t *CourseSearchTool) sourceLink(ctx context.Context, outlines map[string]*entity.Course, hit entity.SearchHit) string {
	course, seen := outlines[hit.CourseTitle]
	if !seen {
		fetched, err := t.store.Outline(ctx, hit.CourseTitle)
		if err != nil {
			fetched = nil
		}
		outlines[hit.CourseTitle] = fetched
		course = fetched
	}
	if course == nil {
		return ""
	}
	if hit.LessonNumber != nil {
		if lesson := course.FindLesson(*hit.LessonNumber); lesson != nil && lesson.Link != "" {
			return lesson.Link
		}
	}
	return course.Link
}
