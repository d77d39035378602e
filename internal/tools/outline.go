package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

const OutlineToolName = "get_course_outline"

type outlineParams struct {
	CourseName string `json:"course_name"`
}

// CourseOutlineTool renders a course's structure for the model: title, link,
// instructor and the complete numbered lesson list.
type CourseOutlineTool struct {
	store CourseStore
}

func NewCourseOutlineTool(store CourseStore) *CourseOutlineTool {
	return &CourseOutlineTool{store: store}
}

func (t *CourseOutlineTool) Name() string {
	return OutlineToolName
}

func (t *CourseOutlineTool) Definition() entity.ToolDefinition {
	return entity.ToolDefinition{
		Name:        OutlineToolName,
		Description: "Get a course outline including the course title, course link, instructor and complete lesson list",
		InputSchema: entity.ToolSchema{
			Type: "object",
			Properties: map[string]entity.ToolProperty{
				"course_name": {
					Type:        "string",
					Description: "Course title to get the outline for (partial matches work)",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

func (t *CourseOutlineTool) Execute(ctx context.Context, args json.RawMessage) (string, []entity.Source, error) {
	var params outlineParams
	if err := json.Unmarshal(args, &params); err != nil {
		return "", nil, fmt.Errorf("decode outline arguments: %w", err)
	}
	if strings.TrimSpace(params.CourseName) == "" {
		return "", nil, fmt.Errorf("%w: course_name", entity.ErrMissingField)
	}

	title, err := t.store.ResolveCourseName(ctx, params.CourseName)
	if errors.Is(err, entity.ErrCourseNotFound) {
		return fmt.Sprintf("No course found matching '%s'", params.CourseName), nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("resolve course name: %w", err)
	}

	course, err := t.store.Outline(ctx, title)
	if err != nil {
		return "", nil, fmt.Errorf("fetch course outline: %w", err)
	}

	return renderOutline(course), []entity.Source{{Text: course.Title, Link: course.Link}}, nil
}

func renderOutline(course *entity.Course) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Course: %s\n", course.Title)
	if course.Link != "" {
		fmt.Fprintf(&out, "Course Link: %s\n", course.Link)
	}
	if course.Instructor != "" {
		fmt.Fprintf(&out, "Instructor: %s\n", course.Instructor)
	}
	fmt.Fprintf(&out, "\nLessons (%d):\n", course.LessonCount())
	for _, lesson := range course.Lessons {
		fmt.Fprintf(&out, "Lesson %d: %s\n", lesson.Number, lesson.Title)
	}
	return strings.TrimRight(out.String(), "\n")
}
