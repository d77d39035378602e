package vectorstore

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/index"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/index/memory"
	"go.uber.org/zap"
)

type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = s.lookup(text)
	}
	return out, nil
}

func (s *stubEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	s.calls++
	return s.lookup(text), nil
}

func (s *stubEmbedder) lookup(text string) []float32 {
	if v, ok := s.vectors[text]; ok {
		return v
	}
	return []float32{1, 0, 0}
}

type countingIndex struct {
	index.Index
	queries int
}

func (c *countingIndex) Query(ctx context.Context, vector []float32, filter index.Filter, topK int) ([]index.Hit, error) {
	c.queries++
	return c.Index.Query(ctx, vector, filter, topK)
}

func testConfig() config.VectorStoreConfig {
	return config.VectorStoreConfig{
		MaxResults:      5,
		ResolveCacheTTL: time.Minute,
	}
}

func intPtr(n int) *int { return &n }

func pythonCourse() (*entity.Course, []entity.CourseChunk) {
	course := &entity.Course{
		Title:      "Python Fundamentals",
		Link:       "https://example.com/python",
		Instructor: "John Doe",
		Lessons: []entity.Lesson{
			{Number: 1, Title: "Introduction", Link: "https://example.com/python/1"},
			{Number: 2, Title: "Variables", Link: "https://example.com/python/2"},
		},
	}
	chunks := []entity.CourseChunk{
		{Content: "Course Python Fundamentals content: basics overview", CourseTitle: course.Title, ChunkIndex: 0},
		{Content: "Course Python Fundamentals Lesson 1 content: welcome", CourseTitle: course.Title, LessonNumber: intPtr(1), ChunkIndex: 1},
		{Content: "Course Python Fundamentals Lesson 2 content: variables", CourseTitle: course.Title, LessonNumber: intPtr(2), ChunkIndex: 2},
	}
	return course, chunks
}

func goCourse() (*entity.Course, []entity.CourseChunk) {
	course := &entity.Course{
		Title:      "Go Concurrency",
		Instructor: "Jane Smith",
		Lessons: []entity.Lesson{
			{Number: 1, Title: "Goroutines"},
		},
	}
	chunks := []entity.CourseChunk{
		{Content: "Course Go Concurrency Lesson 1 content: goroutines", CourseTitle: course.Title, LessonNumber: intPtr(1), ChunkIndex: 0},
	}
	return course, chunks
}

// twoCourseEmbedder gives each course title its own axis and puts every chunk
// on the axis of its course so similarity follows course membership.
func twoCourseEmbedder() *stubEmbedder {
	return &stubEmbedder{vectors: map[string][]float32{
		"Python Fundamentals": {1, 0, 0},
		"Go Concurrency":      {0, 1, 0},

		"Course Python Fundamentals content: basics overview":    {0.9, 0.1, 0},
		"Course Python Fundamentals Lesson 1 content: welcome":   {0.8, 0.2, 0},
		"Course Python Fundamentals Lesson 2 content: variables": {0.7, 0.3, 0},
		"Course Go Concurrency Lesson 1 content: goroutines":     {0.1, 0.9, 0},

		"python": {0.95, 0.05, 0},
		"golang": {0.05, 0.95, 0},
	}}
}

func TestAddCourseAndAnalytics(t *testing.T) {
	store := New(memory.New(), memory.New(), twoCourseEmbedder(), testConfig(), zap.NewNop())
	ctx := context.Background()

	python, pythonChunks := pythonCourse()
	golang, goChunks := goCourse()
	if err := store.AddCourse(ctx, python, pythonChunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	if err := store.AddCourse(ctx, golang, goChunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}

	analytics, err := store.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if analytics.TotalCourses != 2 {
		t.Errorf("TotalCourses = %d, want 2", analytics.TotalCourses)
	}
	wantTitles := []string{"Go Concurrency", "Python Fundamentals"}
	if !reflect.DeepEqual(analytics.CourseTitles, wantTitles) {
		t.Errorf("CourseTitles = %v, want %v", analytics.CourseTitles, wantTitles)
	}
}

func TestAddCourseOverwrites(t *testing.T) {
	content := memory.New()
	store := New(memory.New(), content, twoCourseEmbedder(), testConfig(), zap.NewNop())
	ctx := context.Background()

	python, chunks := pythonCourse()
	if err := store.AddCourse(ctx, python, chunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}

	// Re-ingest with a single chunk. Stale entries must not survive.
	if err := store.AddCourse(ctx, python, chunks[:1]); err != nil {
		t.Fatalf("AddCourse again: %v", err)
	}

	count, err := content.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("content count after re-ingest = %d, want 1", count)
	}
}

func TestResolveCourseName(t *testing.T) {
	store := New(memory.New(), memory.New(), twoCourseEmbedder(), testConfig(), zap.NewNop())
	ctx := context.Background()

	python, pythonChunks := pythonCourse()
	golang, goChunks := goCourse()
	if err := store.AddCourse(ctx, python, pythonChunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	if err := store.AddCourse(ctx, golang, goChunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact title", "Python Fundamentals", "Python Fundamentals"},
		{"fuzzy toward python", "python", "Python Fundamentals"},
		{"fuzzy toward go", "golang", "Go Concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ResolveCourseName(ctx, tt.input)
			if err != nil {
				t.Fatalf("ResolveCourseName(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveCourseName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveCourseNameEmptyCatalog(t *testing.T) {
	store := New(memory.New(), memory.New(), twoCourseEmbedder(), testConfig(), zap.NewNop())

	_, err := store.ResolveCourseName(context.Background(), "anything")
	if !errors.Is(err, entity.ErrCourseNotFound) {
		t.Errorf("err = %v, want ErrCourseNotFound", err)
	}
}

func TestResolveCourseNameCaches(t *testing.T) {
	embedder := twoCourseEmbedder()
	store := New(memory.New(), memory.New(), embedder, testConfig(), zap.NewNop())
	ctx := context.Background()

	python, chunks := pythonCourse()
	if err := store.AddCourse(ctx, python, chunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}

	if _, err := store.ResolveCourseName(ctx, "python"); err != nil {
		t.Fatalf("ResolveCourseName: %v", err)
	}
	callsAfterFirst := embedder.calls
	if _, err := store.ResolveCourseName(ctx, "python"); err != nil {
		t.Fatalf("ResolveCourseName cached: %v", err)
	}
	if embedder.calls != callsAfterFirst {
		t.Errorf("cached resolution embedded again: calls %d -> %d", callsAfterFirst, embedder.calls)
	}

	// A new course can change every nearest-neighbor answer.
	golang, goChunks := goCourse()
	if err := store.AddCourse(ctx, golang, goChunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	callsBeforeResolve := embedder.calls
	if _, err := store.ResolveCourseName(ctx, "python"); err != nil {
		t.Fatalf("ResolveCourseName after write: %v", err)
	}
	if embedder.calls == callsBeforeResolve {
		t.Error("resolution cache not flushed by AddCourse")
	}
}

func TestSearchFilters(t *testing.T) {
	store := New(memory.New(), memory.New(), twoCourseEmbedder(), testConfig(), zap.NewNop())
	ctx := context.Background()

	python, pythonChunks := pythonCourse()
	golang, goChunks := goCourse()
	if err := store.AddCourse(ctx, python, pythonChunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	if err := store.AddCourse(ctx, golang, goChunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}

	t.Run("no filter searches everything", func(t *testing.T) {
		hits, err := store.Search(ctx, "python", "", nil, 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 4 {
			t.Fatalf("hit count = %d, want 4", len(hits))
		}
		if hits[0].CourseTitle != "Python Fundamentals" {
			t.Errorf("closest hit from %q, want Python Fundamentals", hits[0].CourseTitle)
		}
	})

	t.Run("course filter", func(t *testing.T) {
		hits, err := store.Search(ctx, "python", "golang", nil, 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 1 {
			t.Fatalf("hit count = %d, want 1", len(hits))
		}
		if hits[0].CourseTitle != "Go Concurrency" {
			t.Errorf("hit from %q, want Go Concurrency", hits[0].CourseTitle)
		}
	})

	t.Run("course and lesson filter", func(t *testing.T) {
		hits, err := store.Search(ctx, "python", "python", intPtr(2), 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 1 {
			t.Fatalf("hit count = %d, want 1", len(hits))
		}
		if hits[0].LessonNumber == nil || *hits[0].LessonNumber != 2 {
			t.Errorf("LessonNumber = %v, want 2", hits[0].LessonNumber)
		}
	})

	t.Run("lesson filter alone", func(t *testing.T) {
		hits, err := store.Search(ctx, "python", "", intPtr(1), 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 2 {
			t.Fatalf("hit count = %d, want 2", len(hits))
		}
		for _, hit := range hits {
			if hit.LessonNumber == nil || *hit.LessonNumber != 1 {
				t.Errorf("hit %q lesson = %v, want 1", hit.Content, hit.LessonNumber)
			}
		}
	})
}

func TestSearchUnknownCourseSkipsContentQuery(t *testing.T) {
	content := &countingIndex{Index: memory.New()}
	store := New(memory.New(), content, twoCourseEmbedder(), testConfig(), zap.NewNop())

	_, err := store.Search(context.Background(), "anything", "missing course", nil, 0)
	if !errors.Is(err, entity.ErrCourseNotFound) {
		t.Fatalf("err = %v, want ErrCourseNotFound", err)
	}
	if content.queries != 0 {
		t.Errorf("content index queried %d times, want 0", content.queries)
	}
}

func TestOutline(t *testing.T) {
	store := New(memory.New(), memory.New(), twoCourseEmbedder(), testConfig(), zap.NewNop())
	ctx := context.Background()

	python, chunks := pythonCourse()
	if err := store.AddCourse(ctx, python, chunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}

	outline, err := store.Outline(ctx, "Python Fundamentals")
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if outline.Title != python.Title || outline.Link != python.Link || outline.Instructor != python.Instructor {
		t.Errorf("outline header = %+v, want %+v", outline, python)
	}
	if !reflect.DeepEqual(outline.Lessons, python.Lessons) {
		t.Errorf("outline lessons = %+v, want %+v", outline.Lessons, python.Lessons)
	}

	if _, err := store.Outline(ctx, "Unknown Course"); !errors.Is(err, entity.ErrCourseNotFound) {
		t.Errorf("Outline(unknown) err = %v, want ErrCourseNotFound", err)
	}
}

func TestClear(t *testing.T) {
	store := New(memory.New(), memory.New(), twoCourseEmbedder(), testConfig(), zap.NewNop())
	ctx := context.Background()

	python, chunks := pythonCourse()
	if err := store.AddCourse(ctx, python, chunks); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	analytics, err := store.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if analytics.TotalCourses != 0 {
		t.Errorf("TotalCourses after clear = %d, want 0", analytics.TotalCourses)
	}
	if _, err := store.ResolveCourseName(ctx, "Python Fundamentals"); !errors.Is(err, entity.ErrCourseNotFound) {
		t.Errorf("resolution after clear err = %v, want ErrCourseNotFound", err)
	}
}
