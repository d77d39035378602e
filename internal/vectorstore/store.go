package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/index"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Catalog entries are keyed by course title and carry the course header in
// metadata. Content entries are keyed by "{title}_{chunkIndex}" and carry the
// attribution fields every search hit needs.
const (
	metaInstructor   = "instructor"
	metaCourseLink   = "course_link"
	metaLessonsJSON  = "lessons_json"
	metaLessonCount  = "lesson_count"
	metaCourseTitle  = "course_title"
	metaLessonNumber = "lesson_number"
	metaChunkIndex   = "chunk_index"
)

// Store joins a course catalog collection and a content chunk collection
// through the shared embedder. The catalog answers "which course did the user
// mean", the content collection answers "which chunks match the query", and
// the exact course title is the only join key between the two.
//
// The two collections cannot be written in one transaction. A failure between
// the content write and the catalog write leaves the course in need of
// re-ingestion, which converges because both writes overwrite by id.
type Store struct {
	catalog  index.Index
	content  index.Index
	embedder Embedder
	logger   *zap.Logger

	maxResults int

	// resolveCache memoizes fuzzy-name resolutions. Any write can change
	// which course is the nearest neighbor, so writers flush the whole cache.
	resolveCache *gocache.Cache

	mu sync.RWMutex
}

func New(catalog, content index.Index, embedder Embedder, cfg config.VectorStoreConfig, logger *zap.Logger) *Store {
	return &Store{
		catalog:      catalog,
		content:      content,
		embedder:     embedder,
		logger:       logger,
		maxResults:   cfg.MaxResults,
		resolveCache: gocache.New(cfg.ResolveCacheTTL, 2*cfg.ResolveCacheTTL),
	}
}

// AddCourse overwrites the catalog entry and all content entries for the
// course. Embeddings are computed up front so an embedding failure leaves
// both collections untouched.
func (s *Store) AddCourse(ctx context.Context, course *entity.Course, chunks []entity.CourseChunk) error {
	titleVector, err := s.embedder.EmbedOne(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	contentEntries, err := s.buildContentEntries(ctx, chunks)
	if err != nil {
		return err
	}

	catalogEntry, err := buildCatalogEntry(course, titleVector)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.content.Delete(ctx, index.Filter{metaCourseTitle: course.Title}); err != nil {
		return fmt.Errorf("delete stale content entries: %w", err)
	}
	if len(contentEntries) > 0 {
		if err := s.content.Upsert(ctx, contentEntries); err != nil {
			return fmt.Errorf("%w: upsert content entries: %v", entity.ErrIndexWrite, err)
		}
	}
	if err := s.catalog.Upsert(ctx, []index.Entry{catalogEntry}); err != nil {
		return fmt.Errorf("%w: upsert catalog entry: %v", entity.ErrIndexWrite, err)
	}

	s.resolveCache.Flush()

	ctxzap.Info(ctx, "course indexed",
		zap.String("course_title", course.Title),
		zap.Int("lesson_count", course.LessonCount()),
		zap.Int("chunk_count", len(chunks)))
	return nil
}

// ResolveCourseName maps a fuzzy course reference to the exact stored title
// via a top-1 nearest-neighbor lookup over the catalog. The best match wins
// regardless of how weak it is; only an empty catalog produces no answer.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveCourseName(ctx, name)
}

// resolveCourseName requires the caller to hold at least a read lock.
func (s *Store) resolveCourseName(ctx context.Context, name string) (string, error) {
	if cached, ok := s.resolveCache.Get(name); ok {
		return cached.(string), nil
	}

	vector, err := s.embedder.EmbedOne(ctx, name)
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}

	hits, err := s.catalog.Query(ctx, vector, nil, 1)
	if err != nil {
		return "", fmt.Errorf("query course catalog: %w", err)
	}
	if len(hits) == 0 {
		return "", fmt.Errorf("no course matching %q: %w", name, entity.ErrCourseNotFound)
	}

	title := hits[0].ID
	s.resolveCache.Set(name, title, gocache.DefaultExpiration)

	ctxzap.Debug(ctx, "resolved course name",
		zap.String("input", name),
		zap.String("course_title", title))
	return title, nil
}

// Search embeds the query and returns the closest content chunks. A non-empty
// courseName is resolved against the catalog first; if resolution fails the
// content collection is never queried. lessonNumber narrows matches to one
// lesson. limit <= 0 falls back to the configured maximum.
func (s *Store) Search(ctx context.Context, query, courseName string, lessonNumber *int, limit int) ([]entity.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := index.Filter{}
	if courseName != "" {
		title, err := s.resolveCourseName(ctx, courseName)
		if err != nil {
			return nil, err
		}
		filter[metaCourseTitle] = title
	}
	if lessonNumber != nil {
		filter[metaLessonNumber] = *lessonNumber
	}
	if len(filter) == 0 {
		filter = nil
	}

	if limit <= 0 {
		limit = s.maxResults
	}

	vector, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}

	hits, err := s.content.Query(ctx, vector, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("query course content: %w", err)
	}

	results := make([]entity.SearchHit, 0, len(hits))
	for _, hit := range hits {
		result := entity.SearchHit{
			Content:     hit.Document,
			CourseTitle: metaString(hit.Metadata, metaCourseTitle),
			Distance:    hit.Distance,
		}
		if number, ok := metaInt(hit.Metadata, metaLessonNumber); ok {
			result.LessonNumber = &number
		}
		results = append(results, result)
	}

	ctxzap.Debug(ctx, "content search finished",
		zap.String("query", query),
		zap.String("course_filter", metaString(filter, metaCourseTitle)),
		zap.Int("hit_count", len(results)))
	return results, nil
}

// Outline returns the stored course header and lesson list for an exact
// title. Callers resolve fuzzy names first.
func (s *Store) Outline(ctx context.Context, courseTitle string) (*entity.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.catalog.Fetch(ctx, []string{courseTitle})
	if err != nil {
		return nil, fmt.Errorf("fetch catalog entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no course titled %q: %w", courseTitle, entity.ErrCourseNotFound)
	}

	entry := entries[0]
	course := &entity.Course{
		Title:      entry.ID,
		Link:       metaString(entry.Metadata, metaCourseLink),
		Instructor: metaString(entry.Metadata, metaInstructor),
	}
	if raw := metaString(entry.Metadata, metaLessonsJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &course.Lessons); err != nil {
			return nil, fmt.Errorf("decode lesson list for %q: %w", courseTitle, err)
		}
	}
	return course, nil
}

// ExistingTitles lists every indexed course title in lexical order.
func (s *Store) ExistingTitles(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	titles, err := s.catalog.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list course titles: %w", err)
	}
	sort.Strings(titles)
	return titles, nil
}

// Analytics reports the catalog size and title list served by the courses
// endpoint.
func (s *Store) Analytics(ctx context.Context) (*entity.CourseAnalytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	titles, err := s.catalog.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list course titles: %w", err)
	}
	sort.Strings(titles)

	return &entity.CourseAnalytics{
		TotalCourses: total,
		CourseTitles: titles,
	}, nil
}

// Clear removes every entry from both collections.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.content.Delete(ctx, nil); err != nil {
		return fmt.Errorf("clear content collection: %w", err)
	}
	if err := s.catalog.Delete(ctx, nil); err != nil {
		return fmt.Errorf("clear catalog collection: %w", err)
	}
	s.resolveCache.Flush()

	ctxzap.Info(ctx, "vector store cleared")
	return nil
}

func (s *Store) buildContentEntries(ctx context.Context, chunks []entity.CourseChunk) ([]index.Entry, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed course chunks: %w", err)
	}

	entries := make([]index.Entry, len(chunks))
	for i, chunk := range chunks {
		metadata := map[string]any{
			metaCourseTitle: chunk.CourseTitle,
			metaChunkIndex:  chunk.ChunkIndex,
		}
		if chunk.LessonNumber != nil {
			metadata[metaLessonNumber] = *chunk.LessonNumber
		}
		entries[i] = index.Entry{
			ID:       fmt.Sprintf("%s_%d", chunk.CourseTitle, chunk.ChunkIndex),
			Vector:   vectors[i],
			Metadata: metadata,
			Document: chunk.Content,
		}
	}
	return entries, nil
}

func buildCatalogEntry(course *entity.Course, vector []float32) (index.Entry, error) {
	lessonsJSON, err := json.Marshal(course.Lessons)
	if err != nil {
		return index.Entry{}, fmt.Errorf("encode lesson list: %w", err)
	}
	return index.Entry{
		ID:     course.Title,
		Vector: vector,
		Metadata: map[string]any{
			metaInstructor:  course.Instructor,
			metaCourseLink:  course.Link,
			metaLessonsJSON: string(lessonsJSON),
			metaLessonCount: course.LessonCount(),
		},
		Document: course.Title,
	}, nil
}

func metaString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// metaInt tolerates the float64 that numbers become after a JSON round-trip
// through a remote backend.
func metaInt(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
