package entity

// Course is a parsed course document. Title is the unique identifier of the
// course across both vector collections.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// LessonCount returns the number of lessons in the course.
func (c *Course) LessonCount() int {
	return len(c.Lessons)
}

// FindLesson returns the lesson with the given number, or nil.
func (c *Course) FindLesson(number int) *Lesson {
	for i := range c.Lessons {
		if c.Lessons[i].Number == number {
			return &c.Lessons[i]
		}
	}
	return nil
}

// CourseDocument is the parsed form of a source file before chunking.
// Overview holds text that precedes the first lesson marker. Lessons holds
// the body text of each lesson in document order, parallel to Course.Lessons.
type CourseDocument struct {
	Course   Course
	Overview string
	Lessons  []LessonText
}

type LessonText struct {
	Number int
	Text   string
}

// CourseChunk is one indexable span of course text. Content already carries
// the "Course X Lesson N content:" context prefix added at chunking time.
// LessonNumber is nil for course-overview chunks. ChunkIndex is the position
// of the chunk within its document and is part of the chunk's stable id.
type CourseChunk struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
}

// SearchHit is one retrieved chunk with the metadata needed to attribute it.
type SearchHit struct {
	Content      string  `json:"content"`
	CourseTitle  string  `json:"course_title"`
	LessonNumber *int    `json:"lesson_number,omitempty"`
	Distance     float64 `json:"distance"`
}

// Source identifies where an answer fragment came from, shown to end users.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// Exchange is one completed query/answer pair kept in session history.
type Exchange struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// QueryResult is the outcome of a full RAG round-trip.
type QueryResult struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	SessionID string   `json:"session_id"`
}

// CourseAnalytics is the aggregate view served by the courses endpoint.
type CourseAnalytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// IngestReport summarizes a folder ingestion run. Courses whose title is
// already indexed are counted as skipped, unreadable documents as failed.
type IngestReport struct {
	CoursesAdded   int `json:"courses_added"`
	ChunksAdded    int `json:"chunks_added"`
	CoursesSkipped int `json:"courses_skipped"`
	Failed         int `json:"failed"`
}
