package chunker

import (
	"strings"
	"testing"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

func testDocument(overview string, lessons ...entity.LessonText) *entity.CourseDocument {
	course := entity.Course{Title: "Go Basics"}
	for _, l := range lessons {
		course.Lessons = append(course.Lessons, entity.Lesson{Number: l.Number, Title: "Lesson"})
	}
	return &entity.CourseDocument{
		Course:   course,
		Overview: overview,
		Lessons:  lessons,
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain sentences",
			text: "First sentence. Second one! Third?",
			want: []string{"First sentence.", "Second one!", "Third?"},
		},
		{
			name: "normalizes whitespace",
			text: "One  sentence\n\tspread   out. Another.",
			want: []string{"One sentence spread out.", "Another."},
		},
		{
			name: "abbreviation does not split",
			text: "Ask Dr. Smith about it. He knows.",
			want: []string{"Ask Dr. Smith about it.", "He knows."},
		},
		{
			name: "latin abbreviation does not split",
			text: "Use simple types, e.g. integers. Then continue.",
			want: []string{"Use simple types, e.g. integers.", "Then continue."},
		},
		{
			name: "trailing text without terminator",
			text: "Complete sentence. And a trailing fragment",
			want: []string{"Complete sentence.", "And a trailing fragment"},
		},
		{
			name: "empty input",
			text: "   \n  ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkTextRespectsLimit(t *testing.T) {
	c := New(config.ChunkingConfig{Size: 60, Overlap: 10})

	text := "Alpha beta gamma delta epsilon. Zeta eta theta iota kappa. Lambda mu nu xi omicron. Pi rho sigma tau upsilon."
	chunks := c.chunkText(text)

	if len(chunks) < 2 {
		t.Fatalf("expected text to be split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 60 {
			t.Errorf("chunk %d exceeds limit (%d chars): %q", i, len(chunk), chunk)
		}
	}

	// every sentence must land in some chunk untruncated
	for _, sentence := range splitSentences(text) {
		found := false
		for _, chunk := range chunks {
			if strings.Contains(chunk, sentence) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("sentence %q missing from all chunks", sentence)
		}
	}
}

func TestChunkTextOverlap(t *testing.T) {
	c := New(config.ChunkingConfig{Size: 50, Overlap: 12})

	text := "The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs. How vexingly quick daft zebras jump."
	chunks := c.chunkText(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		carry := tailRunes(chunks[i-1], 12)
		if !strings.HasPrefix(chunks[i], carry) {
			t.Errorf("chunk %d does not start with the previous chunk's tail %q: %q", i, carry, chunks[i])
		}
	}
}

func TestChunkTextOversizedSentence(t *testing.T) {
	c := New(config.ChunkingConfig{Size: 30, Overlap: 5})

	long := "This single sentence is far longer than the configured chunk size limit and must stay whole."
	text := "Short one. " + long + " Tail."
	chunks := c.chunkText(text)

	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk, long) {
			found = true
		}
	}
	if !found {
		t.Fatalf("oversized sentence was split across chunks: %q", chunks)
	}
}

func TestChunkDocumentLabels(t *testing.T) {
	c := New(config.ChunkingConfig{Size: 800, Overlap: 100})

	doc := testDocument(
		"This course teaches Go from scratch.",
		entity.LessonText{Number: 0, Text: "Lesson zero introduces the toolchain."},
		entity.LessonText{Number: 1, Text: "Lesson one covers variables and types."},
	)
	chunks := c.ChunkDocument(doc)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	if !strings.HasPrefix(chunks[0].Content, "Course Go Basics content: ") {
		t.Errorf("overview chunk missing course label: %q", chunks[0].Content)
	}
	if chunks[0].LessonNumber != nil {
		t.Errorf("overview chunk must have no lesson number, got %d", *chunks[0].LessonNumber)
	}

	if !strings.HasPrefix(chunks[1].Content, "Course Go Basics Lesson 0 content: ") {
		t.Errorf("lesson chunk missing lesson label: %q", chunks[1].Content)
	}
	if chunks[1].LessonNumber == nil || *chunks[1].LessonNumber != 0 {
		t.Errorf("lesson chunk has wrong lesson number: %v", chunks[1].LessonNumber)
	}

	for i, chunk := range chunks {
		if chunk.ChunkIndex != i {
			t.Errorf("chunk %d has index %d, indices must be monotonic", i, chunk.ChunkIndex)
		}
		if chunk.CourseTitle != "Go Basics" {
			t.Errorf("chunk %d has wrong course title %q", i, chunk.CourseTitle)
		}
	}
}

func TestChunkDocumentEmptyLesson(t *testing.T) {
	c := New(config.ChunkingConfig{Size: 800, Overlap: 100})

	doc := testDocument(
		"",
		entity.LessonText{Number: 1, Text: "   "},
		entity.LessonText{Number: 2, Text: "Actual content here."},
	)
	chunks := c.ChunkDocument(doc)

	if len(chunks) != 1 {
		t.Fatalf("empty lesson must produce zero chunks, got %d total", len(chunks))
	}
	if chunks[0].LessonNumber == nil || *chunks[0].LessonNumber != 2 {
		t.Errorf("surviving chunk should belong to lesson 2, got %v", chunks[0].LessonNumber)
	}
	if chunks[0].ChunkIndex != 0 {
		t.Errorf("first emitted chunk must have index 0, got %d", chunks[0].ChunkIndex)
	}
}

func TestChunkDocumentDeterministic(t *testing.T) {
	c := New(config.ChunkingConfig{Size: 100, Overlap: 20})

	doc := testDocument(
		"Overview text for the course. It spans a couple of sentences to force chunking behavior.",
		entity.LessonText{Number: 1, Text: "Lesson body with several sentences. Each one adds length. Enough to cross the boundary at least once."},
	)

	first := c.ChunkDocument(doc)
	second := c.ChunkDocument(doc)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Content != second[i].Content || first[i].ChunkIndex != second[i].ChunkIndex {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
