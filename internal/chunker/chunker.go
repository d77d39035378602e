package chunker

import (
	"fmt"
	"strings"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/config"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

// Chunker splits parsed course documents into context-prefixed chunks ready
// for embedding. Chunks are sentence-aligned: a sentence is never cut in
// half, even when it alone exceeds the size limit.
type Chunker struct {
	maxChars int
	overlap  int
}

func New(cfg config.ChunkingConfig) *Chunker {
	return &Chunker{
		maxChars: cfg.Size,
		overlap:  cfg.Overlap,
	}
}

// ChunkDocument produces the ordered chunk sequence for one document.
// Chunk indices are assigned monotonically across overview and lesson text,
// so re-chunking the same document yields identical indices and therefore
// identical index ids.
func (c *Chunker) ChunkDocument(doc *entity.CourseDocument) []entity.CourseChunk {
	var chunks []entity.CourseChunk
	index := 0

	courseLabel := fmt.Sprintf("Course %s content: ", doc.Course.Title)
	for _, text := range c.chunkText(doc.Overview) {
		chunks = append(chunks, entity.CourseChunk{
			Content:     courseLabel + text,
			CourseTitle: doc.Course.Title,
			ChunkIndex:  index,
		})
		index++
	}

	for _, lesson := range doc.Lessons {
		number := lesson.Number
		label := fmt.Sprintf("Course %s Lesson %d content: ", doc.Course.Title, number)
		for _, text := range c.chunkText(lesson.Text) {
			chunks = append(chunks, entity.CourseChunk{
				Content:      label + text,
				CourseTitle:  doc.Course.Title,
				LessonNumber: intPtr(number),
				ChunkIndex:   index,
			})
			index++
		}
	}

	return chunks
}

// chunkText accumulates sentences up to the size limit and carries a
// character overlap from the tail of each closed chunk into the next one.
func (c *Chunker) chunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var b strings.Builder
	carry := ""        // overlap seed for the chunk being started
	hasContent := false // b holds at least one whole sentence

	flush := func() {
		chunk := b.String()
		chunks = append(chunks, chunk)
		carry = tailRunes(chunk, c.overlap)
		b.Reset()
		hasContent = false
	}

	for _, sentence := range sentences {
		if hasContent && b.Len()+len(sentence)+1 > c.maxChars {
			flush()
		}
		if !hasContent && carry != "" {
			b.WriteString(carry)
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sentence)
		hasContent = true
	}
	if hasContent {
		chunks = append(chunks, b.String())
	}

	return chunks
}

// tailRunes returns the last n runes of s without cutting a multibyte
// character.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func intPtr(n int) *int {
	return &n
}
