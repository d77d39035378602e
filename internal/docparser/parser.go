package docparser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

// Course documents are plain text with a metadata header followed by lesson
// sections:
//
//	Course Title: Building Toward Computer Use
//	Course Link: https://example.com/course
//	Course Instructor: Jane Doe
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/lesson0
//	lesson text...
//
// Header lines may appear in any order; a missing title falls back to the
// file name. Text between the header and the first lesson marker is kept as
// course-overview text.
var (
	titleRe      = regexp.MustCompile(`^Course Title:\s*(.+)$`)
	linkRe       = regexp.MustCompile(`^Course Link:\s*(.+)$`)
	instructorRe = regexp.MustCompile(`^Course Instructor:\s*(.+)$`)
	lessonRe     = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)
	lessonLinkRe = regexp.MustCompile(`^Lesson Link:\s*(.+)$`)
)

// Parser turns course source files into CourseDocument values.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a single course document, dispatching on the
// file extension.
func (p *Parser) ParseFile(path string) (*entity.CourseDocument, error) {
	var raw string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		raw = string(data)
	case ".docx":
		text, err := readDocx(path)
		if err != nil {
			return nil, fmt.Errorf("read docx document: %w", err)
		}
		raw = text
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedFormat, filepath.Ext(path))
	}

	doc, err := p.Parse(raw, fallbackTitle(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Parse parses raw document text. fallback is used as the course title when
// the header carries none.
func (p *Parser) Parse(raw, fallback string) (*entity.CourseDocument, error) {
	raw = normalize(raw)
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: document is empty", entity.ErrInvalidDocument)
	}

	lines := strings.Split(raw, "\n")
	course := entity.Course{Title: fallback}

	// header block: leading lines matching the Course metadata prefixes
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			if i > 0 {
				i++
				break
			}
			continue
		}
		if m := titleRe.FindStringSubmatch(line); m != nil {
			course.Title = strings.TrimSpace(m[1])
			continue
		}
		if m := linkRe.FindStringSubmatch(line); m != nil {
			course.Link = strings.TrimSpace(m[1])
			continue
		}
		if m := instructorRe.FindStringSubmatch(line); m != nil {
			course.Instructor = strings.TrimSpace(m[1])
			continue
		}
		break
	}

	doc := &entity.CourseDocument{Course: course}

	var overview []string
	var body []string
	current := -1 // index into doc.Lessons, -1 while in overview text

	closeLesson := func() {
		if current >= 0 {
			doc.Lessons[current].Text = strings.TrimSpace(strings.Join(body, "\n"))
			body = body[:0]
		}
	}

	for ; i < len(lines); i++ {
		line := lines[i]

		if m := lessonRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			closeLesson()

			number, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("%w: lesson number %q", entity.ErrInvalidDocument, m[1])
			}
			lesson := entity.Lesson{Number: number, Title: strings.TrimSpace(m[2])}

			// an optional link line directly after the marker
			if i+1 < len(lines) {
				if lm := lessonLinkRe.FindStringSubmatch(strings.TrimSpace(lines[i+1])); lm != nil {
					lesson.Link = strings.TrimSpace(lm[1])
					i++
				}
			}

			doc.Course.Lessons = append(doc.Course.Lessons, lesson)
			doc.Lessons = append(doc.Lessons, entity.LessonText{Number: number})
			current = len(doc.Lessons) - 1
			continue
		}

		if current < 0 {
			overview = append(overview, line)
			continue
		}
		body = append(body, line)
	}
	closeLesson()
	doc.Overview = strings.TrimSpace(strings.Join(overview, "\n"))

	return doc, nil
}

// normalize strips a UTF-8 BOM and unifies line endings.
func normalize(raw string) string {
	raw = strings.TrimPrefix(raw, "\uFEFF")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(raw, "\r", "\n")
}

func fallbackTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
