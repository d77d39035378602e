package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

func TestFormatReplyAnswerOnly(t *testing.T) {
	result := &entity.QueryResult{Answer: "MCP is the Model Context Protocol."}

	got := formatReply(result)

	if got != result.Answer {
		t.Errorf("reply = %q, want answer unchanged", got)
	}
	if strings.Contains(got, "Sources:") {
		t.Errorf("reply %q should not mention sources", got)
	}
}

func TestFormatReplyRendersSources(t *testing.T) {
	result := &entity.QueryResult{
		Answer: "It covers tool calling.",
		Sources: []entity.Source{
			{Text: "MCP Course - Lesson 5", Link: "https://example.com/lesson5"},
			{Text: "MCP Course - Lesson 6"},
		},
	}

	got := formatReply(result)

	if !strings.HasPrefix(got, "It covers tool calling.\n\nSources:") {
		t.Fatalf("reply = %q, want answer followed by sources header", got)
	}
	if !strings.Contains(got, "• MCP Course - Lesson 5 (https://example.com/lesson5)") {
		t.Errorf("reply %q missing linked source", got)
	}
	if !strings.Contains(got, "• MCP Course - Lesson 6") {
		t.Errorf("reply %q missing unlinked source", got)
	}
	if strings.Contains(got, "Lesson 6 (") {
		t.Errorf("reply %q renders a link for a source without one", got)
	}
}

func TestFormatReplyDeduplicatesSources(t *testing.T) {
	result := &entity.QueryResult{
		Answer: "Answer.",
		Sources: []entity.Source{
			{Text: "Course A - Lesson 1", Link: "https://example.com/a1"},
			{Text: "Course A - Lesson 1", Link: "https://example.com/a1"},
			{Text: "Course A - Lesson 1"},
		},
	}

	got := formatReply(result)

	if n := strings.Count(got, "• "); n != 2 {
		t.Errorf("reply has %d bullets, want 2 after dedup:\n%s", n, got)
	}
}

func TestFormatReplyTruncatesLongAnswers(t *testing.T) {
	result := &entity.QueryResult{Answer: strings.Repeat("я", maxMessageLength+100)}

	got := formatReply(result)

	if n := utf8.RuneCountInString(got); n != maxMessageLength {
		t.Errorf("reply length = %d runes, want %d", n, maxMessageLength)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated reply should end with ellipsis")
	}
}

func TestTruncateKeepsShortText(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q, want unchanged", got)
	}
}
