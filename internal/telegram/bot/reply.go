package bot

import (
	"strings"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

// Telegram rejects messages longer than this.
const maxMessageLength = 4096

// formatReply renders an answer and its deduplicated sources as one message.
// The orchestrator can report the same chunk from several tool rounds.
func formatReply(result *entity.QueryResult) string {
	if len(result.Sources) == 0 {
		return truncate(result.Answer, maxMessageLength)
	}

	var sb strings.Builder
	sb.WriteString(result.Answer)
	sb.WriteString("\n\nSources:")

	seen := make(map[string]struct{}, len(result.Sources))
	for _, s := range result.Sources {
		key := s.Text + "\x00" + s.Link
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		sb.WriteString("\n• ")
		sb.WriteString(s.Text)
		if s.Link != "" {
			sb.WriteString(" (")
			sb.WriteString(s.Link)
			sb.WriteString(")")
		}
	}

	return truncate(sb.String(), maxMessageLength)
}

// truncate cuts text to at most limit runes.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
