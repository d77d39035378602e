package validator

import (
	"errors"
	"testing"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

func TestSupportedDocument(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"docs/course1_script.txt", true},
		{"docs/outline.md", true},
		{"docs/slides.docx", true},
		{"docs/SCRIPT.TXT", true},
		{"docs/recording.mp3", false},
		{"docs/notes.pdf", false},
		{"docs/README", false},
	}

	for _, tt := range tests {
		if got := SupportedDocument(tt.path); got != tt.want {
			t.Errorf("SupportedDocument(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery(&entity.QueryRequest{Query: "What is MCP?"}); err != nil {
		t.Errorf("valid query rejected: %v", err)
	}

	err := ValidateQuery(&entity.QueryRequest{Query: "   "})
	if err == nil {
		t.Fatal("blank query accepted")
	}
	if !errors.Is(err, entity.ErrMissingField) {
		t.Errorf("error = %v, want ErrMissingField", err)
	}
}
