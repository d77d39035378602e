package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

// AllowedExtensions lists the course document formats the parser understands.
var AllowedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".docx": true,
}

// SupportedDocument reports whether a file can be ingested as a course.
func SupportedDocument(path string) bool {
	return AllowedExtensions[strings.ToLower(filepath.Ext(path))]
}

// ValidateQuery validates a query request before it reaches the pipeline
func ValidateQuery(req *entity.QueryRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query", entity.ErrMissingField)
	}
	return nil
}
