package entity

import "errors"

// Domain errors
var (
	// Catalog errors
	ErrCourseNotFound = errors.New("course not found")

	// Ingestion errors
	ErrInvalidDocument   = errors.New("invalid course document")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrIndexWrite        = errors.New("vector index write failed")

	// Generation errors
	ErrGenerationFailed = errors.New("response generation failed")

	// Tool errors
	ErrUnknownTool = errors.New("unknown tool")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
