package domain

import "errors"

// Domain errors
var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrInvalidFilename    = errors.New("invalid filename")
	ErrEmptyContent       = errors.New("no content provided")
	ErrUnsupportedUpload  = errors.New("unsupported upload type")
	ErrInvalidFormat      = errors.New("invalid output format")
	ErrPathOutsideRoot    = errors.New("path escapes conversion root")
	ErrConversionNoOutput = errors.New("conversion produced no output")
	ErrBrowserNotFound    = errors.New("chrome or chromium not found")
	ErrArchiveTooLarge    = errors.New("archive content exceeds size limit")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
