package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DocumentExtension is the only extension the store lists and accepts.
const DocumentExtension = ".html"

// maxFilenameLength bounds a stored document name.
const maxFilenameLength = 200

var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._ -]*$`)

// Document is a stored HTML document.
type Document struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// DocumentInfo describes a stored document without its content.
type DocumentInfo struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	List(ctx context.Context) ([]DocumentInfo, error)
	Read(ctx context.Context, filename string) (string, error)
	Write(ctx context.Context, filename string, content string) (string, error)
}

// DocumentMirror receives a copy of every saved document.
type DocumentMirror interface {
	Name() string
	Put(ctx context.Context, doc *Document) error
}

// DocumentService defines the use-case operations for documents.
type DocumentService interface {
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	OpenDocument(ctx context.Context, filename string) (*Document, error)
	SaveDocument(ctx context.Context, filename string, content string) (string, error)
}

// HasDocumentExtension reports whether name ends in the document extension,
// ignoring case. Save, open and list all go through it.
func HasDocumentExtension(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), DocumentExtension)
}

// ValidateFilename checks that name is an opaque document identifier that
// is safe to join onto the store directory.
func ValidateFilename(name string) error {
	if name == "" {
		return &ValidationError{Field: "filename", Message: "filename is required"}
	}
	if len(name) > maxFilenameLength {
		return &ValidationError{Field: "filename", Message: "filename is too long"}
	}
	if strings.Contains(name, "..") {
		return &ValidationError{Field: "filename", Message: "filename must not contain '..'"}
	}
	if !filenamePattern.MatchString(name) {
		return &ValidationError{Field: "filename", Message: "filename contains unsupported characters"}
	}
	if !HasDocumentExtension(name) {
		return &ValidationError{Field: "filename", Message: "filename must end with " + DocumentExtension}
	}
	return nil
}

// NormalizeFilename trims the name and appends the document extension when
// the name has none. The result still has to pass ValidateFilename.
func NormalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	if !HasDocumentExtension(name) {
		name += DocumentExtension
	}
	return name
}

// GeneratedFilename returns the timestamp-derived name used when a save
// request carries no filename.
func GeneratedFilename(now time.Time) string {
	return fmt.Sprintf("document_%d%s", now.UnixMilli(), DocumentExtension)
}
