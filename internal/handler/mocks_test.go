package handler

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"office-web-server/internal/domain"
	apperrors "office-web-server/pkg/errors"
)

// MockHandlerLogger discards everything.
type MockHandlerLogger struct{}

func NewMockHandlerLogger() domain.Logger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})             {}
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})             {}

// MockDocumentService keeps documents in memory.
type MockDocumentService struct {
	mu        sync.Mutex
	documents map[string]string
}

func NewMockDocumentService() *MockDocumentService {
	return &MockDocumentService{documents: make(map[string]string)}
}

func (m *MockDocumentService) ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []domain.DocumentInfo
	for name, content := range m.documents {
		docs = append(docs, domain.DocumentInfo{Filename: name, Size: int64(len(content)), ModifiedAt: time.Unix(0, 0).UTC()})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

func (m *MockDocumentService) OpenDocument(ctx context.Context, filename string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := domain.ValidateFilename(filename); err != nil {
		return nil, apperrors.NewValidationError("Invalid filename")
	}
	content, ok := m.documents[filename]
	if !ok {
		return nil, apperrors.NewNotFoundError("File not found")
	}
	return &domain.Document{Filename: filename, Content: content}, nil
}

func (m *MockDocumentService) SaveDocument(ctx context.Context, filename string, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := domain.NormalizeFilename(filename)
	if name == "" {
		name = "document_1.html"
	}
	if err := domain.ValidateFilename(name); err != nil {
		return "", apperrors.NewValidationError("Invalid filename")
	}
	m.documents[name] = content
	return "/data/documents/" + name, nil
}

// MockConversionService returns a fixed result or error.
type MockConversionService struct {
	result    string
	err       error
	available bool
	last      domain.ConversionRequest
}

func (m *MockConversionService) Convert(ctx context.Context, req domain.ConversionRequest) (string, error) {
	m.last = req
	return m.result, m.err
}

func (m *MockConversionService) Available() bool { return m.available }

// MockUploadService reads the whole upload and echoes it inside a paragraph.
type MockUploadService struct {
	filename string
	err      error
}

func (m *MockUploadService) ConvertUpload(ctx context.Context, upload domain.Upload) (string, error) {
	m.filename = upload.Filename
	b, err := io.ReadAll(upload.Reader)
	if err != nil {
		return "", apperrors.NewTooLargeError("File too large")
	}
	if m.err != nil {
		return "", m.err
	}
	return "<p>" + string(b) + "</p>", nil
}

// MockExportService returns a canned PDF.
type MockExportService struct {
	calls int
	err   error
}

func (m *MockExportService) ExportPDF(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ExportResult{
		Filename: domain.PDFFilename(req.Filename, time.UnixMilli(42)),
		Data:     []byte("%PDF-1.7 test"),
		Pages:    1,
	}, nil
}
