package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"office-web-server/internal/domain"
	apperrors "office-web-server/pkg/errors"
)

// mirrorTimeout bounds how long a save waits on the remote mirror.
const mirrorTimeout = 10 * time.Second

type DocumentService struct {
	repo   domain.DocumentRepository
	mirror domain.DocumentMirror
	logger domain.Logger
	now    func() time.Time
}

// NewDocumentService creates a document service. mirror may be nil.
func NewDocumentService(
	repo domain.DocumentRepository,
	mirror domain.DocumentMirror,
	logger domain.Logger,
) *DocumentService {
	return &DocumentService{
		repo:   repo,
		mirror: mirror,
		logger: logger,
		now:    time.Now,
	}
}

func (s *DocumentService) ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err.Error(), err)
	}
	return docs, nil
}

func (s *DocumentService) OpenDocument(ctx context.Context, filename string) (*domain.Document, error) {
	content, err := s.repo.Read(ctx, filename)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &domain.Document{Filename: filename, Content: content}, nil
}

// SaveDocument writes content under filename, or under a timestamp-derived
// name when filename is empty. Names without an extension get ".html".
func (s *DocumentService) SaveDocument(ctx context.Context, filename string, content string) (string, error) {
	name := domain.NormalizeFilename(filename)
	if name == "" {
		name = domain.GeneratedFilename(s.now())
	}

	path, err := s.repo.Write(ctx, name, content)
	if err != nil {
		return "", mapStoreError(err)
	}
	s.logger.Info("Document saved", "filename", name, "bytes", len(content))

	s.mirrorDocument(ctx, &domain.Document{Filename: name, Content: content})
	return path, nil
}

// mirrorDocument pushes a saved document to the remote mirror. Mirror
// failures are logged and never fail the save.
func (s *DocumentService) mirrorDocument(ctx context.Context, doc *domain.Document) {
	if s.mirror == nil {
		return
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()

	if err := s.mirror.Put(mctx, doc); err != nil {
		s.logger.Warn("Document mirror failed", "mirror", s.mirror.Name(), "filename", doc.Filename, "error", err)
		return
	}
	s.logger.Debug("Document mirrored", "mirror", s.mirror.Name(), "filename", doc.Filename)
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return apperrors.NewNotFoundError("File not found")
	case errors.Is(err, domain.ErrInvalidFilename):
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return apperrors.NewValidationError("Invalid filename", vErr.Message)
		}
		return apperrors.NewValidationError("Invalid filename")
	default:
		return apperrors.NewInternalError(err.Error(), fmt.Errorf("document store: %w", err))
	}
}
