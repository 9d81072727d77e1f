package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"office-web-server/internal/domain"
	apperrors "office-web-server/pkg/errors"
)

// PDFService exports editor content as PDF through a browser renderer.
// At most maxConcurrent browsers run at once; further exports wait.
type PDFService struct {
	renderer  domain.PDFRenderer
	inspector domain.PDFInspector
	sem       *semaphore.Weighted
	timeout   time.Duration
	page      domain.PageSettings
	logger    domain.Logger
	now       func() time.Time
}

// NewPDFService creates the export service. inspector may be nil.
func NewPDFService(
	renderer domain.PDFRenderer,
	inspector domain.PDFInspector,
	maxConcurrent int,
	timeout time.Duration,
	logger domain.Logger,
) *PDFService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PDFService{
		renderer:  renderer,
		inspector: inspector,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		timeout:   timeout,
		page:      domain.DefaultPageSettings(),
		logger:    logger,
		now:       time.Now,
	}
}

// ExportPDF renders req.Content as an A4 PDF with 0.75in margins.
func (s *PDFService) ExportPDF(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.NewValidationError("No content provided")
	}
	filename := domain.PDFFilename(req.Filename, s.now())

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, exportError(err)
	}
	defer s.sem.Release(1)

	start := time.Now()
	data, err := s.renderer.Render(ctx, WrapPrintDocument(req.Content), s.page)
	if err != nil {
		s.logger.Error("PDF export failed", err, "renderer", s.renderer.Name(), "filename", filename)
		return nil, exportError(err)
	}

	result := &domain.ExportResult{Filename: filename, Data: data}
	if s.inspector != nil {
		pages, err := s.inspector.PageCount(data)
		if err != nil {
			s.logger.Error("Rendered PDF is unreadable", err, "renderer", s.renderer.Name())
			return nil, exportError(err)
		}
		result.Pages = pages
	}

	s.logger.Info("PDF exported",
		"renderer", s.renderer.Name(),
		"filename", filename,
		"bytes", len(data),
		"pages", result.Pages,
		"duration", time.Since(start),
	)
	return result, nil
}

func exportError(err error) error {
	return apperrors.NewConversionError("Failed to generate PDF: "+err.Error(), err)
}
