package service

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"office-web-server/internal/domain"
)

// PDFProcessor reads rendered PDFs back with MuPDF to confirm the
// renderer produced a document that actually opens.
type PDFProcessor struct {
	logger domain.Logger
}

func NewPDFProcessor(logger domain.Logger) *PDFProcessor {
	return &PDFProcessor{logger: logger}
}

// PDFMetadata summarizes a rendered PDF.
type PDFMetadata struct {
	PageCount int    `json:"page_count"`
	Title     string `json:"title,omitempty"`
	Producer  string `json:"producer,omitempty"`
}

// PageCount returns the number of pages in data.
func (p *PDFProcessor) PageCount(data []byte) (int, error) {
	meta, err := p.Inspect(data)
	if err != nil {
		return 0, err
	}
	return meta.PageCount, nil
}

// Inspect opens data and returns its page count and document info.
func (p *PDFProcessor) Inspect(data []byte) (PDFMetadata, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return PDFMetadata{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	info := doc.Metadata()
	meta := PDFMetadata{
		PageCount: doc.NumPage(),
		Title:     strings.TrimSpace(info["title"]),
		Producer:  strings.TrimSpace(info["producer"]),
	}
	if meta.PageCount == 0 {
		return meta, fmt.Errorf("PDF has no pages")
	}

	p.logger.Debug("PDF inspected", "pages", meta.PageCount, "producer", meta.Producer)
	return meta, nil
}
