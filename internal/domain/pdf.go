package domain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Paper and margin sizes for exported documents, in inches.
const (
	A4WidthInches  = 8.27
	A4HeightInches = 11.69
	MarginInches   = 0.75
)

// PageSettings describes the printed page of an export.
type PageSettings struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginRight     float64
	MarginBottom    float64
	MarginLeft      float64
	PrintBackground bool
}

// DefaultPageSettings returns A4 with 0.75in margins on every side.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		PaperWidth:      A4WidthInches,
		PaperHeight:     A4HeightInches,
		MarginTop:       MarginInches,
		MarginRight:     MarginInches,
		MarginBottom:    MarginInches,
		MarginLeft:      MarginInches,
		PrintBackground: true,
	}
}

// ExportRequest is the payload of a PDF export.
type ExportRequest struct {
	Content  string `json:"content"`
	Filename string `json:"filename,omitempty"`
}

// ExportResult is a rendered PDF and its download name.
type ExportResult struct {
	Filename string
	Data     []byte
	Pages    int
}

// PDFRenderer rasterizes a complete HTML page into a PDF.
// Implementations launch and tear down their own browser.
type PDFRenderer interface {
	Name() string
	Render(ctx context.Context, html string, page PageSettings) ([]byte, error)
}

// PDFInspector reads back a rendered PDF.
type PDFInspector interface {
	PageCount(data []byte) (int, error)
}

// ExportService exports HTML content as PDF.
type ExportService interface {
	ExportPDF(ctx context.Context, req ExportRequest) (*ExportResult, error)
}

// PDFFilename derives the attachment name for an export: the requested name
// with its extension replaced by .pdf, or a timestamp-derived one.
func PDFFilename(requested string, now time.Time) string {
	name := strings.TrimSpace(filepath.Base(requested))
	if requested == "" || name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Sprintf("document_%d.pdf", now.UnixMilli())
	}
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '\r' || r == '\n' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".pdf"
}
