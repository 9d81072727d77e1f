package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"office-web-server/internal/domain"
	apperrors "office-web-server/pkg/errors"
)

// MockRenderer records calls and returns a canned PDF.
type MockRenderer struct {
	mu       sync.Mutex
	calls    int
	lastHTML string
	lastPage domain.PageSettings
	output   []byte
	err      error
	delay    time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func (m *MockRenderer) Name() string { return "mock" }

func (m *MockRenderer) Render(ctx context.Context, html string, page domain.PageSettings) ([]byte, error) {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	for {
		prev := m.maxActive.Load()
		if n <= prev || m.maxActive.CompareAndSwap(prev, n) {
			break
		}
	}

	m.mu.Lock()
	m.calls++
	m.lastHTML = html
	m.lastPage = page
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.output, m.err
}

func (m *MockRenderer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fixedInspector struct {
	pages int
	err   error
}

func (f fixedInspector) PageCount([]byte) (int, error) { return f.pages, f.err }

func TestPDFService_RejectsEmptyContent(t *testing.T) {
	renderer := &MockRenderer{output: []byte("%PDF-1.7")}
	svc := NewPDFService(renderer, nil, 2, time.Minute, NewMockLogger())

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.ExportPDF(context.Background(), domain.ExportRequest{Content: content})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.GetStatusCode(err))
		assert.Equal(t, "No content provided", apperrors.GetMessage(err))
	}
	assert.Equal(t, 0, renderer.Calls())
}

func TestPDFService_ExportPDF(t *testing.T) {
	renderer := &MockRenderer{output: []byte("%PDF-1.7 data")}
	svc := NewPDFService(renderer, fixedInspector{pages: 3}, 2, time.Minute, NewMockLogger())

	res, err := svc.ExportPDF(context.Background(), domain.ExportRequest{
		Content:  "<h1>Report</h1>",
		Filename: "report.html",
	})

	require.NoError(t, err)
	assert.Equal(t, "report.pdf", res.Filename)
	assert.Equal(t, []byte("%PDF-1.7 data"), res.Data)
	assert.Equal(t, 3, res.Pages)

	assert.Contains(t, renderer.lastHTML, "<body>\n<h1>Report</h1>\n</body>")
	assert.Contains(t, renderer.lastHTML, `<meta charset="UTF-8">`)
}

func TestPDFService_UsesA4WithMargins(t *testing.T) {
	renderer := &MockRenderer{output: []byte("%PDF")}
	svc := NewPDFService(renderer, nil, 1, time.Minute, NewMockLogger())

	_, err := svc.ExportPDF(context.Background(), domain.ExportRequest{Content: "<p>x</p>"})
	require.NoError(t, err)

	page := renderer.lastPage
	assert.InDelta(t, 8.27, page.PaperWidth, 1e-9)
	assert.InDelta(t, 11.69, page.PaperHeight, 1e-9)
	for _, m := range []float64{page.MarginTop, page.MarginRight, page.MarginBottom, page.MarginLeft} {
		assert.InDelta(t, 0.75, m, 1e-9)
	}
	assert.True(t, page.PrintBackground)
}

func TestPDFService_GeneratedFilename(t *testing.T) {
	svc := NewPDFService(&MockRenderer{output: []byte("%PDF")}, nil, 1, time.Minute, NewMockLogger())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	res, err := svc.ExportPDF(context.Background(), domain.ExportRequest{Content: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "document_1700000000000.pdf", res.Filename)
}

func TestPDFService_RendererFailure(t *testing.T) {
	renderer := &MockRenderer{err: errors.New("browser crashed")}
	svc := NewPDFService(renderer, nil, 1, time.Minute, NewMockLogger())

	_, err := svc.ExportPDF(context.Background(), domain.ExportRequest{Content: "<p>x</p>"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.GetStatusCode(err))
	assert.Equal(t, "Failed to generate PDF: browser crashed", apperrors.GetMessage(err))
}

func TestPDFService_UnreadableOutput(t *testing.T) {
	renderer := &MockRenderer{output: []byte("not a pdf")}
	svc := NewPDFService(renderer, fixedInspector{err: errors.New("failed to open PDF")}, 1, time.Minute, NewMockLogger())

	_, err := svc.ExportPDF(context.Background(), domain.ExportRequest{Content: "<p>x</p>"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(apperrors.GetMessage(err), "Failed to generate PDF: "))
}

func TestPDFService_CapsConcurrentRenders(t *testing.T) {
	renderer := &MockRenderer{output: []byte("%PDF"), delay: 20 * time.Millisecond}
	svc := NewPDFService(renderer, nil, 2, time.Minute, NewMockLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ExportPDF(context.Background(), domain.ExportRequest{Content: "<p>x</p>"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, renderer.Calls())
	assert.LessOrEqual(t, renderer.maxActive.Load(), int32(2))
}

func TestPDFService_TimeoutWhileRendering(t *testing.T) {
	renderer := &MockRenderer{output: []byte("%PDF"), delay: time.Second}
	svc := NewPDFService(renderer, nil, 1, 20*time.Millisecond, NewMockLogger())

	_, err := svc.ExportPDF(context.Background(), domain.ExportRequest{Content: "<p>x</p>"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCachingRenderer(t *testing.T) {
	inner := &MockRenderer{output: []byte("%PDF-cached")}
	r := NewCachingRenderer(inner, 4, NewMockLogger())
	page := domain.DefaultPageSettings()

	for i := 0; i < 3; i++ {
		out, err := r.Render(context.Background(), "<p>same</p>", page)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-cached"), out)
	}
	assert.Equal(t, 1, inner.Calls())

	_, err := r.Render(context.Background(), "<p>other</p>", page)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.Calls())
}

func TestCachingRenderer_DoesNotCacheFailures(t *testing.T) {
	inner := &MockRenderer{err: errors.New("boom")}
	r := NewCachingRenderer(inner, 4, NewMockLogger())

	_, err := r.Render(context.Background(), "<p>x</p>", domain.DefaultPageSettings())
	require.Error(t, err)
	_, err = r.Render(context.Background(), "<p>x</p>", domain.DefaultPageSettings())
	require.Error(t, err)
	assert.Equal(t, 2, inner.Calls())
}

func TestCachingRenderer_Disabled(t *testing.T) {
	inner := &MockRenderer{}
	assert.Same(t, domain.PDFRenderer(inner), NewCachingRenderer(inner, 0, NewMockLogger()))
}
