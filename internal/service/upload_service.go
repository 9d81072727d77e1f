package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"office-web-server/internal/domain"
	apperrors "office-web-server/pkg/errors"
)

const uploadFailedMessage = "Failed to convert uploaded document"

// UploadTempPrefix marks files owned by the upload service; the sweeper
// only removes files carrying it.
const UploadTempPrefix = "upload-"

// UploadService stages uploads in a temp file and converts them to HTML
// with the converter registered for the file's extension.
type UploadService struct {
	dir        string
	converters map[string]domain.HTMLConverter
	logger     domain.Logger
}

func NewUploadService(dir string, logger domain.Logger, converters ...domain.HTMLConverter) *UploadService {
	byExt := make(map[string]domain.HTMLConverter)
	for _, c := range converters {
		for _, ext := range c.Extensions() {
			byExt[strings.ToLower(ext)] = c
		}
	}
	return &UploadService{
		dir:        dir,
		converters: byExt,
		logger:     logger,
	}
}

// DefaultConverters returns the converters for every supported upload type.
// Archive formats refuse to expand past maxExpanded bytes.
func DefaultConverters(maxExpanded int64) []domain.HTMLConverter {
	return []domain.HTMLConverter{
		NewDocxConverter(maxExpanded),
		NewMarkdownConverter(),
		NewTextConverter(),
		NewHTMLFileConverter(),
		NewEPUBConverter(maxExpanded),
	}
}

// SupportedExtensions lists the accepted upload extensions, sorted.
func (s *UploadService) SupportedExtensions() []string {
	exts := make([]string, 0, len(s.converters))
	for ext := range s.converters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ConvertUpload converts the upload and returns the HTML fragment. The
// staged temp file is removed before returning on every path.
func (s *UploadService) ConvertUpload(ctx context.Context, upload domain.Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(upload.Filename)))
	converter, ok := s.converters[ext]
	if !ok {
		err := fmt.Errorf("%w: %q", domain.ErrUnsupportedUpload, ext)
		s.logger.Warn("Rejected upload", "filename", upload.Filename, "error", err)
		return "", apperrors.NewConversionError(uploadFailedMessage, err)
	}

	path, size, err := s.stage(upload, ext)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", apperrors.NewTooLargeError("File too large")
		}
		return "", apperrors.NewInternalError("Failed to store upload", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove staged upload", "path", path, "error", err)
		}
	}()

	start := time.Now()
	html, err := converter.ConvertFile(ctx, path)
	if err != nil {
		s.logger.Error("Upload conversion failed", err, "filename", upload.Filename)
		return "", apperrors.NewConversionError(uploadFailedMessage, err)
	}

	s.logger.Info("Upload converted", "filename", upload.Filename, "bytes", size, "duration", time.Since(start))
	return html, nil
}

// stage copies the upload into a fresh temp file and returns its path and size.
func (s *UploadService) stage(upload domain.Upload, ext string) (string, int64, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", 0, err
	}
	f, err := os.CreateTemp(s.dir, UploadTempPrefix+"*"+ext)
	if err != nil {
		return "", 0, err
	}

	n, copyErr := io.Copy(f, upload.Reader)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(f.Name())
		return "", 0, err
	}
	return f.Name(), n, nil
}
