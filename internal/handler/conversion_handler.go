package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"office-web-server/internal/domain"
	apperrors "office-web-server/pkg/errors"
)

// multipartOverhead is allowed on top of the file size for the multipart
// envelope and any extra form fields.
const multipartOverhead = 1 << 20

// ConversionHandler handles the office-suite conversion and upload endpoints.
type ConversionHandler struct {
	conversionService domain.ConversionService
	uploadService     domain.UploadService
	maxFileSize       int64
	logger            domain.Logger
}

func NewConversionHandler(
	conversionService domain.ConversionService,
	uploadService domain.UploadService,
	maxFileSize int64,
	logger domain.Logger,
) *ConversionHandler {
	return &ConversionHandler{
		conversionService: conversionService,
		uploadService:     uploadService,
		maxFileSize:       maxFileSize,
		logger:            logger,
	}
}

type convertResponse struct {
	Message string `json:"message"`
	Result  string `json:"result"`
}

type uploadResponse struct {
	Content string `json:"content"`
}

// Convert handles POST /api/convert.
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req domain.ConversionRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	result, err := h.conversionService.Convert(r.Context(), req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{Message: "Conversion successful", Result: result})
}

// Upload handles POST /api/upload. The file part is streamed straight to
// the upload service; nothing is buffered in memory or in os.TempDir.
func (h *ConversionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeAppError(w, h.logger, apperrors.NewTooLargeError("File too large"))
				return
			}
			writeError(w, http.StatusBadRequest, "Malformed multipart body")
			return
		}
		if part.FormName() != "file" || strings.TrimSpace(part.FileName()) == "" {
			part.Close()
			continue
		}

		content, err := h.uploadService.ConvertUpload(r.Context(), domain.Upload{
			Filename: part.FileName(),
			Reader:   &fileLimitReader{r: part, limit: h.maxFileSize},
		})
		part.Close()
		if err != nil {
			writeAppError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, uploadResponse{Content: content})
		return
	}

	writeError(w, http.StatusBadRequest, "No file uploaded")
}

// fileLimitReader fails with *http.MaxBytesError once more than limit bytes
// have been read, so an oversized file part maps to 413 like an oversized body.
type fileLimitReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (l *fileLimitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.limit {
		return n, &http.MaxBytesError{Limit: l.limit}
	}
	return n, err
}
