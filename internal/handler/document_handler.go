// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"office-web-server/internal/domain"
	apperrors "office-web-server/pkg/errors"
)

// DocumentHandler handles list, open and save of stored documents.
type DocumentHandler struct {
	documentService domain.DocumentService
	logger          domain.Logger
}

func NewDocumentHandler(documentService domain.DocumentService, logger domain.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

type saveRequest struct {
	Content  *string `json:"content"`
	Filename string  `json:"filename"`
}

type saveResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
}

type listResponse struct {
	Documents []domain.DocumentInfo `json:"documents"`
}

type openResponse struct {
	Content string `json:"content"`
}

// ListDocuments handles GET /api/list.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documentService.ListDocuments(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if docs == nil {
		docs = []domain.DocumentInfo{}
	}
	writeJSON(w, http.StatusOK, listResponse{Documents: docs})
}

// OpenDocument handles GET /api/open/{filename}.
func (h *DocumentHandler) OpenDocument(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	doc, err := h.documentService.OpenDocument(r.Context(), filename)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, openResponse{Content: doc.Content})
}

// SaveDocument handles POST /api/save. Empty content is a valid document;
// a missing content field is not.
func (h *DocumentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if req.Content == nil {
		writeAppError(w, h.logger, apperrors.NewValidationError("No content provided", domain.ErrEmptyContent.Error()))
		return
	}

	path, err := h.documentService.SaveDocument(r.Context(), req.Filename, *req.Content)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Message: "Document saved", FilePath: path})
}
