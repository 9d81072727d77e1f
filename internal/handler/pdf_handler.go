package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"office-web-server/internal/domain"
)

// PDFHandler handles PDF export requests.
type PDFHandler struct {
	exportService domain.ExportService
	logger        domain.Logger
}

func NewPDFHandler(exportService domain.ExportService, logger domain.Logger) *PDFHandler {
	return &PDFHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// ExportPDF handles POST /api/export/pdf and streams the PDF as an attachment.
func (h *PDFHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	res, err := h.exportService.ExportPDF(r.Context(), req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	if res.Pages > 0 {
		w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		h.logger.Warn("Failed to write PDF response", "filename", res.Filename, "error", err)
	}
}
