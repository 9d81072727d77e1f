package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"office-web-server/internal/domain"
	apperrors "office-web-server/pkg/errors"
)

// maxJSONBody bounds JSON request bodies; document content travels in them.
const maxJSONBody = 50 << 20

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes {"error": message} with the given status.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeAppError maps a service error onto its status code and message.
// Server-side failures are logged.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error) {
	status := apperrors.GetStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, "status", status)
	}
	writeError(w, status, apperrors.GetMessage(err))
}

// decodeJSON reads a JSON body into v, capped at limit bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.NewTooLargeError("Request body too large")
		case errors.Is(err, io.EOF):
			return apperrors.NewValidationError("Request body is required")
		default:
			return apperrors.NewValidationError("Invalid JSON body", err.Error())
		}
	}
	return nil
}
