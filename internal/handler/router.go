package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"office-web-server/internal/domain"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Info       *InfoHandler
	Documents  *DocumentHandler
	Conversion *ConversionHandler
	PDF        *PDFHandler
	// App serves the editor UI under /app/. Optional.
	App http.Handler
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(h Handlers, logger domain.Logger) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", h.Info.Info).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Info.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/convert", h.Conversion.Convert).Methods(http.MethodPost)
	api.HandleFunc("/upload", h.Conversion.Upload).Methods(http.MethodPost)
	api.HandleFunc("/save", h.Documents.SaveDocument).Methods(http.MethodPost)
	api.HandleFunc("/list", h.Documents.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/open/{filename}", h.Documents.OpenDocument).Methods(http.MethodGet)
	api.HandleFunc("/export/pdf", h.PDF.ExportPDF).Methods(http.MethodPost)

	if h.App != nil {
		router.Handle("/app", http.RedirectHandler("/app/", http.StatusMovedPermanently))
		router.PathPrefix("/app/").Handler(http.StripPrefix("/app", h.App))
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// CORS is fully open; no credentials are involved.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Content-Disposition",
			"Content-Length",
			"X-Page-Count",
		},
		MaxAge: 300,
	})

	return c.Handler(Recoverer(logger)(RequestLogger(logger)(router)))
}
