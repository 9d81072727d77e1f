package config

import (
	"context"
	"fmt"
	"net/http"

	"office-web-server/internal/domain"
	"office-web-server/internal/handler"
	"office-web-server/internal/infra/browser"
	"office-web-server/internal/repository"
	"office-web-server/internal/schedule"
	"office-web-server/internal/service"
	"office-web-server/internal/web"
)

// Container holds all application dependencies
type Container struct {
	Config             domain.Config
	Logger             domain.Logger
	DocumentRepository domain.DocumentRepository
	DocumentMirror     domain.DocumentMirror
	DocumentService    *service.DocumentService
	ConversionService  *service.ConversionService
	UploadService      *service.UploadService
	PDFProcessor       *service.PDFProcessor
	ExportService      *service.PDFService
	Scheduler          *schedule.CronScheduler
}

// NewContainer wires repositories, services and background jobs from config.
func NewContainer(ctx context.Context, cfg domain.Config, logger domain.Logger) (*Container, error) {
	documentRepo := repository.NewFileDocumentRepository(cfg.GetDocumentsDir(), logger)

	mirror, err := repository.NewDocumentMirror(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("document mirror: %w", err)
	}

	renderer, err := browser.NewRenderer(cfg.GetPDFRenderer(), BrowserOptions(cfg), logger)
	if err != nil {
		return nil, err
	}
	renderer = service.NewCachingRenderer(renderer, cfg.GetExportCacheSize(), logger)
	processor := service.NewPDFProcessor(logger)

	scheduler := schedule.NewCronScheduler(logger)
	sweep := schedule.NewUploadSweepJob(cfg.GetUploadPath(), service.UploadTempPrefix, cfg.GetUploadMaxAge(), logger)
	if err := scheduler.AddJob(sweep, cfg.GetUploadSweepSchedule()); err != nil {
		return nil, fmt.Errorf("upload sweep schedule: %w", err)
	}

	return &Container{
		Config:             cfg,
		Logger:             logger,
		DocumentRepository: documentRepo,
		DocumentMirror:     mirror,
		DocumentService:    service.NewDocumentService(documentRepo, mirror, logger),
		ConversionService: service.NewConversionService(
			cfg.GetSofficeBin(),
			cfg.GetConvertRoot(),
			cfg.GetConvertTimeout(),
			service.ExecRunner,
			logger,
		),
		UploadService: service.NewUploadService(
			cfg.GetUploadPath(),
			logger,
			service.DefaultConverters(cfg.GetMaxFileSize())...,
		),
		PDFProcessor:  processor,
		ExportService: service.NewPDFService(
			renderer,
			processor,
			cfg.GetMaxConcurrentExports(),
			cfg.GetExportTimeout(),
			logger,
		),
		Scheduler: scheduler,
	}, nil
}

// BrowserOptions maps config onto renderer options.
func BrowserOptions(cfg domain.Config) browser.Options {
	return browser.Options{
		ChromePath:   cfg.GetChromePath(),
		NoSandbox:    cfg.GetBrowserNoSandbox(),
		AutoDownload: cfg.GetBrowserAutoDownload(),
	}
}

// BrowserAvailable reports whether a browser is installed or configured.
// It never downloads one.
func (c *Container) BrowserAvailable() bool {
	opts := BrowserOptions(c.Config)
	opts.AutoDownload = false
	_, err := browser.Resolve(opts)
	return err == nil
}

// Router builds the HTTP handler with the API, the info endpoints and the
// embedded editor.
func (c *Container) Router() http.Handler {
	checks := map[string]handler.DependencyCheck{
		"soffice": c.ConversionService.Available,
		"browser": c.BrowserAvailable,
	}
	return handler.NewRouter(handler.Handlers{
		Info:      handler.NewInfoHandler(c.Config.GetFrontendURL(), checks),
		Documents: handler.NewDocumentHandler(c.DocumentService, c.Logger),
		Conversion: handler.NewConversionHandler(
			c.ConversionService,
			c.UploadService,
			c.Config.GetMaxFileSize(),
			c.Logger,
		),
		PDF: handler.NewPDFHandler(c.ExportService, c.Logger),
		App: web.Handler(),
	}, c.Logger)
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
