package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"office-web-server/internal/config"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	port         string
	documentsDir string
}

func addServeFlags(fs *pflag.FlagSet, f *serveFlags) {
	fs.StringVarP(&f.port, "port", "p", "", "listen port (overrides PORT)")
	fs.StringVar(&f.documentsDir, "documents-dir", "", "document store directory (overrides DOCUMENTS_DIR)")
}

func newServeCommand(configPath *string) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer syncLogger(appLogger)
			cfg.ApplyOverrides(flags.port, flags.documentsDir)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, err := config.NewContainer(ctx, cfg, appLogger)
			if err != nil {
				appLogger.Error("Failed to build application", err)
				return err
			}
			return runServer(ctx, container)
		},
	}
	addServeFlags(cmd.Flags(), &flags)
	return cmd
}

func runServer(ctx context.Context, container *config.Container) error {
	appLogger := container.Logger
	cfg := container.Config

	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           container.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	container.Scheduler.Start(ctx)
	defer container.Scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Server listening",
			"address", server.Addr,
			"documents_dir", cfg.GetDocumentsDir(),
			"pdf_renderer", cfg.GetPDFRenderer(),
			"editor", cfg.GetFrontendURL(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			appLogger.Error("Server failed to start", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	appLogger.Info("Server exited")
	return nil
}
