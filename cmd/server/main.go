package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"office-web-server/internal/config"
	"office-web-server/internal/domain"
	"office-web-server/pkg/logger"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: .env file could not be loaded: %v", err)
	}

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "office-web-server",
		Short:        "HTML document editor backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")

	serve := newServeCommand(&configPath)
	root.AddCommand(serve, newDoctorCommand(&configPath), newExportCommand(&configPath))

	// Running without a subcommand serves.
	root.Flags().AddFlagSet(serve.Flags())
	root.RunE = serve.RunE
	return root
}

// loadConfig reads configuration and builds the process logger.
func loadConfig(path string) (*config.AppConfig, domain.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	// maxprocs.Set only fails on an invalid GOMAXPROCS value; the runtime
	// default applies then.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		appLogger.Debug(fmt.Sprintf(format, args...))
	}))
	return cfg, appLogger, nil
}

func syncLogger(l domain.Logger) {
	if s, ok := l.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
