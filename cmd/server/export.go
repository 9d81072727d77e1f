package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"office-web-server/internal/config"
	"office-web-server/internal/domain"
)

func newExportCommand(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <filename>",
		Short: "Render a stored document (or an HTML file, or - for stdin) to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer syncLogger(appLogger)

			container, err := config.NewContainer(cmd.Context(), cfg, appLogger)
			if err != nil {
				return err
			}

			name := args[0]
			content, err := loadExportSource(cmd.Context(), container.DocumentService, cmd.InOrStdin(), name)
			if err != nil {
				return err
			}

			req := domain.ExportRequest{Content: content}
			if name != "-" {
				req.Filename = name
			}
			result, err := container.ExportService.ExportPDF(cmd.Context(), req)
			if err != nil {
				return err
			}

			if output == "" {
				output = result.Filename
			}
			if err := os.WriteFile(output, result.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages)\n", output, result.Pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF path (default: input name with .pdf)")
	return cmd
}

type documentOpener interface {
	OpenDocument(ctx context.Context, filename string) (*domain.Document, error)
}

// loadExportSource resolves name against the document store first, then
// as a file path. "-" reads stdin.
func loadExportSource(ctx context.Context, store documentOpener, stdin io.Reader, name string) (string, error) {
	if name == "-" {
		return readInput(stdin, name)
	}
	if doc, err := store.OpenDocument(ctx, name); err == nil {
		return doc.Content, nil
	}
	return readInput(stdin, name)
}

// readInput reads the HTML source; "-" reads stdin.
func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(filepath.Clean(name))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(b), nil
}
