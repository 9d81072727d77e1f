package repository

import (
	"context"
	"fmt"
	"strings"

	"office-web-server/internal/domain"
)

// NewDocumentMirror builds the mirror selected by MIRROR_BACKEND.
// It returns nil when mirroring is disabled.
func NewDocumentMirror(ctx context.Context, config domain.Config, logger domain.Logger) (domain.DocumentMirror, error) {
	switch backend := strings.ToLower(strings.TrimSpace(config.GetMirrorBackend())); backend {
	case "", "none":
		return nil, nil
	case "supabase":
		m, err := NewSupabaseMirror(config, logger)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "s3":
		m, err := NewS3Mirror(ctx, config.GetS3Config())
		if err != nil {
			return nil, err
		}
		logger.Info("S3 mirror initialized", "bucket", config.GetS3Config().Bucket)
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported mirror backend: %s", backend)
	}
}
