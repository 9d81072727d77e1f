package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultMaxFileSize int64 = 50 * 1024 * 1024

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "SERVER_PORT", "DOCUMENTS_DIR", "UPLOAD_PATH", "MAX_FILE_SIZE",
		"LOG_LEVEL", "SOFFICE_BIN", "CONVERT_ROOT", "CONVERT_TIMEOUT", "PDF_RENDERER",
		"CHROME_PATH", "BROWSER_NO_SANDBOX", "BROWSER_AUTO_DOWNLOAD", "EXPORT_TIMEOUT",
		"MAX_CONCURRENT_EXPORTS", "EXPORT_CACHE_SIZE", "MIRROR_BACKEND", "SUPABASE_URL",
		"SUPABASE_ANON_KEY", "SUPABASE_TABLE", "S3_BUCKET", "UPLOAD_MAX_AGE", "UPLOAD_SWEEP_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "5000" {
		t.Fatalf("expected default server port 5000, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetDocumentsDir() != "./documents" {
		t.Fatalf("expected default documents dir, got %s", cfg.GetDocumentsDir())
	}
	if cfg.GetConvertRoot() != cfg.GetDocumentsDir() {
		t.Fatalf("expected convert root to default to documents dir, got %s", cfg.GetConvertRoot())
	}
	if cfg.GetPDFRenderer() != "chromedp" {
		t.Fatalf("expected chromedp renderer, got %s", cfg.GetPDFRenderer())
	}
	if cfg.GetMaxConcurrentExports() != 2 {
		t.Fatalf("expected 2 concurrent exports, got %d", cfg.GetMaxConcurrentExports())
	}
	if cfg.GetMirrorBackend() != "none" {
		t.Fatalf("expected no mirror, got %s", cfg.GetMirrorBackend())
	}
	if !cfg.GetBrowserNoSandbox() {
		t.Fatalf("expected no-sandbox by default")
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DOCUMENTS_DIR", "/srv/docs")
	t.Setenv("CONVERT_ROOT", ConvertRootUnrestricted)
	t.Setenv("EXPORT_TIMEOUT", "5s")
	t.Setenv("PDF_RENDERER", "ROD")
	t.Setenv("BROWSER_NO_SANDBOX", "false")
	t.Setenv("MIRROR_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "docs")

	cfg := NewConfig()

	assert.Equal(t, "9090", cfg.GetServerPort())
	assert.Equal(t, int64(12345), cfg.GetMaxFileSize())
	assert.Equal(t, "debug", cfg.GetLogLevel())
	assert.Equal(t, "/srv/docs", cfg.GetDocumentsDir())
	assert.Equal(t, ConvertRootUnrestricted, cfg.GetConvertRoot())
	assert.Equal(t, 5*time.Second, cfg.GetExportTimeout())
	assert.Equal(t, "rod", cfg.GetPDFRenderer())
	assert.False(t, cfg.GetBrowserNoSandbox())
	assert.Equal(t, "s3", cfg.GetMirrorBackend())
	assert.Equal(t, "docs", cfg.GetS3Config().Bucket)
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("UPLOAD_MAX_AGE", "soon")
	t.Setenv("MAX_CONCURRENT_EXPORTS", "0")

	cfg := NewConfig()

	assert.Equal(t, "9091", cfg.GetServerPort())
	assert.Equal(t, defaultMaxFileSize, cfg.GetMaxFileSize())
	assert.Equal(t, time.Hour, cfg.GetUploadMaxAge())
	assert.Equal(t, 1, cfg.GetMaxConcurrentExports())
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `port: "6000"
documents_dir: /data/documents
export_cache_size: 0
mirror_backend: supabase
supabase_url: http://localhost:54321
s3:
  bucket: archive
  prefix: docs/
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.GetServerPort())
	assert.Equal(t, "/data/documents", cfg.GetDocumentsDir())
	assert.Equal(t, "/data/documents", cfg.GetConvertRoot())
	assert.Equal(t, 0, cfg.GetExportCacheSize())
	assert.Equal(t, "supabase", cfg.GetMirrorBackend())
	assert.Equal(t, "archive", cfg.GetS3Config().Bucket)
	// env wins over the file
	assert.Equal(t, "warn", cfg.GetLogLevel())
}

func TestLoadConfig_UnknownField(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colour: blue\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
