package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"office-web-server/internal/domain"
)

// ConvertRootUnrestricted disables path confinement for the convert endpoint.
const ConvertRootUnrestricted = domain.ConvertRootUnrestricted

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort   string `yaml:"port"`
	FrontendURL  string `yaml:"frontend_url"`
	DocumentsDir string `yaml:"documents_dir"`
	UploadPath   string `yaml:"upload_path"`
	MaxFileSize  int64  `yaml:"max_file_size"`
	LogLevel     string `yaml:"log_level"`

	SofficeBin     string        `yaml:"soffice_bin"`
	ConvertRoot    string        `yaml:"convert_root"`
	ConvertTimeout time.Duration `yaml:"convert_timeout"`

	PDFRenderer          string        `yaml:"pdf_renderer"`
	ChromePath           string        `yaml:"chrome_path"`
	BrowserNoSandbox     bool          `yaml:"browser_no_sandbox"`
	BrowserAutoDownload  bool          `yaml:"browser_auto_download"`
	ExportTimeout        time.Duration `yaml:"export_timeout"`
	MaxConcurrentExports int           `yaml:"max_concurrent_exports"`
	ExportCacheSize      int           `yaml:"export_cache_size"`

	MirrorBackend string          `yaml:"mirror_backend"`
	SupabaseURL   string          `yaml:"supabase_url"`
	SupabaseKey   string          `yaml:"supabase_key"`
	SupabaseTable string          `yaml:"supabase_table"`
	S3            domain.S3Config `yaml:"s3"`

	UploadSweepSchedule string        `yaml:"upload_sweep_schedule"`
	UploadMaxAge        time.Duration `yaml:"upload_max_age"`
}

// defaultConfig returns the built-in settings
func defaultConfig() *AppConfig {
	return &AppConfig{
		ServerPort:           "5000",
		FrontendURL:          "http://localhost:5000/app/",
		DocumentsDir:         "./documents",
		UploadPath:           "./uploads",
		MaxFileSize:          50 * 1024 * 1024, // 50MB default
		LogLevel:             "info",
		SofficeBin:           "soffice",
		ConvertTimeout:       2 * time.Minute,
		PDFRenderer:          "chromedp",
		BrowserNoSandbox:     true,
		ExportTimeout:        60 * time.Second,
		MaxConcurrentExports: 2,
		ExportCacheSize:      16,
		MirrorBackend:        "none",
		SupabaseTable:        "documents",
		UploadSweepSchedule:  "*/15 * * * *",
		UploadMaxAge:         time.Hour,
	}
}

// NewConfig creates a new configuration instance from CONFIG_FILE (if set)
// and the environment. A config file that cannot be read falls back to the
// defaults; use LoadConfig to surface that error.
func NewConfig() domain.Config {
	cfg, err := LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		cfg = defaultConfig()
		cfg.applyEnv()
		cfg.finalize()
	}
	return cfg
}

// LoadConfig reads an optional YAML file, then applies environment overrides.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.finalize()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	// PaaS platforms provide the listening port via PORT.
	// Keep SERVER_PORT for local/dev compatibility.
	c.ServerPort = getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", c.ServerPort))
	c.FrontendURL = getEnvOrDefault("FRONTEND_URL", c.FrontendURL)
	c.DocumentsDir = getEnvOrDefault("DOCUMENTS_DIR", c.DocumentsDir)
	c.UploadPath = getEnvOrDefault("UPLOAD_PATH", c.UploadPath)
	c.MaxFileSize = getEnvInt64OrDefault("MAX_FILE_SIZE", c.MaxFileSize)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	c.SofficeBin = getEnvOrDefault("SOFFICE_BIN", c.SofficeBin)
	c.ConvertRoot = getEnvOrDefault("CONVERT_ROOT", c.ConvertRoot)
	c.ConvertTimeout = getEnvDurationOrDefault("CONVERT_TIMEOUT", c.ConvertTimeout)

	c.PDFRenderer = strings.ToLower(getEnvOrDefault("PDF_RENDERER", c.PDFRenderer))
	c.ChromePath = getEnvOrDefault("CHROME_PATH", c.ChromePath)
	c.BrowserNoSandbox = getEnvBoolOrDefault("BROWSER_NO_SANDBOX", c.BrowserNoSandbox)
	c.BrowserAutoDownload = getEnvBoolOrDefault("BROWSER_AUTO_DOWNLOAD", c.BrowserAutoDownload)
	c.ExportTimeout = getEnvDurationOrDefault("EXPORT_TIMEOUT", c.ExportTimeout)
	c.MaxConcurrentExports = int(getEnvInt64OrDefault("MAX_CONCURRENT_EXPORTS", int64(c.MaxConcurrentExports)))
	c.ExportCacheSize = int(getEnvInt64OrDefault("EXPORT_CACHE_SIZE", int64(c.ExportCacheSize)))

	c.MirrorBackend = strings.ToLower(getEnvOrDefault("MIRROR_BACKEND", c.MirrorBackend))
	c.SupabaseURL = getEnvOrDefault("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseKey = getEnvOrDefault("SUPABASE_ANON_KEY", c.SupabaseKey)
	c.SupabaseTable = getEnvOrDefault("SUPABASE_TABLE", c.SupabaseTable)
	c.S3.Endpoint = getEnvOrDefault("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.Region = getEnvOrDefault("S3_REGION", c.S3.Region)
	c.S3.Bucket = getEnvOrDefault("S3_BUCKET", c.S3.Bucket)
	c.S3.AccessKey = getEnvOrDefault("S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = getEnvOrDefault("S3_SECRET_KEY", c.S3.SecretKey)
	c.S3.Prefix = getEnvOrDefault("S3_PREFIX", c.S3.Prefix)

	c.UploadSweepSchedule = getEnvOrDefault("UPLOAD_SWEEP_SCHEDULE", c.UploadSweepSchedule)
	c.UploadMaxAge = getEnvDurationOrDefault("UPLOAD_MAX_AGE", c.UploadMaxAge)
}

// finalize fills values derived from other settings
func (c *AppConfig) finalize() {
	if c.ConvertRoot == "" {
		c.ConvertRoot = c.DocumentsDir
	}
	if c.MaxConcurrentExports < 1 {
		c.MaxConcurrentExports = 1
	}
	if c.ExportCacheSize < 0 {
		c.ExportCacheSize = 0
	}
}

// ApplyOverrides sets values given on the command line. A convert root that
// was derived from the documents directory follows the new directory.
func (c *AppConfig) ApplyOverrides(port, documentsDir string) {
	if port != "" {
		c.ServerPort = port
	}
	if documentsDir != "" {
		if c.ConvertRoot == c.DocumentsDir {
			c.ConvertRoot = documentsDir
		}
		c.DocumentsDir = documentsDir
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetFrontendURL returns the URL advertised for the browser client
func (c *AppConfig) GetFrontendURL() string {
	return c.FrontendURL
}

// GetDocumentsDir returns the document store directory
func (c *AppConfig) GetDocumentsDir() string {
	return c.DocumentsDir
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

func (c *AppConfig) GetSofficeBin() string {
	return c.SofficeBin
}

// GetConvertRoot returns the directory convert paths are confined to,
// or ConvertRootUnrestricted.
func (c *AppConfig) GetConvertRoot() string {
	return c.ConvertRoot
}

func (c *AppConfig) GetConvertTimeout() time.Duration {
	return c.ConvertTimeout
}

func (c *AppConfig) GetPDFRenderer() string {
	return c.PDFRenderer
}

func (c *AppConfig) GetChromePath() string {
	return c.ChromePath
}

func (c *AppConfig) GetBrowserNoSandbox() bool {
	return c.BrowserNoSandbox
}

func (c *AppConfig) GetBrowserAutoDownload() bool {
	return c.BrowserAutoDownload
}

func (c *AppConfig) GetExportTimeout() time.Duration {
	return c.ExportTimeout
}

func (c *AppConfig) GetMaxConcurrentExports() int {
	return c.MaxConcurrentExports
}

func (c *AppConfig) GetExportCacheSize() int {
	return c.ExportCacheSize
}

// GetMirrorBackend returns the remote mirror kind: none, supabase or s3
func (c *AppConfig) GetMirrorBackend() string {
	return c.MirrorBackend
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

func (c *AppConfig) GetSupabaseTable() string {
	return c.SupabaseTable
}

func (c *AppConfig) GetS3Config() domain.S3Config {
	return c.S3
}

func (c *AppConfig) GetUploadSweepSchedule() string {
	return c.UploadSweepSchedule
}

func (c *AppConfig) GetUploadMaxAge() time.Duration {
	return c.UploadMaxAge
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
