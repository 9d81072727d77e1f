package domain

import "time"

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetFrontendURL() string
	GetDocumentsDir() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetLogLevel() string

	GetSofficeBin() string
	GetConvertRoot() string
	GetConvertTimeout() time.Duration

	GetPDFRenderer() string
	GetChromePath() string
	GetBrowserNoSandbox() bool
	GetBrowserAutoDownload() bool
	GetExportTimeout() time.Duration
	GetMaxConcurrentExports() int
	GetExportCacheSize() int

	GetMirrorBackend() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseTable() string
	GetS3Config() S3Config

	GetUploadSweepSchedule() string
	GetUploadMaxAge() time.Duration
}

// S3Config holds the settings of the S3 document mirror
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}
