package domain

import (
	"context"
	"io"
)

// ConversionRequest asks the office-suite CLI to convert a file.
type ConversionRequest struct {
	InputPath    string `json:"inputPath"`
	OutputFormat string `json:"outputFormat"`
	OutputDir    string `json:"outputDir"`
}

// ConversionService converts files with an external office-suite process.
// It returns the path of the produced artifact.
type ConversionService interface {
	Convert(ctx context.Context, req ConversionRequest) (string, error)
	Available() bool
}

// Upload is a single file received from a client.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// HTMLConverter turns a file on disk into an HTML fragment.
type HTMLConverter interface {
	Extensions() []string
	ConvertFile(ctx context.Context, path string) (string, error)
}

// UploadService converts an uploaded file into editor HTML.
type UploadService interface {
	ConvertUpload(ctx context.Context, upload Upload) (string, error)
}

// ConvertRootUnrestricted disables path confinement for conversions.
const ConvertRootUnrestricted = "*"
