package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"office-web-server/internal/domain"
	"office-web-server/internal/process"
	apperrors "office-web-server/pkg/errors"
)

// outputFormatPattern accepts "pdf" or "docx:MS Word 2007 XML" style filters.
var outputFormatPattern = regexp.MustCompile(`^[a-z0-9]+(:[A-Za-z0-9 _.-]+)?$`)

// CommandRunner runs an external command and returns its captured output.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with os/exec in their own process group.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	process.Configure(cmd)
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ConversionService converts files with the office-suite command line.
type ConversionService struct {
	bin     string
	root    string
	timeout time.Duration
	run     CommandRunner
	logger  domain.Logger
}

// NewConversionService creates a conversion service for the given binary.
// root confines input and output paths unless it is domain.ConvertRootUnrestricted.
func NewConversionService(bin, root string, timeout time.Duration, run CommandRunner, logger domain.Logger) *ConversionService {
	if run == nil {
		run = ExecRunner
	}
	return &ConversionService{
		bin:     bin,
		root:    root,
		timeout: timeout,
		run:     run,
		logger:  logger,
	}
}

// Available reports whether the office-suite binary can be found.
func (s *ConversionService) Available() bool {
	_, err := exec.LookPath(s.bin)
	return err == nil
}

// Convert runs the conversion and returns the path of the produced file.
// A zero exit status is not trusted on its own: the expected artifact must
// exist and be non-empty.
func (s *ConversionService) Convert(ctx context.Context, req domain.ConversionRequest) (string, error) {
	format := strings.TrimSpace(req.OutputFormat)
	if !outputFormatPattern.MatchString(format) {
		return "", apperrors.NewValidationError("Invalid output format", fmt.Sprintf("%q: %v", format, domain.ErrInvalidFormat))
	}

	inputPath, err := s.resolvePath(req.InputPath)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(inputPath)
	if err != nil || !info.Mode().IsRegular() {
		return "", apperrors.NewValidationError("Input file not found", req.InputPath)
	}

	outputDir := filepath.Dir(inputPath)
	if strings.TrimSpace(req.OutputDir) != "" {
		if outputDir, err = s.resolvePath(req.OutputDir); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", apperrors.NewInternalError("Failed to create output directory", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := []string{"--headless", "--convert-to", format, "--outdir", outputDir, inputPath}
	start := time.Now()
	_, stderr, err := s.run(ctx, s.bin, args...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "conversion timed out"
		} else if msg == "" {
			msg = err.Error()
		}
		s.logger.Error("Conversion failed", err, "input", inputPath, "format", format)
		return "", apperrors.NewConversionError(msg, err)
	}

	expected := ExpectedOutputPath(inputPath, format, outputDir)
	out, statErr := os.Stat(expected)
	if statErr != nil || out.Size() == 0 {
		s.logger.Warn("Conversion exited cleanly without output", "input", inputPath, "expected", expected)
		return "", apperrors.NewConversionError(domain.ErrConversionNoOutput.Error(), domain.ErrConversionNoOutput)
	}

	s.logger.Info("Conversion finished", "input", inputPath, "output", expected, "duration", time.Since(start))
	return expected, nil
}

// ExpectedOutputPath returns where the office suite writes the converted
// file: the input's base name with the format's extension, in outputDir.
func ExpectedOutputPath(inputPath, format, outputDir string) string {
	ext, _, _ := strings.Cut(format, ":")
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+"."+ext)
}

// resolvePath makes p absolute and checks it stays under the conversion root.
func (s *ConversionService) resolvePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || strings.ContainsRune(p, 0) {
		return "", apperrors.NewValidationError("Path is required")
	}
	if s.root == domain.ConvertRootUnrestricted {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", apperrors.NewValidationError("Invalid path", p)
		}
		return abs, nil
	}

	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", apperrors.NewInternalError("Invalid conversion root", err)
	}
	full := filepath.Clean(p)
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.NewValidationError("Invalid path", fmt.Sprintf("%s: %v", p, domain.ErrPathOutsideRoot))
	}
	return full, nil
}
