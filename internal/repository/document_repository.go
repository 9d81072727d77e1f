package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"office-web-server/internal/domain"
)

// FileDocumentRepository stores documents as flat HTML files in one directory.
type FileDocumentRepository struct {
	dir    string
	logger domain.Logger
}

// NewFileDocumentRepository creates a repository rooted at dir.
// The directory is created lazily on first write.
func NewFileDocumentRepository(dir string, logger domain.Logger) *FileDocumentRepository {
	return &FileDocumentRepository{
		dir:    dir,
		logger: logger,
	}
}

// Dir returns the store directory
func (r *FileDocumentRepository) Dir() string {
	return r.dir
}

// List returns every stored document, sorted by filename.
// A store directory that does not exist yet is an empty store.
func (r *FileDocumentRepository) List(ctx context.Context) ([]domain.DocumentInfo, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.DocumentInfo{}, nil
		}
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	docs := make([]domain.DocumentInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() || !domain.HasDocumentExtension(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		docs = append(docs, domain.DocumentInfo{
			Filename:   entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

// Read returns the content of a stored document
func (r *FileDocumentRepository) Read(ctx context.Context, filename string) (string, error) {
	path, err := r.resolve(filename)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrDocumentNotFound
		}
		return "", fmt.Errorf("stat %s: %w", filename, err)
	}
	if !info.Mode().IsRegular() {
		return "", domain.ErrDocumentNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrDocumentNotFound
		}
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return string(data), nil
}

// Write stores content under filename, replacing any previous version,
// and returns the path written.
func (r *FileDocumentRepository) Write(ctx context.Context, filename string, content string) (string, error) {
	path, err := r.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating store directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}

	r.logger.Debug("Document written", "filename", filename, "bytes", len(content))
	return path, nil
}

// resolve validates filename and joins it onto the store directory.
func (r *FileDocumentRepository) resolve(filename string) (string, error) {
	if err := domain.ValidateFilename(filename); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidFilename, err)
	}
	path := filepath.Join(r.dir, filename)
	if filepath.Dir(path) != filepath.Clean(r.dir) {
		return "", domain.ErrInvalidFilename
	}
	return path, nil
}
