package schedule

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"office-web-server/internal/domain"
)

// UploadSweepJob removes staged uploads left behind by a crash or a killed
// request. Only files with the staging prefix that are older than maxAge
// are touched.
type UploadSweepJob struct {
	dir    string
	prefix string
	maxAge time.Duration
	logger domain.Logger
	now    func() time.Time
}

func NewUploadSweepJob(dir, prefix string, maxAge time.Duration, logger domain.Logger) *UploadSweepJob {
	return &UploadSweepJob{
		dir:    dir,
		prefix: prefix,
		maxAge: maxAge,
		logger: logger,
		now:    time.Now,
	}
}

func (j *UploadSweepJob) Name() string { return "upload_sweep" }

func (j *UploadSweepJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() || !strings.HasPrefix(entry.Name(), j.prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.Info("Removed stale uploads", "dir", j.dir, "count", removed)
	}
	return errors.Join(errs...)
}
