package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"office-web-server/internal/domain"
)

// Job is a unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler interface {
	AddJob(job Job, spec string) error
	Start(ctx context.Context)
	Stop()
}

// CronScheduler runs jobs on standard five-field cron expressions. A job
// whose previous run is still in progress skips its next tick.
type CronScheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	logger  domain.Logger
	ctx     context.Context
}

func NewCronScheduler(logger domain.Logger) *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		logger:  logger,
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		c.logger.Error("Failed to schedule job", err, "job", job.Name(), "spec", spec)
		return err
	}
	c.entries[job.Name()] = entryID
	c.logger.Info("Job scheduled", "job", job.Name(), "spec", spec)
	return nil
}

// Start begins running scheduled jobs; ctx is handed to every run.
func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (c *CronScheduler) Stop() {
	<-c.cron.Stop().Done()
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			c.logger.Info("Job skipped: still running", "job", job.Name(), "spec", spec)
			return
		}
		defer running.Store(false)

		ctx := c.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			c.logger.Error("Job failed", err, "job", job.Name(), "duration", time.Since(start))
			return
		}
		c.logger.Debug("Job finished", "job", job.Name(), "duration", time.Since(start))
	}
}
