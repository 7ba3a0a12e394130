package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Cleaner deletes published messages older than its retention.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// CleanupJob runs a Cleaner on a cron schedule. Runs never overlap.
type CleanupJob struct {
	cron    *cron.Cron
	cleaner Cleaner
	logger  *slog.Logger
	timeout time.Duration
}

// NewCleanupJob schedules cleaner. spec is a standard five field cron
// expression or a descriptor such as "@daily".
func NewCleanupJob(spec string, cleaner Cleaner, logger *slog.Logger) (*CleanupJob, error) {
	if logger == nil {
		logger = slog.Default()
	}
	j := &CleanupJob{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		cleaner: cleaner,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	return j, nil
}

// Start runs the scheduler in its own goroutine.
func (j *CleanupJob) Start() {
	j.cron.Start()
	j.logger.Info("outbox cleanup scheduled", "next_run", j.Next())
}

// Stop halts the scheduler and waits for a running cleanup to finish.
func (j *CleanupJob) Stop() {
	<-j.cron.Stop().Done()
}

// Next is the time of the next scheduled run; zero before Start.
func (j *CleanupJob) Next() time.Time {
	entries := j.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (j *CleanupJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	deleted, err := j.cleaner.Cleanup(ctx)
	if err != nil {
		j.logger.Error("outbox cleanup failed", "error", err)
		return
	}
	j.logger.Debug("outbox cleanup finished", "deleted", deleted)
}
