package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	ossHelper "sifs_backend/internals/helpers/oss"
)

// Purger is satisfied by *service.VerificationLogService.
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type RetentionConfig struct {
	Schedule      string
	RetentionDays int
	// ArchiveBucket is optional; when set, archived exports under ArchivePrefix
	// older than ArchiveRetention are removed in the same run.
	ArchiveBucket    ossHelper.Bucket
	ArchivePrefix    string
	ArchiveRetention time.Duration
	RunTimeout       time.Duration
}

type Retention struct {
	cfg    RetentionConfig
	purger Purger
	log    *zap.Logger
	now    func() time.Time
}

func NewRetention(cfg RetentionConfig, purger Purger, log *zap.Logger) *Retention {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 90
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 4 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retention{cfg: cfg, purger: purger, log: log.Named("retention"), now: time.Now}
}

// RunOnce executes one purge pass. Archive failures are logged, not returned.
func (r *Retention) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	var firstErr error
	if r.purger != nil {
		cutoff := r.now().Add(-time.Duration(r.cfg.RetentionDays) * 24 * time.Hour)
		if _, err := r.purger.PurgeOlderThan(ctx, cutoff); err != nil {
			r.log.Error("❌ verification log purge failed", zap.Error(err))
			firstErr = err
		}
	}

	if r.cfg.ArchiveBucket != nil && r.cfg.ArchiveRetention > 0 {
		if _, err := ossHelper.ReapPrefix(ctx, r.cfg.ArchiveBucket, r.cfg.ArchivePrefix, r.cfg.ArchiveRetention, false, r.log); err != nil {
			r.log.Error("❌ archive reaper failed", zap.Error(err))
		}
	}
	return firstErr
}

// Start schedules RunOnce on cfg.Schedule. Stop the returned cron on shutdown.
func (r *Retention) Start() (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(r.cfg.Schedule, func() {
		_ = r.RunOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("schedule retention %q: %w", r.cfg.Schedule, err)
	}
	c.Start()
	r.log.Info("⏱ retention scheduled",
		zap.String("schedule", r.cfg.Schedule),
		zap.Int("retention_days", r.cfg.RetentionDays),
		zap.Bool("archive", r.cfg.ArchiveBucket != nil),
	)
	return c, nil
}
