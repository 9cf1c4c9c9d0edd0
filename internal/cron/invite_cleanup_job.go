package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/famlyhq/famly-backend/pkg/logger"
	"github.com/famlyhq/famly-backend/pkg/metrics"
)

const inviteRetentionDays = 30

type InviteCleanupJobParams struct {
	Logger     *logger.Logger
	Repository staleInvitesRepo
	Metrics    *metrics.CronJobMetrics
	Retention  int
}

type staleInvitesRepo interface {
	RevokeStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewInviteCleanupJob builds the job that revokes pending invites older than
// the retention window.
func NewInviteCleanupJob(params InviteCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("invites repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = inviteRetentionDays
	}
	return &inviteCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

type inviteCleanupJob struct {
	logg      *logger.Logger
	repo      staleInvitesRepo
	metrics   *metrics.CronJobMetrics
	retention int
	now       func() time.Time
}

func (j *inviteCleanupJob) Name() string { return "invite-cleanup" }

func (j *inviteCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	revoked, err := j.repo.RevokeStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("invite cleanup: %w", err)
	}
	j.metrics.AddProcessed(j.Name(), revoked)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_revoked":   revoked,
	})
	j.logg.Info(logCtx, "invite cleanup complete")
	return nil
}
