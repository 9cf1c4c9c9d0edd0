package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/famlyhq/famly-backend/pkg/logger"
	"github.com/famlyhq/famly-backend/pkg/metrics"
)

const taskRetentionDays = 180

type TaskRetentionJobParams struct {
	Logger     *logger.Logger
	Repository doneTasksRepo
	Metrics    *metrics.CronJobMetrics
	Retention  int
}

type doneTasksRepo interface {
	DeleteDoneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewTaskRetentionJob builds the job that purges completed tasks that have not
// been touched inside the retention window.
func NewTaskRetentionJob(params TaskRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("tasks repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = taskRetentionDays
	}
	return &taskRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

type taskRetentionJob struct {
	logg      *logger.Logger
	repo      doneTasksRepo
	metrics   *metrics.CronJobMetrics
	retention int
	now       func() time.Time
}

func (j *taskRetentionJob) Name() string { return "task-retention" }

func (j *taskRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteDoneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("task retention: %w", err)
	}
	j.metrics.AddProcessed(j.Name(), deleted)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "task retention complete")
	return nil
}
