package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/services"
)

// runJob drives one job from Pending to a terminal state.
func (m *Manager) runJob(ctx context.Context, job *jobs.Job) {
	jobCtx := services.WithRequestID(services.WithJobID(ctx, job.ID), uuid.NewString())
	cancel := func() {}
	if m.jobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(jobCtx, m.jobTimeout)
	}
	defer cancel()
	logger := logging.WithContext(jobCtx, m.logger)
	// Outcomes are persisted even after the job context is cancelled.
	persistCtx := context.WithoutCancel(jobCtx)

	if err := job.Start(m.now()); err != nil {
		logger.Warn("job skipped; not pending", logging.Error(err),
			logging.String(logging.FieldEventType, "job_skipped"))
		return
	}
	if err := m.repo.Save(persistCtx, job); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist job start", logging.Error(err),
			logging.String(logging.FieldEventType, "job_persist_failed"),
			logging.String(logging.FieldErrorHint, "check job database access"))
		return
	}
	jobStart := time.Now()
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.Int("prompt_length", len([]rune(job.Prompt))),
	)

	for _, stg := range m.stageList() {
		if err := m.executeStage(jobCtx, persistCtx, stg, job); err != nil {
			m.handleJobFailure(ctx, jobCtx, persistCtx, stg.name, job, err)
			return
		}
	}

	if err := job.Complete(m.now()); err != nil {
		m.handleJobFailure(ctx, jobCtx, persistCtx, job.Stage, job, err)
		return
	}
	if err := m.repo.Save(persistCtx, job); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist job completion", logging.Error(err),
			logging.String(logging.FieldEventType, "job_persist_failed"),
			logging.String(logging.FieldErrorHint, "check job database access"))
		return
	}
	m.setLastJob(job)
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("published_id", job.PublishedID),
		logging.String("published_url", job.PublishedURL),
		logging.Duration("job_duration", time.Since(jobStart)),
	)
	if err := m.notifier.NotifyJobCompleted(persistCtx, job.Title, job.PublishedURL); err != nil {
		logger.Debug("completion notification failed", logging.Error(err))
	}
}

func (m *Manager) executeStage(jobCtx, persistCtx context.Context, stg pipelineStage, job *jobs.Job) error {
	ctx := services.WithStage(jobCtx, stg.name)
	logger := logging.WithContext(ctx, m.logger)
	stageStart := time.Now()

	job.Stage = stg.name
	job.UpdatedAt = m.now().UTC()
	if err := m.repo.Save(persistCtx, job); err != nil {
		return fmt.Errorf("persist stage start: %w", err)
	}
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := stg.handler.Prepare(ctx, job); err != nil {
		return err
	}
	if err := stg.handler.Execute(ctx, job); err != nil {
		// Artifacts stored before the failure stay referenced by the record.
		job.UpdatedAt = m.now().UTC()
		if saveErr := m.repo.Save(persistCtx, job); saveErr != nil {
			logger.Warn("failed to persist partial stage output", logging.Error(saveErr))
		}
		return err
	}
	if err := jobCtx.Err(); err != nil {
		return err
	}

	job.UpdatedAt = m.now().UTC()
	if err := m.repo.Save(persistCtx, job); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) stageList() []pipelineStage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]pipelineStage(nil), m.stages...)
}

func jobLogger(ctx context.Context, base *slog.Logger, stageName string) *slog.Logger {
	if stageName != "" {
		ctx = services.WithStage(ctx, stageName)
	}
	return logging.WithContext(ctx, base)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
