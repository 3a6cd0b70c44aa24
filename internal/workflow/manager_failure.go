package workflow

import (
	"context"
	"fmt"
	"strings"

	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/services"
)

// handleJobFailure records the terminal failure of job. daemonCtx is the
// dispatcher context; its cancellation means the daemon is shutting down.
func (m *Manager) handleJobFailure(daemonCtx, jobCtx, persistCtx context.Context, stageName string, job *jobs.Job, stageErr error) {
	logger := jobLogger(jobCtx, m.logger, stageName)
	message := m.failureMessage(daemonCtx, jobCtx, stageName, stageErr)

	if err := job.Fail(m.now(), message); err != nil {
		logger.Error("failed to mark job failed", logging.Error(err))
		return
	}
	m.setLastError(stageErr)

	attrs := []logging.Attr{
		logging.String("error_message", message),
		logging.ErrorKind(stageErr),
		logging.Error(stageErr),
	}
	if daemonCtx.Err() != nil {
		logger.Info("job stopped by shutdown", logging.Args(append(attrs,
			logging.String(logging.FieldEventType, "job_stopped"))...)...)
	} else {
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			append(attrs, logging.String(logging.FieldErrorHint, failureHint(stageErr)))...)
	}

	if err := m.repo.Save(persistCtx, job); err != nil {
		logger.Error("failed to persist job failure", logging.Error(err),
			logging.String(logging.FieldEventType, "job_persist_failed"))
	}
	m.setLastJob(job)

	if daemonCtx.Err() == nil {
		if err := m.notifier.NotifyJobFailed(persistCtx, job.ID, stageName, message); err != nil {
			logger.Debug("failure notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) failureMessage(daemonCtx, jobCtx context.Context, stageName string, stageErr error) string {
	switch {
	case daemonCtx.Err() != nil && isCancellation(stageErr):
		return jobs.DaemonStopReason
	case jobCtx.Err() != nil && isCancellation(stageErr):
		return fmt.Sprintf("%s: job exceeded %s timeout", stageName, m.jobTimeout)
	}
	message := ""
	if stageErr != nil {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = "failed without error detail"
	}
	if stageName != "" && !strings.Contains(message, stageName) {
		message = fmt.Sprintf("%s: %s", stageName, message)
	}
	return message
}

func failureHint(err error) string {
	switch services.Kind(err) {
	case "configuration":
		return "check credentials and binaries with promptreel doctor"
	case "empty_result":
		return "try a more concrete prompt"
	case "external_tool":
		return "inspect the tool output in the error message"
	case "timeout":
		return "raise workflow.job_timeout_minutes or retry.attempt_timeout_seconds"
	default:
		return "transient failures were retried; check collaborator availability"
	}
}
