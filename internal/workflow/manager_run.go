package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptreel/internal/jobs"
	"promptreel/internal/logging"
)

// Create validates prompt, persists a pending job and wakes the dispatcher.
// Validation failures persist nothing.
func (m *Manager) Create(ctx context.Context, prompt string) (*jobs.Job, error) {
	job, err := jobs.New(prompt, m.now())
	if err != nil {
		return nil, err
	}
	if err := m.repo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}
	logging.WithContext(ctx, m.logger).Info("job created",
		logging.JobID(job.ID),
		logging.String(logging.FieldEventType, "job_created"),
	)
	m.Wake()
	return job.Clone(), nil
}

// Wake nudges the dispatcher to look for pending jobs without waiting for the
// next poll.
func (m *Manager) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Start fails jobs left running by a previous process and begins background
// dispatch.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}
	m.mu.Unlock()

	recovered, err := jobs.FailInterrupted(ctx, m.repo, m.now())
	if err != nil {
		return fmt.Errorf("recover interrupted jobs: %w", err)
	}
	if recovered > 0 {
		logging.WarnWithContext(m.logger, "failed jobs interrupted by a previous shutdown", "jobs_interrupted",
			logging.Int("count", recovered),
			logging.String(logging.FieldImpact, "interrupted jobs will not resume"),
			logging.String(logging.FieldErrorHint, "create the jobs again if the videos are still wanted"),
		)
	}

	m.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.dispatch(runCtx)
	return nil
}

// Stop cancels running jobs and waits until each has recorded its outcome.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) dispatch(ctx context.Context) {
	defer m.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		m.startPending(ctx)
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
		case <-time.After(m.pollInterval):
		}
	}
}

// startPending launches pending jobs, oldest first, into free slots.
func (m *Manager) startPending(ctx context.Context) {
	free := m.freeSlots()
	if free <= 0 {
		return
	}
	pending, err := m.repo.ListByStatus(ctx, jobs.StatusPending)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.setLastError(err)
		m.logger.Error("failed to list pending jobs",
			logging.Error(err),
			logging.String(logging.FieldEventType, "job_fetch_failed"),
			logging.String(logging.FieldErrorHint, "check job database access"),
		)
		return
	}
	for _, job := range pending {
		if free == 0 {
			return
		}
		if !m.claim(job.ID) {
			continue
		}
		free--
		m.wg.Add(1)
		go func(job *jobs.Job) {
			defer m.wg.Done()
			defer m.release(job.ID)
			m.runJob(ctx, job)
		}(job)
	}
}

func (m *Manager) freeSlots() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxConcurrent - len(m.active)
}

func (m *Manager) claim(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[id]; ok {
		return false
	}
	m.active[id] = struct{}{}
	return true
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
	m.Wake()
}
