package workflow

import (
	"context"
	"sort"

	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	ActiveJobs  []string
	LastError   string
	LastJob     *jobs.Job
	JobCounts   map[jobs.Status]int
	StageHealth []stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	var lastJob *jobs.Job
	if m.lastJob != nil {
		lastJob = m.lastJob.Clone()
	}
	active := make([]string, 0, len(m.active))
	for id := range m.active {
		active = append(active, id)
	}
	m.mu.RUnlock()
	sort.Strings(active)

	counts := make(map[jobs.Status]int)
	all, err := m.repo.ListByStatus(ctx)
	if err != nil {
		m.logger.Warn("failed to read job counts", logging.Error(err),
			logging.String(logging.FieldEventType, "job_stats_failed"))
	}
	for _, job := range all {
		counts[job.Status]++
	}

	summary := StatusSummary{
		Running:     running,
		ActiveJobs:  active,
		LastJob:     lastJob,
		JobCounts:   counts,
		StageHealth: m.HealthCheck(ctx),
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	return summary
}

// HealthCheck collects the health of every configured stage in pipeline order.
func (m *Manager) HealthCheck(ctx context.Context) []stage.Health {
	stages := m.stageList()
	health := make([]stage.Health, 0, len(stages))
	for _, stg := range stages {
		h := stg.handler.HealthCheck(ctx)
		if h.Name == "" {
			h.Name = stg.name
		}
		health = append(health, h)
	}
	return health
}

// Ready reports whether every configured stage is healthy.
func (m *Manager) Ready(ctx context.Context) bool {
	for _, h := range m.HealthCheck(ctx) {
		if !h.Ready {
			return false
		}
	}
	return true
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(job *jobs.Job) {
	m.mu.Lock()
	if job != nil {
		m.lastJob = job.Clone()
	} else {
		m.lastJob = nil
	}
	m.mu.Unlock()
}
