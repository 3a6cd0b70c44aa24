package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"promptreel/internal/config"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/notifications"
)

// Manager coordinates job processing using registered stage handlers.
type Manager struct {
	cfg           *config.Config
	repo          jobs.Repository
	logger        *slog.Logger
	notifier      notifications.Service
	pollInterval  time.Duration
	jobTimeout    time.Duration
	maxConcurrent int
	now           func() time.Time

	stages []pipelineStage
	wake   chan struct{}

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	active  map[string]struct{}
	lastErr error
	lastJob *jobs.Job
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithNotifier overrides the notifier built from configuration.
func WithNotifier(notifier notifications.Service) ManagerOption {
	return func(m *Manager) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

// WithClock overrides the time source used for job timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, repo jobs.Repository, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:           cfg,
		repo:          repo,
		logger:        logging.NewComponentLogger(logger, "workflow-manager"),
		notifier:      notifications.NewService(cfg),
		pollInterval:  cfg.PollInterval(),
		jobTimeout:    cfg.JobTimeout(),
		maxConcurrent: cfg.Workflow.MaxConcurrentJobs,
		now:           time.Now,
		wake:          make(chan struct{}, 1),
		active:        make(map[string]struct{}),
	}
	if m.pollInterval <= 0 {
		m.pollInterval = 2 * time.Second
	}
	if m.maxConcurrent <= 0 {
		m.maxConcurrent = 1
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
