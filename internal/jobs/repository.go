package jobs

import (
	"context"
	"fmt"
	"time"

	"promptreel/internal/config"
)

// Repository persists jobs. Save is an upsert keyed by ID.
type Repository interface {
	Save(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, id string) (*Job, error)
	// ListRecent returns up to limit jobs, newest first.
	ListRecent(ctx context.Context, limit int) ([]*Job, error)
	// ListByStatus returns matching jobs, oldest first.
	ListByStatus(ctx context.Context, statuses ...Status) ([]*Job, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the repository selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return OpenPostgres(ctx, cfg.Storage.DatabaseURL)
	case "sqlite", "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(ctx, cfg.DatabasePath())
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// FailInterrupted marks running jobs left behind by a previous daemon process
// as failed. Pending jobs are left alone so they can still be picked up.
func FailInterrupted(ctx context.Context, repo Repository, now time.Time) (int, error) {
	running, err := repo.ListByStatus(ctx, StatusRunning)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, job := range running {
		if err := job.Fail(now, InterruptedReason); err != nil {
			continue
		}
		if err := repo.Save(ctx, job); err != nil {
			return count, fmt.Errorf("fail interrupted job %s: %w", job.ID, err)
		}
		count++
	}
	return count, nil
}
