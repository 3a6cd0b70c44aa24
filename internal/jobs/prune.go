package jobs

import (
	"context"
	"fmt"
	"time"
)

// ArtifactRemover deletes stored artifacts by identifier.
type ArtifactRemover interface {
	Delete(ctx context.Context, id string) error
}

// PruneResult summarizes a prune pass.
type PruneResult struct {
	JobIDs    []string
	Artifacts int
}

// PruneFailed removes failed jobs that ended before cutoff. Artifacts are
// deleted before the record so a surviving record never references a missing
// artifact. The first error stops the pass; jobs already removed stay removed.
func PruneFailed(ctx context.Context, repo Repository, artifacts ArtifactRemover, cutoff time.Time) (PruneResult, error) {
	var result PruneResult
	failed, err := repo.ListByStatus(ctx, StatusFailed)
	if err != nil {
		return result, fmt.Errorf("list failed jobs: %w", err)
	}
	for _, job := range failed {
		if !endedBefore(job, cutoff) {
			continue
		}
		for _, id := range job.ArtifactIDs() {
			if err := artifacts.Delete(ctx, id); err != nil {
				return result, fmt.Errorf("prune job %s: %w", job.ID, err)
			}
			result.Artifacts++
		}
		if err := repo.Delete(ctx, job.ID); err != nil {
			return result, fmt.Errorf("prune job %s: %w", job.ID, err)
		}
		result.JobIDs = append(result.JobIDs, job.ID)
	}
	return result, nil
}

func endedBefore(job *Job, cutoff time.Time) bool {
	ended := job.UpdatedAt
	if job.EndedAt != nil {
		ended = *job.EndedAt
	}
	return ended.Before(cutoff)
}
