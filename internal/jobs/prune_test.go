package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"promptreel/internal/jobs"
	"promptreel/internal/testsupport"
)

type recordingRemover struct {
	deleted []string
	err     error
}

func (r *recordingRemover) Delete(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func failJob(t *testing.T, repo jobs.Repository, prompt string, ended time.Time, artifacts ...string) *jobs.Job {
	t.Helper()
	job := testsupport.NewJob(t, repo, prompt)
	if err := job.Start(ended.Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if len(artifacts) > 0 {
		if err := job.SetAudioArtifactID(artifacts[0]); err != nil {
			t.Fatal(err)
		}
		if err := job.SetVideoClipArtifactIDs(artifacts[1:]); err != nil {
			t.Fatal(err)
		}
	}
	if err := job.Fail(ended, "boom"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(context.Background(), job); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return job
}

func TestPruneFailedRemovesOldJobsAndArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	now := time.Now().UTC()

	old := failJob(t, store, "facts about owls", now.Add(-200*time.Hour), "audio-1", "clip-1", "clip-2")
	recent := failJob(t, store, "facts about bats", now.Add(-time.Hour), "audio-2")
	pending := testsupport.NewJob(t, store, "facts about cats")

	remover := &recordingRemover{}
	result, err := jobs.PruneFailed(ctx, store, remover, now.Add(-168*time.Hour))
	if err != nil {
		t.Fatalf("PruneFailed: %v", err)
	}
	if len(result.JobIDs) != 1 || result.JobIDs[0] != old.ID || result.Artifacts != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(remover.deleted) != 3 || remover.deleted[0] != "audio-1" {
		t.Fatalf("unexpected deleted artifacts: %v", remover.deleted)
	}
	if _, err := store.FindByID(ctx, old.ID); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected old job removed, got %v", err)
	}
	for _, id := range []string{recent.ID, pending.ID} {
		if _, err := store.FindByID(ctx, id); err != nil {
			t.Fatalf("expected job %s kept: %v", id, err)
		}
	}
}

func TestPruneFailedKeepsRecordWhenArtifactDeleteFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	now := time.Now().UTC()

	job := failJob(t, store, "facts about owls", now.Add(-200*time.Hour), "audio-1")
	remover := &recordingRemover{err: errors.New("disk gone")}
	if _, err := jobs.PruneFailed(ctx, store, remover, now); err == nil {
		t.Fatal("expected prune error")
	}
	if _, err := store.FindByID(ctx, job.ID); err != nil {
		t.Fatalf("expected record kept: %v", err)
	}
}
