package testsupport

import (
	"context"
	"testing"
	"time"

	"promptreel/internal/blobstore"
	"promptreel/internal/config"
	"promptreel/internal/jobs"
)

// MustOpenStore opens the SQLite job store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.SQLiteStore {
	t.Helper()

	store, err := jobs.OpenSQLite(context.Background(), cfg.DatabasePath())
	if err != nil {
		t.Fatalf("jobs.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenBlobStore opens the filesystem artifact store rooted at the config blob dir.
func MustOpenBlobStore(t testing.TB, cfg *config.Config) *blobstore.FSStore {
	t.Helper()

	store, err := blobstore.NewFSStore(cfg.Storage.BlobDir)
	if err != nil {
		t.Fatalf("blobstore.NewFSStore: %v", err)
	}
	return store
}

// NewJob creates and persists a pending job.
func NewJob(t testing.TB, repo jobs.Repository, prompt string) *jobs.Job {
	t.Helper()

	job, err := jobs.New(prompt, time.Now())
	if err != nil {
		t.Fatalf("jobs.New: %v", err)
	}
	if err := repo.Save(context.Background(), job); err != nil {
		t.Fatalf("repo.Save: %v", err)
	}
	return job
}
