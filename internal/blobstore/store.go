// Package blobstore persists intermediate and final media artifacts.
//
// Artifacts are opaque byte streams addressed by identifiers the store mints.
// The filesystem implementation writes through a temp file and an atomic rename,
// so an identifier is never returned before its content is durable.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound is wrapped by StorageError when an identifier has no artifact.
var ErrNotFound = errors.New("artifact not found")

// Store is the artifact storage contract used by every stage.
type Store interface {
	// Put streams r into a new artifact and returns its identifier.
	Put(ctx context.Context, r io.Reader, suggestedName string) (string, error)
	// Get opens a fresh reader positioned at the start of the artifact.
	Get(ctx context.Context, id string) (io.ReadCloser, error)
	// Delete removes the artifact. Deleting a missing artifact succeeds.
	Delete(ctx context.Context, id string) error
	// Stat reports size and modification time.
	Stat(ctx context.Context, id string) (Info, error)
}

// Info describes a stored artifact.
type Info struct {
	ID       string
	Size     int64
	Modified time.Time
}

// StorageError records the operation, identifier and cause of a storage failure.
type StorageError struct {
	Op   string
	ID   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	subject := e.ID
	if subject == "" {
		subject = e.Name
	}
	if subject == "" {
		return fmt.Sprintf("blobstore %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("blobstore %s %s: %v", e.Op, subject, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
