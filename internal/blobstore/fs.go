package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const tempPrefix = ".incoming-"

// FSStore keeps artifacts below a root directory, fanned out into two-character
// shard directories taken from the identifier.
type FSStore struct {
	root string
}

// NewFSStore creates root if needed and returns a store rooted there.
func NewFSStore(root string) (*FSStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, &StorageError{Op: "open", Err: errors.New("root directory required")}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &StorageError{Op: "open", Name: root, Err: err}
	}
	return &FSStore{root: root}, nil
}

// Root returns the directory artifacts are stored under.
func (s *FSStore) Root() string { return s.root }

// Put writes r to a temp file beside the final location, fsyncs it, renames it
// into place and fsyncs the shard directory before returning the identifier.
func (s *FSStore) Put(ctx context.Context, r io.Reader, suggestedName string) (string, error) {
	if r == nil {
		return "", &StorageError{Op: "put", Name: suggestedName, Err: errors.New("nil reader")}
	}
	id := uuid.NewString() + sanitizeExt(suggestedName)
	final, err := s.path(id)
	if err != nil {
		return "", &StorageError{Op: "put", Name: suggestedName, Err: err}
	}
	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "put", Name: suggestedName, Err: err}
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", &StorageError{Op: "put", Name: suggestedName, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: r}); err != nil {
		return "", &StorageError{Op: "put", Name: suggestedName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return "", &StorageError{Op: "put", Name: suggestedName, Err: fmt.Errorf("sync: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return "", &StorageError{Op: "put", Name: suggestedName, Err: fmt.Errorf("close: %w", err)}
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return "", &StorageError{Op: "put", Name: suggestedName, Err: fmt.Errorf("rename: %w", err)}
	}
	committed = true
	if err := syncDir(dir); err != nil {
		return "", &StorageError{Op: "put", ID: id, Err: fmt.Errorf("sync dir: %w", err)}
	}
	return id, nil
}

// Get opens a new handle on every call so concurrent readers never share offsets.
func (s *FSStore) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StorageError{Op: "get", ID: id, Err: err}
	}
	path, err := s.path(id)
	if err != nil {
		return nil, &StorageError{Op: "get", ID: id, Err: err}
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &StorageError{Op: "get", ID: id, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "get", ID: id, Err: err}
	}
	return file, nil
}

// Delete removes the artifact; a missing artifact is not an error.
func (s *FSStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "delete", ID: id, Err: err}
	}
	path, err := s.path(id)
	if err != nil {
		return &StorageError{Op: "delete", ID: id, Err: err}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &StorageError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

// Stat reports the artifact size and modification time.
func (s *FSStore) Stat(ctx context.Context, id string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, &StorageError{Op: "stat", ID: id, Err: err}
	}
	path, err := s.path(id)
	if err != nil {
		return Info{}, &StorageError{Op: "stat", ID: id, Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, &StorageError{Op: "stat", ID: id, Err: ErrNotFound}
		}
		return Info{}, &StorageError{Op: "stat", ID: id, Err: err}
	}
	return Info{ID: id, Size: info.Size(), Modified: info.ModTime()}, nil
}

func (s *FSStore) path(id string) (string, error) {
	if len(id) < 3 || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid artifact id %q", id)
	}
	return filepath.Join(s.root, id[:2], id), nil
}

// sanitizeExt keeps a short alphanumeric extension from the suggested name.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func syncDir(dir string) error {
	handle, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer handle.Close()
	if err := handle.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
