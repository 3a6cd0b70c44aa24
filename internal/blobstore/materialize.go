package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Materialize copies artifact id to dir/name so external processes can read it
// from a plain path. The returned path is inside dir.
func Materialize(ctx context.Context, store Store, id, dir, name string) (string, error) {
	reader, err := store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("materialize %s: %w", id, err)
	}
	target := filepath.Join(dir, filepath.Base(name))
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("materialize %s: %w", id, err)
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return "", fmt.Errorf("materialize %s: copy: %w", id, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("materialize %s: close: %w", id, err)
	}
	return target, nil
}

// PutFile stores the file at path and returns the new artifact id.
func PutFile(ctx context.Context, store Store, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return store.Put(ctx, file, filepath.Base(path))
}
