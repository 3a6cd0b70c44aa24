package blobstore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"promptreel/internal/blobstore"
	"promptreel/internal/testsupport"
)

func newStore(t *testing.T) *blobstore.FSStore {
	t.Helper()
	store, err := blobstore.NewFSStore(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	return store
}

func readAll(t *testing.T, store blobstore.Store, id string) []byte {
	t.Helper()
	rc, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", id, err)
	}
	return data
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	payload := bytes.Repeat([]byte("narration"), 4096)

	id, err := store.Put(ctx, bytes.NewReader(payload), "speech.mp3")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasSuffix(id, ".mp3") {
		t.Fatalf("expected extension to be kept, got %q", id)
	}
	if got := readAll(t, store, id); !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: %d bytes vs %d", len(got), len(payload))
	}
	info, err := store.Stat(ctx, id)
	if err != nil || info.Size != int64(len(payload)) {
		t.Fatalf("Stat: %+v %v", info, err)
	}
}

func TestPutMintsDistinctIDs(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	a, err := store.Put(ctx, strings.NewReader("a"), "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Put(ctx, strings.NewReader("b"), "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
}

func TestConcurrentReadersAreIndependent(t *testing.T) {
	store := newStore(t)
	payload := []byte("0123456789")
	id, err := store.Put(context.Background(), bytes.NewReader(payload), "x.bin")
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc, err := store.Get(context.Background(), id)
			if err != nil {
				errs <- err
				return
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(data, payload) {
				errs <- errors.New("payload mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	id, err := store.Put(ctx, strings.NewReader("bye"), "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	_, err = store.Get(ctx, id)
	if !errors.Is(err, blobstore.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	var storageErr *blobstore.StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "get" || storageErr.ID != id {
		t.Fatalf("expected StorageError, got %#v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("source broke") }

func TestPutFailureLeavesNoArtifact(t *testing.T) {
	store := newStore(t)
	_, err := store.Put(context.Background(), failingReader{}, "broken.wav")
	var storageErr *blobstore.StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "put" {
		t.Fatalf("expected put StorageError, got %v", err)
	}
	var leftovers []string
	_ = filepath.WalkDir(store.Root(), func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			leftovers = append(leftovers, path)
		}
		return nil
	})
	if len(leftovers) != 0 {
		t.Fatalf("expected no files after failed put, got %v", leftovers)
	}
}

func TestGetRejectsTraversal(t *testing.T) {
	store := newStore(t)
	if _, err := store.Get(context.Background(), "../../etc/passwd"); err == nil {
		t.Fatal("expected invalid id error")
	}
}

func TestMaterializeAndPutFile(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	id, err := store.Put(ctx, strings.NewReader("subtitle"), "cues.srt")
	if err != nil {
		t.Fatal(err)
	}
	path, err := blobstore.Materialize(ctx, store, id, t.TempDir(), "cues.srt")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "subtitle" {
		t.Fatalf("materialized content %q %v", data, err)
	}
	copyID, err := blobstore.PutFile(ctx, store, path)
	if err != nil {
		t.Fatalf("PutFile: %v", err)
	}
	if got := readAll(t, store, copyID); string(got) != "subtitle" {
		t.Fatalf("unexpected copy content %q", got)
	}
}

func TestPutFileStreamsLargeArtifact(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "final.mp4")
	const size = 3*32*1024 + 17
	testsupport.WriteFile(t, path, size)

	id, err := blobstore.PutFile(ctx, store, path)
	if err != nil {
		t.Fatalf("PutFile: %v", err)
	}
	info, err := store.Stat(ctx, id)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size != size || !strings.HasSuffix(id, ".mp4") {
		t.Fatalf("unexpected artifact info: %+v", info)
	}
}
