package acquisition

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"promptreel/internal/blobstore"
	"promptreel/internal/jobs"
	"promptreel/internal/retry"
	"promptreel/internal/services"
	"promptreel/internal/services/pixabay"
	"promptreel/internal/services/speech"
)

type fakeSpeech struct {
	failures int
	calls    int
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text, voice string) (*speech.Audio, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("tts unavailable")
	}
	return &speech.Audio{Body: io.NopCloser(strings.NewReader("mp3:" + text)), Extension: ".mp3"}, nil
}

type fakeMedia struct {
	mu            sync.Mutex
	clips         int
	illustrations int
	music         bool
	musicErr      error
	musicQuery    string
}

func (f *fakeMedia) SearchVideos(ctx context.Context, query string, perPage int) ([]pixabay.Asset, error) {
	var out []pixabay.Asset
	for i := 0; i < f.clips; i++ {
		out = append(out, pixabay.Asset{Kind: pixabay.KindVideo, ID: int64(i + 1), URL: "clip.mp4"})
	}
	return out, nil
}

func (f *fakeMedia) SearchIllustrations(ctx context.Context, query string, perPage int) ([]pixabay.Asset, error) {
	var out []pixabay.Asset
	for i := 0; i < f.illustrations; i++ {
		out = append(out, pixabay.Asset{Kind: pixabay.KindIllustration, ID: int64(i + 1), URL: "i.png"})
	}
	return out, nil
}

func (f *fakeMedia) SearchMusic(ctx context.Context, query string) (pixabay.Asset, bool, error) {
	f.mu.Lock()
	f.musicQuery = query
	f.mu.Unlock()
	if f.musicErr != nil {
		return pixabay.Asset{}, false, f.musicErr
	}
	return pixabay.Asset{Kind: pixabay.KindMusic, ID: 7, URL: "m.mp3"}, f.music, nil
}

func (f *fakeMedia) Open(ctx context.Context, asset pixabay.Asset) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(asset.Filename())), nil
}

type fakeRenderer struct {
	fail  bool
	empty bool
}

func (f fakeRenderer) Render(ctx context.Context, text, dir string) (string, error) {
	if f.fail {
		return "", services.Wrap(services.ErrExternalTool, "thumbnail", "render", "no drawtext", nil)
	}
	if f.empty {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "thumbnail.png")
	return path, os.WriteFile(path, []byte("png:"+text), 0o644)
}

func newJob(t *testing.T) *jobs.Job {
	t.Helper()
	job, err := jobs.New("facts about owls", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	_ = job.SetScript("Owls hunt at night.")
	_ = job.SetTitle("Night Owls")
	_ = job.SetTags([]string{"owls", "night"})
	_ = job.SetVideoSearchQuery("owl flying")
	_ = job.SetImageSearchQuery("owl illustration")
	return job
}

func newStage(t *testing.T, synth Synthesizer, media MediaSearcher, renderer ThumbnailRenderer) (*Stage, *blobstore.FSStore) {
	t.Helper()
	store, err := blobstore.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond,
		Sleep: func(context.Context, time.Duration) error { return nil }}
	return NewStage(synth, media, renderer, store, policy, Options{WorkDir: t.TempDir(), ClipCount: 3, Voice: "v"}, nil), store
}

func readArtifact(t *testing.T, store blobstore.Store, id string) string {
	t.Helper()
	rc, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get %s: %v", id, err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return string(data)
}

func TestExecuteStoresEveryArtifact(t *testing.T) {
	media := &fakeMedia{clips: 4, music: true}
	st, store := newStage(t, &fakeSpeech{failures: 1}, media, fakeRenderer{})
	job := newJob(t)

	if err := st.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := readArtifact(t, store, job.AudioArtifactID); got != "mp3:Owls hunt at night." {
		t.Fatalf("unexpected narration %q", got)
	}
	if len(job.VideoClipArtifactIDs) != 3 {
		t.Fatalf("expected clip count capped at 3, got %d", len(job.VideoClipArtifactIDs))
	}
	if got := readArtifact(t, store, job.ThumbnailArtifactID); got != "png:Owls hunt at night." {
		t.Fatalf("unexpected thumbnail %q", got)
	}
	if job.MusicArtifactID == "" || media.musicQuery != "owls" {
		t.Fatalf("expected music for first tag, got id=%q query=%q", job.MusicArtifactID, media.musicQuery)
	}
}

func TestThumbnailFallsBackToIllustration(t *testing.T) {
	st, store := newStage(t, &fakeSpeech{}, &fakeMedia{clips: 1, illustrations: 2}, fakeRenderer{fail: true})
	job := newJob(t)
	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := readArtifact(t, store, job.ThumbnailArtifactID); got != "illustration_1.png" {
		t.Fatalf("unexpected fallback thumbnail %q", got)
	}
}

func TestThumbnailRendersFromScript(t *testing.T) {
	st, store := newStage(t, &fakeSpeech{}, &fakeMedia{clips: 1}, fakeRenderer{})
	job := newJob(t)
	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := readArtifact(t, store, job.ThumbnailArtifactID); got != "png:"+job.Script {
		t.Fatalf("expected thumbnail rendered from script, got %q", got)
	}
}

func TestEmptyRenderFallsBackToIllustration(t *testing.T) {
	st, store := newStage(t, &fakeSpeech{}, &fakeMedia{clips: 1, illustrations: 1}, fakeRenderer{empty: true})
	job := newJob(t)
	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := readArtifact(t, store, job.ThumbnailArtifactID); got != "illustration_1.png" {
		t.Fatalf("unexpected fallback thumbnail %q", got)
	}
}

func TestThumbnailFailsWhenFallbackEmpty(t *testing.T) {
	st, _ := newStage(t, &fakeSpeech{}, &fakeMedia{clips: 1}, fakeRenderer{fail: true})
	err := st.Execute(context.Background(), newJob(t))
	if !errors.Is(err, services.ErrEmptyResult) {
		t.Fatalf("expected empty result, got %v", err)
	}
}

func TestNoClipsFailsStage(t *testing.T) {
	st, _ := newStage(t, &fakeSpeech{}, &fakeMedia{}, fakeRenderer{})
	err := st.Execute(context.Background(), newJob(t))
	if !errors.Is(err, services.ErrEmptyResult) {
		t.Fatalf("expected empty result, got %v", err)
	}
}

func TestMusicIsBestEffort(t *testing.T) {
	for _, media := range []*fakeMedia{
		{clips: 1, music: false},
		{clips: 1, musicErr: errors.New("music api down")},
	} {
		st, _ := newStage(t, &fakeSpeech{}, media, fakeRenderer{})
		job := newJob(t)
		if err := st.Execute(context.Background(), job); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if job.MusicArtifactID != "" {
			t.Fatalf("expected no music, got %q", job.MusicArtifactID)
		}
	}
}

func TestNarrationExhaustionFailsStage(t *testing.T) {
	st, _ := newStage(t, &fakeSpeech{failures: 10}, &fakeMedia{clips: 1}, fakeRenderer{})
	err := st.Execute(context.Background(), newJob(t))
	if !errors.Is(err, retry.ErrExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
}

func TestPrepareRequiresMetadata(t *testing.T) {
	st, _ := newStage(t, &fakeSpeech{}, &fakeMedia{}, fakeRenderer{})
	job, _ := jobs.New("facts about owls", time.Now())
	if err := st.Prepare(context.Background(), job); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
