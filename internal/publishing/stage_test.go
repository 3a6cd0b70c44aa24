package publishing_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"promptreel/internal/jobs"
	"promptreel/internal/publishing"
	"promptreel/internal/retry"
	"promptreel/internal/services"
	"promptreel/internal/services/youtube"
	"promptreel/internal/testsupport"
)

type fakePublisher struct {
	failures int
	calls    int
	bodies   []string
	meta     youtube.Metadata
	id       string
}

func (f *fakePublisher) Upload(_ context.Context, meta youtube.Metadata, media io.Reader) (youtube.Result, error) {
	f.calls++
	data, _ := io.ReadAll(media)
	f.bodies = append(f.bodies, string(data))
	f.meta = meta
	if f.calls <= f.failures {
		return youtube.Result{}, services.Wrap(services.ErrTransient, "youtube", "upload", "503", nil)
	}
	return youtube.Result{ID: f.id}, nil
}

func quickPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond,
		Sleep: func(context.Context, time.Duration) error { return nil }}
}

func newJob(t *testing.T, publisher *fakePublisher) (*jobs.Job, *publishing.Stage) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenBlobStore(t, cfg)
	id, err := store.Put(context.Background(), strings.NewReader("final-video"), "final.mp4")
	if err != nil {
		t.Fatal(err)
	}
	job, _ := jobs.New("facts about owls", time.Now())
	_ = job.SetTitle("Night Owls")
	_ = job.SetDescription("All about owls.")
	_ = job.SetTags([]string{"owls", "night"})
	_ = job.SetFinalArtifactID(id)
	return job, publishing.NewStage(publisher, store, quickPolicy(), publishing.Options{DefaultLanguage: "english"}, nil)
}

func TestExecuteRetriesAndRecordsPublication(t *testing.T) {
	publisher := &fakePublisher{failures: 2, id: "abc123"}
	job, st := newJob(t, publisher)
	if err := st.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if publisher.calls != 3 {
		t.Fatalf("expected 3 upload attempts, got %d", publisher.calls)
	}
	for i, body := range publisher.bodies {
		if body != "final-video" {
			t.Fatalf("attempt %d streamed %q", i+1, body)
		}
	}
	if job.PublishedID != "abc123" || job.PublishedURL != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("unexpected publication %q %q", job.PublishedID, job.PublishedURL)
	}
	meta := publisher.meta
	if meta.CategoryID != "28" || meta.PrivacyStatus != "private" || meta.DefaultLanguage != "en" || meta.MadeForKids {
		t.Fatalf("unexpected defaults %+v", meta)
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	publisher := &fakePublisher{failures: 10, id: "abc123"}
	job, st := newJob(t, publisher)
	err := st.Execute(context.Background(), job)
	if !errors.Is(err, retry.ErrExhausted) || !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected exhausted transient error, got %v", err)
	}
	if job.PublishedID != "" {
		t.Fatal("publication should stay empty")
	}
}

func TestExecuteRejectsEmptyID(t *testing.T) {
	job, st := newJob(t, &fakePublisher{})
	if err := st.Execute(context.Background(), job); !errors.Is(err, services.ErrEmptyResult) {
		t.Fatalf("expected empty result, got %v", err)
	}
}

func TestBuildMetadataAppliesLimits(t *testing.T) {
	job, _ := jobs.New("facts about owls", time.Now())
	_ = job.SetTitle(strings.Repeat("t", 150))
	_ = job.SetDescription(strings.Repeat("é", 6000))
	var tags []string
	for i := 0; i < 80; i++ {
		tags = append(tags, "tagword")
	}
	_ = job.SetTags(tags)

	meta := publishing.BuildMetadata(job, publishing.Options{CategoryID: "22", PrivacyStatus: "Unlisted", DefaultLanguage: "pt-BR"})
	if got := len([]rune(meta.Title)); got != publishing.MaxTitleLength {
		t.Fatalf("title length %d", got)
	}
	if got := len([]rune(meta.Description)); got != publishing.MaxDescriptionLength {
		t.Fatalf("description length %d", got)
	}
	if joined := strings.Join(meta.Tags, ","); len(joined) > publishing.MaxTagsLength || len(meta.Tags) != 62 {
		t.Fatalf("unexpected tags: %d kept, %d chars", len(meta.Tags), len(joined))
	}
	if meta.CategoryID != "22" || meta.PrivacyStatus != "unlisted" || meta.DefaultLanguage != "pt-BR" {
		t.Fatalf("unexpected options %+v", meta)
	}
}
