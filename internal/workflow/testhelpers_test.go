package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"promptreel/internal/jobs"
	"promptreel/internal/stage"
	"promptreel/internal/workflow"
)

type stubStage struct {
	name       string
	execute    func(ctx context.Context, job *jobs.Job) error
	prepareErr error
	health     stage.Health

	mu    sync.Mutex
	calls int
}

func newStubStage(name string, execute func(ctx context.Context, job *jobs.Job) error) *stubStage {
	return &stubStage{name: name, execute: execute, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(context.Context, *jobs.Job) error {
	return s.prepareErr
}

func (s *stubStage) Execute(ctx context.Context, job *jobs.Job) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.execute == nil {
		return nil
	}
	return s.execute(ctx, job)
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

func (s *stubStage) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (n *recordingNotifier) NotifyJobCompleted(_ context.Context, title, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, title)
	return nil
}

func (n *recordingNotifier) NotifyJobFailed(_ context.Context, jobID, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, jobID)
	return nil
}

func (n *recordingNotifier) TestNotification(context.Context) error { return nil }

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.completed), len(n.failed)
}

func waitForStatus(t *testing.T, repo jobs.Repository, id string, want jobs.Status) *jobs.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := repo.FindByID(context.Background(), id)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if job.Status == want {
			return job
		}
		if job.Status.IsTerminal() {
			t.Fatalf("job reached %s (%s), wanted %s", job.Status, job.ErrorMessage, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", want)
	return nil
}

// completingStages returns a StageSet whose stubs write every output the
// matching real stage owns.
func completingStages() (workflow.StageSet, map[string]*stubStage) {
	stubs := map[string]*stubStage{
		"metadata": newStubStage("metadata", func(_ context.Context, job *jobs.Job) error {
			_ = job.SetScript("Owls hunt at night.")
			_ = job.SetTitle("Night Owls")
			_ = job.SetDescription("All about owls.")
			_ = job.SetTags([]string{"owls"})
			_ = job.SetImageSearchQuery("owl")
			return job.SetVideoSearchQuery("owl flying")
		}),
		"acquisition": newStubStage("acquisition", func(_ context.Context, job *jobs.Job) error {
			_ = job.SetAudioArtifactID("audio.mp3")
			_ = job.SetVideoClipArtifactIDs([]string{"c1.mp4", "c2.mp4"})
			return job.SetThumbnailArtifactID("thumb.png")
		}),
		"normalize": newStubStage("normalize", func(_ context.Context, job *jobs.Job) error {
			return job.SetNormalizedAudioArtifactID("audio.wav")
		}),
		"transcribe": newStubStage("transcribe", func(_ context.Context, job *jobs.Job) error {
			return job.SetSubtitleArtifactID("subs.srt")
		}),
		"composition": newStubStage("composition", func(_ context.Context, job *jobs.Job) error {
			return job.SetFinalArtifactID("final.mp4")
		}),
		"publish": newStubStage("publish", func(_ context.Context, job *jobs.Job) error {
			return job.SetPublication("yt-1", "https://www.youtube.com/watch?v=yt-1")
		}),
	}
	set := workflow.StageSet{
		Metadata:      stubs["metadata"],
		Acquisition:   stubs["acquisition"],
		Normalization: stubs["normalize"],
		Transcription: stubs["transcribe"],
		Composition:   stubs["composition"],
		Publish:       stubs["publish"],
	}
	return set, stubs
}
