package transcription_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"promptreel/internal/jobs"
	"promptreel/internal/retry"
	"promptreel/internal/services"
	"promptreel/internal/services/whisperx"
	"promptreel/internal/testsupport"
	"promptreel/internal/transcription"
)

const sampleSRT = "1\n00:00:00,000 --> 00:00:02,500\nOwls hunt at night.\n\n2\n00:00:02,500 --> 00:00:04,000\nThey fly silently.\n"

func newJob(t *testing.T, content string) (*jobs.Job, *transcription.Stage, func(whisperx.CommandRunner)) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenBlobStore(t, cfg)
	id, err := store.Put(context.Background(), strings.NewReader("RIFF"), "narration.wav")
	if err != nil {
		t.Fatal(err)
	}
	job, _ := jobs.New("facts about owls", time.Now())
	_ = job.SetNormalizedAudioArtifactID(id)

	service := whisperx.NewService(whisperx.Config{Language: "english"})
	service.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		var source, outDir string
		for i, arg := range args {
			if arg == "whisperx" && i+1 < len(args) {
				source = args[i+1]
			}
			if arg == "--output_dir" && i+1 < len(args) {
				outDir = args[i+1]
			}
		}
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		return nil, os.WriteFile(filepath.Join(outDir, base+".srt"), []byte(content), 0o644)
	})
	policy := retry.Policy{
		MaxAttempts: 2,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
	st := transcription.NewStage(service, store, policy, cfg.Paths.WorkDir, nil)
	return job, st, service.WithCommandRunner
}

func TestExecuteStoresSubtitles(t *testing.T) {
	job, st, _ := newJob(t, sampleSRT)
	if err := st.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasSuffix(job.SubtitleArtifactID, ".srt") {
		t.Fatalf("unexpected subtitle id %q", job.SubtitleArtifactID)
	}
}

func TestExecuteFailsOnEmptyTranscript(t *testing.T) {
	job, st, _ := newJob(t, "\n\n")
	err := st.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrEmptyResult) {
		t.Fatalf("expected empty result, got %v", err)
	}
	if job.SubtitleArtifactID != "" {
		t.Fatal("subtitle id should stay empty")
	}
}

func TestExecuteSurfacesToolFailure(t *testing.T) {
	job, st, setRunner := newJob(t, sampleSRT)
	setRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("CUDA out of memory"), errors.New("exit status 1")
	})
	if err := st.Execute(context.Background(), job); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestExecuteRetriesTranscription(t *testing.T) {
	job, st, setRunner := newJob(t, sampleSRT)
	calls := 0
	setRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls++
		if calls == 1 {
			return []byte("model download interrupted"), errors.New("exit status 1")
		}
		var source, outDir string
		for i, arg := range args {
			if arg == "whisperx" && i+1 < len(args) {
				source = args[i+1]
			}
			if arg == "--output_dir" && i+1 < len(args) {
				outDir = args[i+1]
			}
		}
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		return nil, os.WriteFile(filepath.Join(outDir, base+".srt"), []byte(sampleSRT), 0o644)
	})
	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two transcriber runs, got %d", calls)
	}
	if !strings.HasSuffix(job.SubtitleArtifactID, ".srt") {
		t.Fatalf("unexpected subtitle id %q", job.SubtitleArtifactID)
	}
}

func TestCountCues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.srt")
	if err := os.WriteFile(path, []byte(strings.ReplaceAll(sampleSRT, "\n", "\r\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	count, err := transcription.CountCues(path)
	if err != nil || count != 2 {
		t.Fatalf("CountCues = %d, %v", count, err)
	}
	if _, err := transcription.CountCues(filepath.Join(dir, "missing.srt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
