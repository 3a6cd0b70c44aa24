package daemon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"promptreel/internal/api"
	"promptreel/internal/config"
	"promptreel/internal/daemon"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/stage"
	"promptreel/internal/testsupport"
	"promptreel/internal/workflow"
)

// fillStage records every output a job needs in one step.
type fillStage struct{}

func (fillStage) Prepare(context.Context, *jobs.Job) error { return nil }

func (fillStage) Execute(_ context.Context, job *jobs.Job) error {
	for _, err := range []error{
		job.SetScript("Owls hunt at night."),
		job.SetTitle("Night Owls"),
		job.SetAudioArtifactID("audio"),
		job.SetVideoClipArtifactIDs([]string{"clip"}),
		job.SetThumbnailArtifactID("thumb"),
		job.SetNormalizedAudioArtifactID("wav"),
		job.SetSubtitleArtifactID("srt"),
		job.SetFinalArtifactID("final"),
		job.SetPublication("vid123", "https://www.youtube.com/watch?v=vid123"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (fillStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("fill")
}

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store, err := jobs.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{Metadata: fillStage{}})
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := d.Status(ctx)
	if !status.Running || !status.Workflow.Running {
		t.Fatalf("expected daemon and workflow running: %+v", status)
	}
	if status.LockFilePath != cfg.LockPath() || status.DatabasePath != cfg.DatabasePath() {
		t.Fatalf("unexpected paths: %+v", status)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon stopped")
	}
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemon(t, cfg)
	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	second := newDaemon(t, cfg)
	if err := second.Start(ctx); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestDaemonServesJobsOverHTTP(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	client, err := api.NewClient(d.Address())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	created, err := client.CreateJob(ctx, "facts about owls")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		job, err := client.GetJob(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if job.Status == string(jobs.StatusCompleted) {
			if job.PublishedID != "vid123" {
				t.Fatalf("unexpected published id %q", job.PublishedID)
			}
			break
		}
		if job.Status == string(jobs.StatusFailed) {
			t.Fatalf("job failed: %s", job.ErrorMessage)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete, last status %s", job.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}

	health, err := client.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !health.Running || health.Status != api.HealthOK {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	sent, msg, err := d.TestNotification(context.Background())
	if sent || err != nil || msg != "ntfy topic not configured" {
		t.Fatalf("unexpected result: %v %q %v", sent, msg, err)
	}
}
