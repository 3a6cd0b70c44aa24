package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"promptreel/internal/config"
	"promptreel/internal/daemon"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/stage"
	"promptreel/internal/testsupport"
	"promptreel/internal/workflow"
)

// fillStage records every output a job needs so jobs complete in one step.
type fillStage struct{}

func (fillStage) Prepare(context.Context, *jobs.Job) error { return nil }

func (fillStage) Execute(_ context.Context, job *jobs.Job) error {
	for _, err := range []error{
		job.SetScript("Owls hunt at night."),
		job.SetTitle("Night Owls"),
		job.SetTags([]string{"owls", "birds"}),
		job.SetAudioArtifactID("audio"),
		job.SetVideoClipArtifactIDs([]string{"clip-1", "clip-2"}),
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

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	apiAddr    string
	configPath string
}

// setupCLIConfig writes a config file for a fresh temp tree and points HOME
// at it so defaults never touch the real home directory.
func setupCLIConfig(t *testing.T) (*config.Config, string) {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe", "uvx"))
	homeDir := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("NO_COLOR", "1")

	configPath := filepath.Join(homeDir, ".config", "promptreel", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)
	return cfg, configPath
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg, configPath := setupCLIConfig(t)
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
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		apiAddr:    d.Address(),
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, apiAddr, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if apiAddr != "" {
		flags = append(flags, "--api", apiAddr)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
work_dir = %q
log_dir = %q
api_bind = %q

[storage]
blob_dir = %q

[llm]
api_key = %q

[speech]
api_key = %q

[media]
pixabay_api_key = %q

[publish]
client_id = %q
client_secret = %q
refresh_token = %q

[retry]
base_delay_ms = 1
`,
		cfg.Paths.DataDir,
		cfg.Paths.WorkDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Storage.BlobDir,
		cfg.LLM.APIKey,
		cfg.Speech.APIKey,
		cfg.Media.PixabayAPIKey,
		cfg.Publish.ClientID,
		cfg.Publish.ClientSecret,
		cfg.Publish.RefreshToken,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
