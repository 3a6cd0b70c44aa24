package daemonrun

import (
	"context"
	"testing"
	"time"

	"promptreel/internal/logging"
	"promptreel/internal/stage"
	"promptreel/internal/testsupport"
)

func TestBuildStagesWiresEveryStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	set, err := BuildStages(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("BuildStages: %v", err)
	}
	handlers := map[string]stage.Handler{
		"metadata":    set.Metadata,
		"acquisition": set.Acquisition,
		"normalize":   set.Normalization,
		"transcribe":  set.Transcription,
		"composition": set.Composition,
		"publish":     set.Publish,
	}
	for name, handler := range handlers {
		if handler == nil {
			t.Fatalf("stage %s not wired", name)
		}
		health := handler.HealthCheck(context.Background())
		if !health.Ready {
			t.Errorf("stage %s not ready: %s", name, health.Detail)
		}
	}
}

func TestBuildStagesRejectsUnknownProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.Provider = "carrier-pigeon"
	if _, err := BuildStages(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRetryPolicyFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retry.MaxAttempts = 4
	cfg.Retry.BaseDelayMillis = 250
	cfg.Retry.AttemptTimeoutSeconds = 30

	policy := RetryPolicy(cfg, logging.NewNop())
	if policy.MaxAttempts != 4 || policy.BaseDelay != 250*time.Millisecond || policy.AttemptTimeout != 30*time.Second {
		t.Fatalf("unexpected policy: %+v", policy)
	}
	if policy.Delay(3) != time.Second {
		t.Fatalf("expected third delay of 1s, got %v", policy.Delay(3))
	}
	if policy.Logger == nil {
		t.Fatal("expected logger on policy")
	}
}
