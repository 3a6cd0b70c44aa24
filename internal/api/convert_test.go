package api

import (
	"testing"
	"time"

	"promptreel/internal/jobs"
	"promptreel/internal/stage"
	"promptreel/internal/workflow"
)

func TestFromJobHidesURLUntilPublished(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	job, err := jobs.New("facts about owls", now)
	if err != nil {
		t.Fatal(err)
	}
	job.PublishedURL = "https://example.invalid/watch"

	dto := FromJob(job)
	if dto.PublishedURL != "" {
		t.Fatalf("expected URL hidden without a published id, got %q", dto.PublishedURL)
	}
	if dto.CreatedAt != "2025-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected timestamp %q", dto.CreatedAt)
	}
	if dto.StartedAt != "" || dto.EndedAt != "" {
		t.Fatalf("expected empty lifecycle timestamps: %+v", dto)
	}

	_ = job.SetPublication("abc123", "https://www.youtube.com/watch?v=abc123")
	dto = FromJob(job)
	if dto.PublishedID != "abc123" || dto.PublishedURL == "" {
		t.Fatalf("expected publication fields: %+v", dto)
	}
}

func TestFromStatusSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary workflow.StatusSummary
		want    string
	}{
		{"stopped", workflow.StatusSummary{}, HealthStopped},
		{"ok", workflow.StatusSummary{Running: true, StageHealth: []stage.Health{stage.Healthy("metadata")}}, HealthOK},
		{"degraded", workflow.StatusSummary{Running: true, StageHealth: []stage.Health{
			stage.Healthy("metadata"), stage.Unhealthy("publish", "missing credentials"),
		}}, HealthDegraded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FromStatusSummary(tc.summary)
			if got.Status != tc.want {
				t.Fatalf("status = %q, want %q", got.Status, tc.want)
			}
			if got.ActiveJobs == nil || got.JobCounts == nil {
				t.Fatalf("expected non-nil collections: %+v", got)
			}
		})
	}
}
