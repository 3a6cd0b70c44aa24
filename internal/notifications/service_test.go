package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptreel/internal/config"
	"promptreel/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		got.body = string(data)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, got
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyJobFailed(context.Background(), "job-1", "metadata", "boom"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNotifyJobCompleted(t *testing.T) {
	server, got := newServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyJobCompleted(context.Background(), "Night Owls", "https://www.youtube.com/watch?v=abc"); err != nil {
		t.Fatalf("NotifyJobCompleted: %v", err)
	}
	if got.title != "promptreel - Published" || got.priority != "high" || got.tags != "promptreel,job,completed" {
		t.Fatalf("unexpected headers: %+v", got)
	}
	if !strings.Contains(got.body, "Night Owls") || !strings.HasSuffix(got.body, "watch?v=abc") {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestNotifyJobFailed(t *testing.T) {
	server, got := newServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyJobFailed(context.Background(), "job-1", "composition", "ffmpeg exit code 1"); err != nil {
		t.Fatalf("NotifyJobFailed: %v", err)
	}
	if got.body != "❌ Job job-1 failed during composition: ffmpeg exit code 1" {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestNtfyErrorStatus(t *testing.T) {
	server, _ := newServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	if err := notifications.NewService(&cfg).TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
