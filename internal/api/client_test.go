package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptreel/internal/api"
	"promptreel/internal/logging"
	"promptreel/internal/testsupport"
	"promptreel/internal/workflow"
)

func TestClientRoundTrip(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.handler)
	defer server.Close()

	client, err := api.NewClient(strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()

	created, err := client.CreateJob(ctx, "facts about owls")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if created.Status != "pending" {
		t.Fatalf("unexpected status %q", created.Status)
	}

	fetched, err := client.GetJob(ctx, created.ID)
	if err != nil || fetched.ID != created.ID {
		t.Fatalf("GetJob: %+v %v", fetched, err)
	}

	list, err := client.ListJobs(ctx, 5)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListJobs: %v %v", list, err)
	}

	if _, err := client.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestClientSurfacesStatusErrors(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.handler)
	defer server.Close()

	client, err := api.NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.CreateJob(context.Background(), "hi")
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 status error, got %v", err)
	}
	if !strings.Contains(statusErr.Message, "at least 5 characters") {
		t.Fatalf("unexpected message %q", statusErr.Message)
	}

	_, err = client.GetJob(context.Background(), "missing")
	if !api.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientReportsUnavailableDaemon(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := api.NewClient(addr)
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Health(context.Background())
	if !errors.Is(err, api.ErrAPIUnavailable) {
		t.Fatalf("expected ErrAPIUnavailable, got %v", err)
	}
}

func TestNewClientRejectsEmptyBind(t *testing.T) {
	if _, err := api.NewClient("  "); err == nil {
		t.Fatal("expected error for empty bind")
	}
}

func TestTokenProtectsJobRoutes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.API.Token = "s3cret"
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, logging.NewNop())
	server := httptest.NewServer(api.NewServer(cfg, manager, store, logging.NewNop()).Handler())
	defer server.Close()
	ctx := context.Background()

	anonymous, err := api.NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	var statusErr *api.StatusError
	if _, err := anonymous.ListJobs(ctx, 0); !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if _, err := anonymous.Health(ctx); err != nil {
		t.Fatalf("health should stay open: %v", err)
	}

	authed, err := api.NewClient(server.URL, api.WithToken("s3cret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := authed.CreateJob(ctx, "facts about owls"); err != nil {
		t.Fatalf("CreateJob with token: %v", err)
	}
}
