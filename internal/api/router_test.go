package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"promptreel/internal/api"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/stage"
	"promptreel/internal/testsupport"
	"promptreel/internal/workflow"
)

type apiFixture struct {
	store   jobs.Repository
	manager *workflow.Manager
	handler http.Handler
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.API.AllowedOrigins = []string{"http://localhost:3000"}
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, logging.NewNop())
	srv := api.NewServer(cfg, manager, store, logging.NewNop())
	return &apiFixture{store: store, manager: manager, handler: srv.Handler()}
}

func (f *apiFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestCreateJobReturnsAccepted(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/jobs", `{"prompt":"  facts about owls  "}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
	var job api.Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.Status != string(jobs.StatusPending) || job.Prompt != "facts about owls" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if got := w.Header().Get("Location"); got != "/api/jobs/"+job.ID {
		t.Fatalf("unexpected location %q", got)
	}
	if _, err := f.store.FindByID(context.Background(), job.ID); err != nil {
		t.Fatalf("expected job persisted: %v", err)
	}
}

func TestCreateJobRejectsShortPrompt(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/jobs", `{"prompt":"hi"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Error, "at least 5 characters") {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
	all, err := f.store.ListByStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("expected nothing persisted, found %d jobs", len(all))
	}
}

func TestCreateJobRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/jobs", `{"prompt":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetJob(t *testing.T) {
	f := newFixture(t)
	job := testsupport.NewJob(t, f.store, "facts about owls")

	w := f.do(t, http.MethodGet, "/api/jobs/"+job.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got api.Job
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != job.ID {
		t.Fatalf("unexpected id %q", got.ID)
	}

	missing := f.do(t, http.MethodGet, "/api/jobs/does-not-exist", "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.Code)
	}
}

func TestListJobsAppliesLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 25; i++ {
		job, err := jobs.New("prompt about something", base.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatal(err)
		}
		if err := f.store.Save(ctx, job); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, job.ID)
	}

	tests := []struct {
		name  string
		query string
		code  int
		count int
	}{
		{"default", "", http.StatusOK, 20},
		{"explicit", "?limit=3", http.StatusOK, 3},
		{"clamped", "?limit=5000", http.StatusOK, 25},
		{"zero", "?limit=0", http.StatusBadRequest, 0},
		{"garbage", "?limit=abc", http.StatusBadRequest, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/jobs"+tc.query, "")
			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, w.Code)
			}
			if tc.code != http.StatusOK {
				return
			}
			var resp api.JobListResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Jobs) != tc.count {
				t.Fatalf("expected %d jobs, got %d", tc.count, len(resp.Jobs))
			}
			if resp.Jobs[0].ID != ids[len(ids)-1] {
				t.Fatalf("expected newest first, got %s", resp.Jobs[0].ID)
			}
		})
	}
}

func TestHealthReportsStagesAndCounts(t *testing.T) {
	f := newFixture(t)
	testsupport.NewJob(t, f.store, "pending prompt")
	f.manager.ConfigureStages(workflow.StageSet{
		Metadata: healthStage{health: stage.Healthy("metadata")},
		Publish:  healthStage{health: stage.Unhealthy("publish", "youtube credentials missing")},
	})

	w := f.do(t, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var health api.Health
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Running || health.Status != api.HealthStopped {
		t.Fatalf("manager was never started: %+v", health)
	}
	if health.JobCounts[string(jobs.StatusPending)] != 1 {
		t.Fatalf("unexpected counts: %v", health.JobCounts)
	}
	if len(health.StageHealth) != 2 || health.StageHealth[1].Name != "publish" || health.StageHealth[1].Ready {
		t.Fatalf("unexpected stage health: %+v", health.StageHealth)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

type healthStage struct {
	health stage.Health
}

func (healthStage) Prepare(context.Context, *jobs.Job) error { return nil }
func (healthStage) Execute(context.Context, *jobs.Job) error { return nil }
func (s healthStage) HealthCheck(context.Context) stage.Health {
	return s.health
}
