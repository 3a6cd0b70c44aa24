package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/services"
)

// maxRequestBody bounds POST bodies; prompts are short.
const maxRequestBody = 64 << 10

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	job, err := s.creator.Create(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		s.logger.Error("create job failed", logging.Error(err),
			logging.String(logging.FieldEventType, "api_create_failed"))
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}
	w.Header().Set("Location", "/api/jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, FromJob(job))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job, err := s.reader.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("load job failed", logging.Error(err),
			logging.JobID(id),
			logging.String(logging.FieldEventType, "api_get_failed"))
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, FromJob(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := s.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.reader.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("list jobs failed", logging.Error(err),
			logging.String(logging.FieldEventType, "api_list_failed"))
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	writeJSON(w, http.StatusOK, JobListResponse{Jobs: FromJobs(list)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FromStatusSummary(s.creator.Status(r.Context())))
}

// parseLimit applies the default for an empty value and clamps to the
// configured maximum.
func (s *Server) parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return min(limit, s.maxLimit), nil
}

// validationMessage strips the marker prefix so clients see the reason only.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := services.ErrValidation.Error() + ": "
	msg = strings.TrimPrefix(msg, prefix)
	return strings.TrimPrefix(msg, "create job: ")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
