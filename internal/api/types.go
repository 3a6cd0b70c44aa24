package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// CreateJobRequest is the body accepted by POST /api/jobs.
type CreateJobRequest struct {
	Prompt string `json:"prompt" yaml:"prompt"`
}

// Job describes a pipeline job in a transport-friendly format.
type Job struct {
	ID               string       `json:"id" yaml:"id"`
	Prompt           string       `json:"prompt" yaml:"prompt"`
	Status           string       `json:"status" yaml:"status"`
	Stage            string       `json:"stage,omitempty" yaml:"stage,omitempty"`
	Title            string       `json:"title,omitempty" yaml:"title,omitempty"`
	Description      string       `json:"description,omitempty" yaml:"description,omitempty"`
	Script           string       `json:"script,omitempty" yaml:"script,omitempty"`
	Tags             []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	ImageSearchQuery string       `json:"imageSearchQuery,omitempty" yaml:"imageSearchQuery,omitempty"`
	VideoSearchQuery string       `json:"videoSearchQuery,omitempty" yaml:"videoSearchQuery,omitempty"`
	Artifacts        JobArtifacts `json:"artifacts" yaml:"artifacts"`
	PublishedID      string       `json:"publishedId,omitempty" yaml:"publishedId,omitempty"`
	PublishedURL     string       `json:"publishedUrl,omitempty" yaml:"publishedUrl,omitempty"`
	ErrorMessage     string       `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	CreatedAt        string       `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt        string       `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	StartedAt        string       `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	EndedAt          string       `json:"endedAt,omitempty" yaml:"endedAt,omitempty"`
}

// JobArtifacts lists the blob identifiers recorded on a job.
type JobArtifacts struct {
	Audio           string   `json:"audio,omitempty" yaml:"audio,omitempty"`
	VideoClips      []string `json:"videoClips,omitempty" yaml:"videoClips,omitempty"`
	Music           string   `json:"music,omitempty" yaml:"music,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	NormalizedAudio string   `json:"normalizedAudio,omitempty" yaml:"normalizedAudio,omitempty"`
	Subtitles       string   `json:"subtitles,omitempty" yaml:"subtitles,omitempty"`
	Final           string   `json:"final,omitempty" yaml:"final,omitempty"`
}

// JobListResponse wraps a collection of jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name" yaml:"name"`
	Ready  bool   `json:"ready" yaml:"ready"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Health summarizes daemon and workflow state for GET /api/health.
type Health struct {
	Status      string         `json:"status" yaml:"status"`
	Running     bool           `json:"running" yaml:"running"`
	ActiveJobs  []string       `json:"activeJobs" yaml:"activeJobs"`
	JobCounts   map[string]int `json:"jobCounts" yaml:"jobCounts"`
	LastError   string         `json:"lastError,omitempty" yaml:"lastError,omitempty"`
	LastJob     *Job           `json:"lastJob,omitempty" yaml:"lastJob,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth" yaml:"stageHealth"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
}

// Health status values.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthStopped  = "stopped"
)
