package api

import (
	"slices"
	"sort"
	"time"

	"promptreel/internal/jobs"
	"promptreel/internal/stage"
	"promptreel/internal/workflow"
)

// FromJob converts a job record to its API representation.
func FromJob(job *jobs.Job) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:               job.ID,
		Prompt:           job.Prompt,
		Status:           string(job.Status),
		Stage:            job.Stage,
		Title:            job.Title,
		Description:      job.Description,
		Script:           job.Script,
		Tags:             slices.Clone(job.Tags),
		ImageSearchQuery: job.ImageSearchQuery,
		VideoSearchQuery: job.VideoSearchQuery,
		Artifacts: JobArtifacts{
			Audio:           job.AudioArtifactID,
			VideoClips:      slices.Clone(job.VideoClipArtifactIDs),
			Music:           job.MusicArtifactID,
			Thumbnail:       job.ThumbnailArtifactID,
			NormalizedAudio: job.NormalizedAudioArtifactID,
			Subtitles:       job.SubtitleArtifactID,
			Final:           job.FinalArtifactID,
		},
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    formatTime(job.CreatedAt),
		UpdatedAt:    formatTime(job.UpdatedAt),
	}
	if job.StartedAt != nil {
		dto.StartedAt = formatTime(*job.StartedAt)
	}
	if job.EndedAt != nil {
		dto.EndedAt = formatTime(*job.EndedAt)
	}
	// A URL is only meaningful once the upload went through.
	if job.PublishedID != "" {
		dto.PublishedID = job.PublishedID
		dto.PublishedURL = job.PublishedURL
	}
	return dto
}

// FromJobs converts a slice of job records, preserving order.
func FromJobs(list []*jobs.Job) []Job {
	out := make([]Job, 0, len(list))
	for _, job := range list {
		out = append(out, FromJob(job))
	}
	return out
}

// FromStatusSummary converts workflow diagnostics to a health payload.
func FromStatusSummary(summary workflow.StatusSummary) Health {
	health := Health{
		Running:     summary.Running,
		ActiveJobs:  slices.Clone(summary.ActiveJobs),
		JobCounts:   make(map[string]int, len(summary.JobCounts)),
		LastError:   summary.LastError,
		StageHealth: StageHealthSlice(summary.StageHealth),
	}
	if health.ActiveJobs == nil {
		health.ActiveJobs = []string{}
	}
	for status, count := range summary.JobCounts {
		health.JobCounts[string(status)] = count
	}
	if summary.LastJob != nil {
		last := FromJob(summary.LastJob)
		health.LastJob = &last
	}
	health.Status = healthStatus(summary.Running, health.StageHealth)
	return health
}

// StageHealthSlice converts stage health records sorted by name.
func StageHealthSlice(list []stage.Health) []StageHealth {
	out := make([]StageHealth, 0, len(list))
	for _, h := range list {
		out = append(out, StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func healthStatus(running bool, stages []StageHealth) string {
	if !running {
		return HealthStopped
	}
	for _, h := range stages {
		if !h.Ready {
			return HealthDegraded
		}
	}
	return HealthOK
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
