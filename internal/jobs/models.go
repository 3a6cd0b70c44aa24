package jobs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"promptreel/internal/services"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// MinPromptLength is the minimum prompt length in runes after trimming.
const MinPromptLength = 5

// DaemonStopReason is recorded on jobs cancelled by daemon shutdown.
const DaemonStopReason = "daemon stopped"

// InterruptedReason is recorded on running jobs found at daemon startup.
const InterruptedReason = "daemon restarted before the job finished"

var (
	// ErrFieldAlreadySet is returned when a write-once field is assigned twice.
	ErrFieldAlreadySet = errors.New("field already set")
	// ErrInvalidTransition is returned for status changes outside the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotFound is returned by repositories for unknown job ids.
	ErrNotFound = errors.New("job not found")
)

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus converts a string to a Status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return status, true
	}
	return "", false
}

// Job is one prompt-to-video pipeline run. Content and artifact fields are
// written once through their setters; Status only moves forward.
type Job struct {
	ID     string
	Prompt string
	Status Status
	Stage  string

	Script           string
	Title            string
	Description      string
	Tags             []string
	ImageSearchQuery string
	VideoSearchQuery string

	AudioArtifactID           string
	VideoClipArtifactIDs      []string
	MusicArtifactID           string
	ThumbnailArtifactID       string
	NormalizedAudioArtifactID string
	SubtitleArtifactID        string
	FinalArtifactID           string

	PublishedID  string
	PublishedURL string

	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StartedAt    *time.Time
	EndedAt      *time.Time
}

// ValidatePrompt trims prompt and checks the minimum length.
func ValidatePrompt(prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if utf8.RuneCountInString(trimmed) < MinPromptLength {
		return "", services.Wrap(services.ErrValidation, "", "create job",
			fmt.Sprintf("prompt must be at least %d characters", MinPromptLength), nil)
	}
	return trimmed, nil
}

// New returns a pending job for prompt, or a validation error.
func New(prompt string, now time.Time) (*Job, error) {
	trimmed, err := ValidatePrompt(prompt)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Job{
		ID:        uuid.NewString(),
		Prompt:    trimmed,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Start moves a pending job to running.
func (j *Job) Start(now time.Time) error {
	if j.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusRunning)
	}
	ts := now.UTC()
	j.Status = StatusRunning
	j.StartedAt = &ts
	j.UpdatedAt = ts
	return nil
}

// Complete moves a running job to completed once every required artifact and
// the publication id are recorded.
func (j *Job) Complete(now time.Time) error {
	if j.Status != StatusRunning {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusCompleted)
	}
	if missing := j.MissingOutputs(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidTransition, strings.Join(missing, ", "))
	}
	ts := now.UTC()
	j.Status = StatusCompleted
	j.EndedAt = &ts
	j.UpdatedAt = ts
	return nil
}

// Fail moves a pending or running job to failed with message.
func (j *Job) Fail(now time.Time, message string) error {
	if j.Status.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, StatusFailed)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = "job failed"
	}
	ts := now.UTC()
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.EndedAt = &ts
	j.UpdatedAt = ts
	return nil
}

// MissingOutputs lists required fields that are still empty. Music is optional.
func (j *Job) MissingOutputs() []string {
	var missing []string
	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	check("script", j.Script)
	check("title", j.Title)
	check("audio", j.AudioArtifactID)
	if len(j.VideoClipArtifactIDs) == 0 {
		missing = append(missing, "video clips")
	}
	check("thumbnail", j.ThumbnailArtifactID)
	check("normalized audio", j.NormalizedAudioArtifactID)
	check("subtitles", j.SubtitleArtifactID)
	check("final video", j.FinalArtifactID)
	check("published id", j.PublishedID)
	return missing
}

// ArtifactIDs returns every non-empty artifact identifier on the job.
func (j *Job) ArtifactIDs() []string {
	ids := make([]string, 0, 7+len(j.VideoClipArtifactIDs))
	for _, id := range []string{
		j.AudioArtifactID, j.MusicArtifactID, j.ThumbnailArtifactID,
		j.NormalizedAudioArtifactID, j.SubtitleArtifactID, j.FinalArtifactID,
	} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	for _, id := range j.VideoClipArtifactIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Clone returns a deep copy safe to hand to other goroutines.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.Tags = slices.Clone(j.Tags)
	cp.VideoClipArtifactIDs = slices.Clone(j.VideoClipArtifactIDs)
	if j.StartedAt != nil {
		ts := *j.StartedAt
		cp.StartedAt = &ts
	}
	if j.EndedAt != nil {
		ts := *j.EndedAt
		cp.EndedAt = &ts
	}
	return &cp
}

func setOnce(field *string, name, value string) error {
	if strings.TrimSpace(value) == "" {
		return services.Wrap(services.ErrValidation, "", "set "+name, name+" must not be blank", nil)
	}
	if *field != "" {
		return fmt.Errorf("%w: %s", ErrFieldAlreadySet, name)
	}
	*field = value
	return nil
}

func (j *Job) SetScript(v string) error      { return setOnce(&j.Script, "script", v) }
func (j *Job) SetTitle(v string) error       { return setOnce(&j.Title, "title", v) }
func (j *Job) SetDescription(v string) error { return setOnce(&j.Description, "description", v) }
func (j *Job) SetImageSearchQuery(v string) error {
	return setOnce(&j.ImageSearchQuery, "image search query", v)
}
func (j *Job) SetVideoSearchQuery(v string) error {
	return setOnce(&j.VideoSearchQuery, "video search query", v)
}
func (j *Job) SetAudioArtifactID(v string) error {
	return setOnce(&j.AudioArtifactID, "audio artifact", v)
}
func (j *Job) SetMusicArtifactID(v string) error {
	return setOnce(&j.MusicArtifactID, "music artifact", v)
}
func (j *Job) SetThumbnailArtifactID(v string) error {
	return setOnce(&j.ThumbnailArtifactID, "thumbnail artifact", v)
}
func (j *Job) SetNormalizedAudioArtifactID(v string) error {
	return setOnce(&j.NormalizedAudioArtifactID, "normalized audio artifact", v)
}
func (j *Job) SetSubtitleArtifactID(v string) error {
	return setOnce(&j.SubtitleArtifactID, "subtitle artifact", v)
}
func (j *Job) SetFinalArtifactID(v string) error {
	return setOnce(&j.FinalArtifactID, "final artifact", v)
}

// SetPublication records the external id and URL together.
func (j *Job) SetPublication(id, url string) error {
	if j.PublishedID != "" || j.PublishedURL != "" {
		return fmt.Errorf("%w: publication", ErrFieldAlreadySet)
	}
	j.PublishedID = id
	j.PublishedURL = url
	return nil
}

func (j *Job) SetTags(tags []string) error {
	if len(j.Tags) > 0 {
		return fmt.Errorf("%w: tags", ErrFieldAlreadySet)
	}
	j.Tags = slices.Clone(tags)
	return nil
}

func (j *Job) SetVideoClipArtifactIDs(ids []string) error {
	if len(j.VideoClipArtifactIDs) > 0 {
		return fmt.Errorf("%w: video clip artifacts", ErrFieldAlreadySet)
	}
	j.VideoClipArtifactIDs = slices.Clone(ids)
	return nil
}
