package jobs

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed postgres_schema.sql
var postgresSchema string

const pgJobColumns = "id, prompt, status, stage, script, title, description, tags, image_search_query, video_search_query, audio_artifact_id, video_clip_artifact_ids, music_artifact_id, thumbnail_artifact_id, normalized_audio_artifact_id, subtitle_artifact_id, final_artifact_id, published_id, published_url, error_message, created_at, updated_at, started_at, ended_at"

// PostgresStore is the Repository implementation for shared deployments.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to databaseURL and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("database url is required")
	}
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(connectCtx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStore wraps an existing pool. The schema must already exist.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Save inserts or updates the job.
func (s *PostgresStore) Save(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now().UTC()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = job.UpdatedAt
	}
	query := `
INSERT INTO jobs (` + pgJobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
ON CONFLICT (id) DO UPDATE SET
    status = EXCLUDED.status, stage = EXCLUDED.stage, script = EXCLUDED.script,
    title = EXCLUDED.title, description = EXCLUDED.description, tags = EXCLUDED.tags,
    image_search_query = EXCLUDED.image_search_query, video_search_query = EXCLUDED.video_search_query,
    audio_artifact_id = EXCLUDED.audio_artifact_id, video_clip_artifact_ids = EXCLUDED.video_clip_artifact_ids,
    music_artifact_id = EXCLUDED.music_artifact_id, thumbnail_artifact_id = EXCLUDED.thumbnail_artifact_id,
    normalized_audio_artifact_id = EXCLUDED.normalized_audio_artifact_id,
    subtitle_artifact_id = EXCLUDED.subtitle_artifact_id, final_artifact_id = EXCLUDED.final_artifact_id,
    published_id = EXCLUDED.published_id, published_url = EXCLUDED.published_url,
    error_message = EXCLUDED.error_message, updated_at = EXCLUDED.updated_at,
    started_at = EXCLUDED.started_at, ended_at = EXCLUDED.ended_at;
`
	_, err := s.pool.Exec(ctx, query,
		job.ID,
		job.Prompt,
		string(job.Status),
		pgText(job.Stage),
		pgText(job.Script),
		pgText(job.Title),
		pgText(job.Description),
		pgList(job.Tags),
		pgText(job.ImageSearchQuery),
		pgText(job.VideoSearchQuery),
		pgText(job.AudioArtifactID),
		pgList(job.VideoClipArtifactIDs),
		pgText(job.MusicArtifactID),
		pgText(job.ThumbnailArtifactID),
		pgText(job.NormalizedAudioArtifactID),
		pgText(job.SubtitleArtifactID),
		pgText(job.FinalArtifactID),
		pgText(job.PublishedID),
		pgText(job.PublishedURL),
		pgText(job.ErrorMessage),
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
		job.StartedAt,
		job.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// FindByID fetches a job, returning ErrNotFound for unknown ids.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Job, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgJobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanPGJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListRecent returns up to limit jobs ordered newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		return []*Job{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgJobColumns+` FROM jobs ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	return collectPGJobs(rows)
}

// ListByStatus returns jobs in any of statuses ordered oldest first.
func (s *PostgresStore) ListByStatus(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + pgJobColumns + ` FROM jobs`
	var args []any
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, status := range statuses {
			values = append(values, string(status))
		}
		query += ` WHERE status = ANY($1)`
		args = append(args, values)
	}
	query += ` ORDER BY created_at, id`
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs by status: %w", err)
	}
	return collectPGJobs(rows)
}

// Delete removes the job record.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

func collectPGJobs(rows pgx.Rows) ([]*Job, error) {
	defer rows.Close()
	jobs := make([]*Job, 0)
	for rows.Next() {
		job, err := scanPGJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func scanPGJob(row pgx.Row) (*Job, error) {
	var (
		job                                   Job
		status                                string
		stage, script, title, description     *string
		imageQuery, videoQuery                *string
		audio, music, thumbnail               *string
		normalized, subtitle, final           *string
		publishedID, publishedURL, errMessage *string
	)
	if err := row.Scan(
		&job.ID, &job.Prompt, &status, &stage, &script, &title, &description, &job.Tags,
		&imageQuery, &videoQuery, &audio, &job.VideoClipArtifactIDs, &music, &thumbnail, &normalized,
		&subtitle, &final, &publishedID, &publishedURL, &errMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.StartedAt, &job.EndedAt,
	); err != nil {
		return nil, err
	}
	job.Status = Status(status)
	job.Stage = deref(stage)
	job.Script = deref(script)
	job.Title = deref(title)
	job.Description = deref(description)
	job.ImageSearchQuery = deref(imageQuery)
	job.VideoSearchQuery = deref(videoQuery)
	job.AudioArtifactID = deref(audio)
	job.MusicArtifactID = deref(music)
	job.ThumbnailArtifactID = deref(thumbnail)
	job.NormalizedAudioArtifactID = deref(normalized)
	job.SubtitleArtifactID = deref(subtitle)
	job.FinalArtifactID = deref(final)
	job.PublishedID = deref(publishedID)
	job.PublishedURL = deref(publishedURL)
	job.ErrorMessage = deref(errMessage)
	if len(job.Tags) == 0 {
		job.Tags = nil
	}
	if len(job.VideoClipArtifactIDs) == 0 {
		job.VideoClipArtifactIDs = nil
	}
	return &job, nil
}

func pgText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func pgList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
