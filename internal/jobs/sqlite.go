package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const jobColumns = "id, prompt, status, stage, script, title, description, tags_json, image_search_query, video_search_query, audio_artifact_id, video_clip_artifact_ids_json, music_artifact_id, thumbnail_artifact_id, normalized_audio_artifact_id, subtitle_artifact_id, final_artifact_id, published_id, published_url, error_message, created_at, updated_at, started_at, ended_at"

// SQLiteStore is the embedded Repository implementation.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts or updates the job.
func (s *SQLiteStore) Save(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now().UTC()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = job.UpdatedAt
	}
	tags, err := encodeList(job.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	clips, err := encodeList(job.VideoClipArtifactIDs)
	if err != nil {
		return fmt.Errorf("encode clip ids: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 24), ", ")
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (`+placeholders+`)
         ON CONFLICT(id) DO UPDATE SET
             status = excluded.status, stage = excluded.stage, script = excluded.script,
             title = excluded.title, description = excluded.description, tags_json = excluded.tags_json,
             image_search_query = excluded.image_search_query, video_search_query = excluded.video_search_query,
             audio_artifact_id = excluded.audio_artifact_id,
             video_clip_artifact_ids_json = excluded.video_clip_artifact_ids_json,
             music_artifact_id = excluded.music_artifact_id, thumbnail_artifact_id = excluded.thumbnail_artifact_id,
             normalized_audio_artifact_id = excluded.normalized_audio_artifact_id,
             subtitle_artifact_id = excluded.subtitle_artifact_id, final_artifact_id = excluded.final_artifact_id,
             published_id = excluded.published_id, published_url = excluded.published_url,
             error_message = excluded.error_message, updated_at = excluded.updated_at,
             started_at = excluded.started_at, ended_at = excluded.ended_at`,
		job.ID,
		job.Prompt,
		job.Status,
		nullableString(job.Stage),
		nullableString(job.Script),
		nullableString(job.Title),
		nullableString(job.Description),
		tags,
		nullableString(job.ImageSearchQuery),
		nullableString(job.VideoSearchQuery),
		nullableString(job.AudioArtifactID),
		clips,
		nullableString(job.MusicArtifactID),
		nullableString(job.ThumbnailArtifactID),
		nullableString(job.NormalizedAudioArtifactID),
		nullableString(job.SubtitleArtifactID),
		nullableString(job.FinalArtifactID),
		nullableString(job.PublishedID),
		nullableString(job.PublishedURL),
		nullableString(job.ErrorMessage),
		job.CreatedAt.UTC().Format(timestampLayout),
		job.UpdatedAt.UTC().Format(timestampLayout),
		nullableTime(job.StartedAt),
		nullableTime(job.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// FindByID fetches a job, returning ErrNotFound for unknown ids.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListRecent returns up to limit jobs ordered newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		return []*Job{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	return collectJobs(rows)
}

// ListByStatus returns jobs in any of statuses ordered oldest first.
func (s *SQLiteStore) ListByStatus(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs by status: %w", err)
	}
	return collectJobs(rows)
}

// Delete removes the job record.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	defer rows.Close()
	jobs := make([]*Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
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

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job                                   Job
		status                                string
		stage, script, title, description     sql.NullString
		tags, imageQuery, videoQuery          sql.NullString
		audio, clips, music, thumbnail        sql.NullString
		normalized, subtitle, final           sql.NullString
		publishedID, publishedURL, errMessage sql.NullString
		createdRaw, updatedRaw                string
		startedRaw, endedRaw                  sql.NullString
	)
	if err := scanner.Scan(
		&job.ID, &job.Prompt, &status, &stage, &script, &title, &description, &tags,
		&imageQuery, &videoQuery, &audio, &clips, &music, &thumbnail, &normalized,
		&subtitle, &final, &publishedID, &publishedURL, &errMessage,
		&createdRaw, &updatedRaw, &startedRaw, &endedRaw,
	); err != nil {
		return nil, err
	}

	job.Status = Status(status)
	job.Stage = stage.String
	job.Script = script.String
	job.Title = title.String
	job.Description = description.String
	job.ImageSearchQuery = imageQuery.String
	job.VideoSearchQuery = videoQuery.String
	job.AudioArtifactID = audio.String
	job.MusicArtifactID = music.String
	job.ThumbnailArtifactID = thumbnail.String
	job.NormalizedAudioArtifactID = normalized.String
	job.SubtitleArtifactID = subtitle.String
	job.FinalArtifactID = final.String
	job.PublishedID = publishedID.String
	job.PublishedURL = publishedURL.String
	job.ErrorMessage = errMessage.String

	var err error
	if job.Tags, err = decodeList(tags.String); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if job.VideoClipArtifactIDs, err = decodeList(clips.String); err != nil {
		return nil, fmt.Errorf("decode clip ids: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	job.StartedAt = parseNullableTime(startedRaw)
	job.EndedAt = parseNullableTime(endedRaw)
	return &job, nil
}
