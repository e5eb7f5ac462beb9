// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the video repositories.
package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/dberr"
)

// # Video Repository

// PostgresVideoRepository implements the VideoRepository interface using pgx.
type PostgresVideoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new PostgreSQL implementation of the VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

/*
Create persists a new video record into the core.video table.

Parameters:
  - context: context.Context
  - video: *Video

Returns:
  - error: apperr.NotFound when the owner is gone, or execution errors
*/
func (repository *PostgresVideoRepository) Create(context context.Context, video *Video) error {
	const query = `
		INSERT INTO core.video (
			id, ownerid, title, description, videourl, thumbnailurl,
			duration, viewcount, ispublished, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		video.ID,
		video.OwnerID,
		video.Title,
		video.Description,
		video.VideoURL,
		video.ThumbnailURL,
		video.Duration,
		video.ViewCount,
		video.IsPublished,
		video.CreatedAt,
		video.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Channel")
	}

	return nil
}

/*
FindByID retrieves a published video by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Video: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresVideoRepository) FindByID(context context.Context, id string) (*Video, error) {
	const query = `
		SELECT id, ownerid, title, description, videourl, thumbnailurl,
		       duration, viewcount, ispublished, createdat, updatedat
		FROM core.video
		WHERE id = $1 AND ispublished = TRUE`

	video := &Video{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&video.ID,
		&video.OwnerID,
		&video.Title,
		&video.Description,
		&video.VideoURL,
		&video.ThumbnailURL,
		&video.Duration,
		&video.ViewCount,
		&video.IsPublished,
		&video.CreatedAt,
		&video.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Video")
		}
		return nil, fmt.Errorf("postgres_video_repo_find_failed: %w", err)
	}

	return video, nil
}

/*
ListByOwner returns one page of a channel's published videos, newest first.

Description: The page and the total count are read in one query via a window
function so the result is consistent at a single snapshot.

Parameters:
  - context: context.Context
  - ownerID: string
  - limit: int
  - offset: int

Returns:
  - []Video: Page of videos
  - int: Total published videos for the owner
  - error: Execution errors
*/
func (repository *PostgresVideoRepository) ListByOwner(context context.Context, ownerID string, limit, offset int) ([]Video, int, error) {
	const query = `
		SELECT id, ownerid, title, description, videourl, thumbnailurl,
		       duration, viewcount, ispublished, createdat, updatedat,
		       COUNT(*) OVER() AS total
		FROM core.video
		WHERE ownerid = $1 AND ispublished = TRUE
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_video_repo_list_failed: %w", err)
	}
	defer rows.Close()

	videos := make([]Video, 0, limit)
	total := 0

	for rows.Next() {
		var video Video
		err := rows.Scan(
			&video.ID,
			&video.OwnerID,
			&video.Title,
			&video.Description,
			&video.VideoURL,
			&video.ThumbnailURL,
			&video.Duration,
			&video.ViewCount,
			&video.IsPublished,
			&video.CreatedAt,
			&video.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_video_repo_list_scan_failed: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_video_repo_list_rows_failed: %w", err)
	}

	return videos, total, nil
}

/*
IncrementViews bumps the video's view counter by one.

Parameters:
  - context: context.Context
  - videoID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresVideoRepository) IncrementViews(context context.Context, videoID string) error {
	const query = "UPDATE core.video SET viewcount = viewcount + 1 WHERE id = $1"

	if _, err := repository.pool.Exec(context, query, videoID); err != nil {
		return fmt.Errorf("postgres_video_repo_increment_views_failed: %w", err)
	}

	return nil
}

// # Watch Recorder

// PostgresWatchRecorder implements WatchRecorder against users.watchhistory.
type PostgresWatchRecorder struct {
	pool *pgxpool.Pool
}

// NewWatchRecorder creates a new PostgreSQL implementation of WatchRecorder.
func NewWatchRecorder(pool *pgxpool.Pool) *PostgresWatchRecorder {
	return &PostgresWatchRecorder{pool: pool}
}

/*
RecordWatch appends an entry to the account's watch history.

Description: The position column is a BIGSERIAL, so insertion order doubles
as the stable watch order even within a single timestamp tick.

Parameters:
  - context: context.Context
  - accountID: string
  - videoID: string

Returns:
  - error: Execution errors
*/
func (recorder *PostgresWatchRecorder) RecordWatch(context context.Context, accountID, videoID string) error {
	const query = `
		INSERT INTO users.watchhistory (accountid, videoid, watchedat)
		VALUES ($1, $2, $3)`

	if _, err := recorder.pool.Exec(context, query, accountID, videoID, time.Now()); err != nil {
		return fmt.Errorf("postgres_watch_recorder_insert_failed: %w", err)
	}

	return nil
}
