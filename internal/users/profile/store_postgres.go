// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the profile repositories.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/dberr"
	"github.com/taibuivan/vidora/internal/users/auth"
)

// # Profile Repository

// PostgresProfileRepository implements the ProfileRepository interface using pgx.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new PostgreSQL implementation of the ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

/*
FindByID retrieves the account entity by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *auth.Account: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) FindByID(context context.Context, id string) (*auth.Account, error) {
	const query = `
		SELECT id, username, email, fullname, passwordhash,
		       avatarurl, COALESCE(coverimageurl, ''), COALESCE(refreshtoken, ''),
		       createdat, updatedat
		FROM users.account
		WHERE id = $1`

	account := &auth.Account{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.PasswordHash,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.RefreshToken,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_profile_repo_find_failed: %w", err)
	}

	return account, nil
}

/*
FindByUsername retrieves the account entity by its canonical username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *auth.Account: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) FindByUsername(context context.Context, username string) (*auth.Account, error) {
	const query = `
		SELECT id, username, email, fullname, passwordhash,
		       avatarurl, COALESCE(coverimageurl, ''), COALESCE(refreshtoken, ''),
		       createdat, updatedat
		FROM users.account
		WHERE username = $1`

	account := &auth.Account{}
	err := repository.pool.QueryRow(context, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.PasswordHash,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.RefreshToken,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Channel")
		}
		return nil, fmt.Errorf("postgres_profile_repo_find_by_username_failed: %w", err)
	}

	return account, nil
}

/*
UpdateDetails patches the account's fullname and email in one statement.

Description: The updated row is returned via RETURNING so callers never see
a stale projection. A unique violation on email surfaces as Conflict.

Parameters:
  - context: context.Context
  - accountID: string
  - fullName: string
  - email: string

Returns:
  - *auth.Account: Updated entity
  - error: apperr.NotFound, apperr.Conflict, or execution errors
*/
func (repository *PostgresProfileRepository) UpdateDetails(context context.Context, accountID, fullName, email string) (*auth.Account, error) {
	const query = `
		UPDATE users.account
		SET fullname = $2, email = $3, updatedat = $4
		WHERE id = $1
		RETURNING id, username, email, fullname, passwordhash,
		          avatarurl, COALESCE(coverimageurl, ''), COALESCE(refreshtoken, ''),
		          createdat, updatedat`

	account := &auth.Account{}
	err := repository.pool.QueryRow(context, query, accountID, fullName, email, time.Now()).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.PasswordHash,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.RefreshToken,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, dberr.Wrap(err, "Email")
	}

	return account, nil
}

/*
UpdateMediaURL commits a new locator into one of the media slots.

Parameters:
  - context: context.Context
  - accountID: string
  - slot: MediaSlot (avatar or cover_image)
  - locator: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) UpdateMediaURL(context context.Context, accountID string, slot MediaSlot, locator string) error {
	// Column name is resolved from the closed MediaSlot set, never from
	// request input directly.
	column := "avatarurl"
	if slot == SlotCover {
		column = "coverimageurl"
	}

	query := fmt.Sprintf("UPDATE users.account SET %s = $2, updatedat = $3 WHERE id = $1", column)

	tag, err := repository.pool.Exec(context, query, accountID, locator, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_profile_repo_update_media_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

/*
ChannelProfile resolves the public channel projection in a single query.

Description: Subscriber counts come from correlated COUNT subqueries and the
viewer relationship from an EXISTS probe, so the projection is consistent at
one snapshot and needs no application-side joins.

Parameters:
  - context: context.Context
  - username: string
  - viewerID: string (empty for anonymous viewers)

Returns:
  - *ChannelProfile: Aggregated projection
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProfileRepository) ChannelProfile(context context.Context, username, viewerID string) (*ChannelProfile, error) {
	const query = `
		SELECT
			a.id,
			a.username,
			a.email,
			a.fullname,
			a.avatarurl,
			COALESCE(a.coverimageurl, ''),
			(SELECT COUNT(*) FROM users.subscription s WHERE s.channelid = a.id)    AS subscribers,
			(SELECT COUNT(*) FROM users.subscription s WHERE s.subscriberid = a.id) AS subscribedto,
			EXISTS (
				SELECT 1 FROM users.subscription s
				WHERE s.channelid = a.id AND s.subscriberid = NULLIF($2, '')::uuid
			) AS issubscribed,
			a.createdat
		FROM users.account a
		WHERE a.username = $1`

	channel := &ChannelProfile{}
	err := repository.pool.QueryRow(context, query, username, viewerID).Scan(
		&channel.ID,
		&channel.Username,
		&channel.Email,
		&channel.FullName,
		&channel.AvatarURL,
		&channel.CoverImageURL,
		&channel.SubscriberCount,
		&channel.SubscribedTo,
		&channel.IsSubscribed,
		&channel.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Channel")
		}
		return nil, fmt.Errorf("postgres_profile_repo_channel_failed: %w", err)
	}

	return channel, nil
}

/*
WatchHistory returns the account's watch history in watch order.

Description: Joins each history row to its video and the video's owner. The
position column gives a stable ordering even when several entries share a
timestamp; most recent first.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []WatchEntry: Ordered entries (empty slice when none)
  - error: Execution errors
*/
func (repository *PostgresProfileRepository) WatchHistory(context context.Context, accountID string) ([]WatchEntry, error) {
	const query = `
		SELECT
			v.id,
			v.title,
			v.thumbnailurl,
			v.duration,
			o.id,
			o.username,
			o.fullname,
			o.avatarurl,
			h.watchedat
		FROM users.watchhistory h
		JOIN core.video v    ON v.id = h.videoid
		JOIN users.account o ON o.id = v.ownerid
		WHERE h.accountid = $1
		ORDER BY h.position DESC`

	rows, err := repository.pool.Query(context, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_history_failed: %w", err)
	}
	defer rows.Close()

	entries := make([]WatchEntry, 0)
	for rows.Next() {
		var entry WatchEntry
		err := rows.Scan(
			&entry.VideoID,
			&entry.Title,
			&entry.ThumbnailURL,
			&entry.Duration,
			&entry.OwnerID,
			&entry.OwnerUsername,
			&entry.OwnerFullName,
			&entry.OwnerAvatar,
			&entry.WatchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_profile_repo_history_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_history_rows_failed: %w", err)
	}

	return entries, nil
}

// # Subscription Repository

// PostgresSubscriptionRepository implements SubscriptionRepository using pgx.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository creates a new PostgreSQL implementation of SubscriptionRepository.
func NewSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

/*
Subscribe records a subscription edge.

Description: ON CONFLICT DO NOTHING makes repeated subscribes idempotent.

Parameters:
  - context: context.Context
  - subscriberID: string
  - channelID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresSubscriptionRepository) Subscribe(context context.Context, subscriberID, channelID string) error {
	const query = `
		INSERT INTO users.subscription (subscriberid, channelid, createdat)
		VALUES ($1, $2, $3)
		ON CONFLICT (subscriberid, channelid) DO NOTHING`

	if _, err := repository.pool.Exec(context, query, subscriberID, channelID, time.Now()); err != nil {
		return dberr.Wrap(err, "Channel")
	}

	return nil
}

/*
Unsubscribe removes the subscription edge if present.

Parameters:
  - context: context.Context
  - subscriberID: string
  - channelID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresSubscriptionRepository) Unsubscribe(context context.Context, subscriberID, channelID string) error {
	const query = "DELETE FROM users.subscription WHERE subscriberid = $1 AND channelid = $2"

	if _, err := repository.pool.Exec(context, query, subscriberID, channelID); err != nil {
		return fmt.Errorf("postgres_subscription_repo_unsubscribe_failed: %w", err)
	}

	return nil
}
