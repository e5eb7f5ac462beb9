// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import (
	"context"

	"github.com/taibuivan/vidora/internal/users/auth"
)

// # Video Data Access

// VideoRepository defines the data access contract for the video catalog.
type VideoRepository interface {

	/*
		Create persists a new video record.

		Parameters:
		  - context: context.Context
		  - video: *Video

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, video *Video) error

	/*
		FindByID returns the published video with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Video: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Video, error)

	/*
		ListByOwner returns one page of a channel's published videos plus the
		total count.

		Parameters:
		  - context: context.Context
		  - ownerID: string
		  - limit: int
		  - offset: int

		Returns:
		  - []Video: Newest first
		  - int: Total published videos for the owner
		  - error: Database retrieval failures
	*/
	ListByOwner(context context.Context, ownerID string, limit, offset int) ([]Video, int, error)

	/*
		IncrementViews bumps the view counter by one.

		Parameters:
		  - context: context.Context
		  - videoID: string

		Returns:
		  - error: Persistence failures
	*/
	IncrementViews(context context.Context, videoID string) error
}

// # Watch History Recording

// WatchRecorder appends entries to an account's watch history.
type WatchRecorder interface {

	/*
		RecordWatch appends (accountID, videoID) to the watch history.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - videoID: string

		Returns:
		  - error: Persistence failures
	*/
	RecordWatch(context context.Context, accountID, videoID string) error
}

// # Channel Resolution

// ChannelResolver resolves a channel handle to its account.
//
// Satisfied by the auth package's account repository; declared here so the
// video service depends on a capability, not a concrete store.
type ChannelResolver interface {
	FindByUsername(context context.Context, username string) (*auth.Account, error)
}
