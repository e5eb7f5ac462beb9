// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"time"

	"github.com/taibuivan/vidora/internal/users/auth"
)

// # Profile Data Access

// ProfileRepository defines the data access contract for the channel surface
// of an account.
type ProfileRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *auth.Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*auth.Account, error)

	/*
		FindByUsername returns the account with the given canonical username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *auth.Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*auth.Account, error)

	/*
		UpdateDetails patches the account's fullname and email.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - fullName: string
		  - email: string

		Returns:
		  - *auth.Account: Updated entity
		  - error: apperr.NotFound, apperr.Conflict (email taken), or storage failures
	*/
	UpdateDetails(context context.Context, accountID, fullName, email string) (*auth.Account, error)

	/*
		UpdateMediaURL commits a new locator into one of the media slots.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - slot: MediaSlot
		  - locator: string

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	UpdateMediaURL(context context.Context, accountID string, slot MediaSlot, locator string) error

	/*
		ChannelProfile resolves the public channel projection in one query.

		Parameters:
		  - context: context.Context
		  - username: string (canonical channel handle)
		  - viewerID: string (empty for anonymous viewers)

		Returns:
		  - *ChannelProfile: Aggregated projection
		  - error: apperr.NotFound when no such channel, or storage failures
	*/
	ChannelProfile(context context.Context, username, viewerID string) (*ChannelProfile, error)

	/*
		WatchHistory returns the account's watch history in watch order.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - []WatchEntry: Ordered, owner-resolved entries (possibly empty)
		  - error: Storage failures
	*/
	WatchHistory(context context.Context, accountID string) ([]WatchEntry, error)
}

// # Subscription Data Access

// SubscriptionRepository defines the contract for the channel subscription graph.
type SubscriptionRepository interface {

	/*
		Subscribe records that subscriberID follows channelID.

		Duplicate subscriptions are absorbed (idempotent).

		Parameters:
		  - context: context.Context
		  - subscriberID: string
		  - channelID: string

		Returns:
		  - error: Storage failures
	*/
	Subscribe(context context.Context, subscriberID, channelID string) error

	/*
		Unsubscribe removes the subscription edge if present.

		Parameters:
		  - context: context.Context
		  - subscriberID: string
		  - channelID: string

		Returns:
		  - error: Storage failures
	*/
	Unsubscribe(context context.Context, subscriberID, channelID string) error
}

// # Volatile Read Cache

// ProfileCache defines the contract for the channel-profile read cache.
//
// Cache errors are advisory: callers fall back to the database on any miss
// or failure, and log rather than propagate write failures.
type ProfileCache interface {

	/*
		Get returns the cached projection for (username, viewerID).

		Parameters:
		  - context: context.Context
		  - username: string
		  - viewerID: string

		Returns:
		  - *ChannelProfile: Cached projection
		  - error: apperr.NotFound on cache miss, or connectivity errors
	*/
	Get(context context.Context, username, viewerID string) (*ChannelProfile, error)

	/*
		Set stores the projection for (username, viewerID) with a TTL.

		Parameters:
		  - context: context.Context
		  - username: string
		  - viewerID: string
		  - profile: *ChannelProfile
		  - ttl: time.Duration

		Returns:
		  - error: Storage failures
	*/
	Set(context context.Context, username, viewerID string, profile *ChannelProfile, ttl time.Duration) error

	/*
		Invalidate drops the cached projection for (username, viewerID).

		Parameters:
		  - context: context.Context
		  - username: string
		  - viewerID: string

		Returns:
		  - error: Deletion failures
	*/
	Invalidate(context context.Context, username, viewerID string) error
}
