// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/blob"
	"github.com/taibuivan/vidora/internal/users/auth"
	"github.com/taibuivan/vidora/pkg/username"
)

// # Service Layer

// Service orchestrates channel profile, media, and subscription use cases.
type Service struct {
	profileRepository      ProfileRepository
	subscriptionRepository SubscriptionRepository
	profileCache           ProfileCache
	blobStore              blob.Store
	logger                 *slog.Logger
}

// NewService constructs a new profile [Service] with its dependencies.
func NewService(
	profileRepo ProfileRepository,
	subscriptionRepo SubscriptionRepository,
	profileCache ProfileCache,
	blobStore blob.Store,
	logger *slog.Logger,
) *Service {
	return &Service{
		profileRepository:      profileRepo,
		subscriptionRepository: subscriptionRepo,
		profileCache:           profileCache,
		blobStore:              blobStore,
		logger:                 logger,
	}
}

// # Account Surface

/*
GetCurrent retrieves the authenticated account's own profile.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *auth.Account: Profile with credentials stripped
  - error: apperr.NotFound or execution failures
*/
func (service *Service) GetCurrent(context context.Context, accountID string) (*auth.Account, error) {
	account, err := service.profileRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}
	return account.Sanitized(), nil
}

/*
UpdateDetails patches the account's fullname and email.

Parameters:
  - context: context.Context
  - accountID: string
  - fullName: string
  - email: string

Returns:
  - *auth.Account: Updated profile with credentials stripped
  - error: apperr.NotFound, apperr.Conflict, or storage failures
*/
func (service *Service) UpdateDetails(context context.Context, accountID, fullName, email string) (*auth.Account, error) {
	account, err := service.profileRepository.UpdateDetails(context, accountID, fullName, auth.CanonicalEmail(email))
	if err != nil {
		return nil, err
	}

	service.logger.Info("account_details_updated", slog.String("account_id", accountID))

	return account.Sanitized(), nil
}

// # Media Replacement

/*
ReplaceMedia swaps one of the account's media slots for a freshly staged file.

Description: The new object is uploaded and committed first; only then is the
superseded object deleted, best-effort. A failed delete leaves an orphaned
blob but never fails the operation — the account always ends up pointing at
the new locator.

Parameters:
  - context: context.Context
  - accountID: string
  - slot: MediaSlot (avatar or cover_image)
  - localPath: string (staged local file; required)

Returns:
  - *auth.Account: Updated profile with credentials stripped
  - error: ValidationError, apperr.NotFound, apperr.UploadFailed, or storage failures
*/
func (service *Service) ReplaceMedia(context context.Context, accountID string, slot MediaSlot, localPath string) (*auth.Account, error) {
	if !slot.Valid() {
		return nil, apperr.ValidationError("Unknown media slot")
	}

	if localPath == "" {
		return nil, apperr.ValidationError(fmt.Sprintf("A %s file is required", slot))
	}

	account, err := service.profileRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	oldLocator := account.AvatarURL
	if slot == SlotCover {
		oldLocator = account.CoverImageURL
	}

	asset, err := service.blobStore.Upload(context, localPath)
	if err != nil {
		return nil, err
	}

	// Commit before cleanup: from here on the account points at the new object.
	if err := service.profileRepository.UpdateMediaURL(context, accountID, slot, asset.Locator); err != nil {
		return nil, err
	}

	// Best-effort removal of the superseded object. The asset id is derived
	// purely from the old locator; an unparseable locator is skipped.
	if oldAssetID := blob.AssetIDFromLocator(oldLocator); oldAssetID != "" {
		if err := service.blobStore.Delete(context, oldAssetID); err != nil {
			service.logger.Warn("media_old_asset_delete_failed",
				slog.String("account_id", accountID),
				slog.String("slot", string(slot)),
				slog.String("asset_id", oldAssetID),
				slog.Any("error", err),
			)
		}
	}

	if slot == SlotCover {
		account.CoverImageURL = asset.Locator
	} else {
		account.AvatarURL = asset.Locator
	}
	account = account.Sanitized()

	service.logger.Info("account_media_replaced",
		slog.String("account_id", accountID),
		slog.String("slot", string(slot)),
	)

	return account, nil
}

// # Read Aggregations

/*
ChannelProfile resolves the public channel projection for a username.

Description: Serves from the Redis read cache when possible; otherwise runs
the aggregation query and back-fills the cache best-effort. Cache failures
never surface to the caller.

Parameters:
  - context: context.Context
  - viewerID: string (empty for anonymous viewers)
  - handle: string (channel username, any casing)

Returns:
  - *ChannelProfile: Aggregated projection
  - error: apperr.NotFound when no such channel, or storage failures
*/
func (service *Service) ChannelProfile(context context.Context, viewerID, handle string) (*ChannelProfile, error) {
	canonical := username.Canonical(handle)
	if canonical == "" {
		return nil, apperr.ValidationError("Username is required")
	}

	if cached, err := service.profileCache.Get(context, canonical, viewerID); err == nil {
		return cached, nil
	}

	channel, err := service.profileRepository.ChannelProfile(context, canonical, viewerID)
	if err != nil {
		return nil, err
	}

	if err := service.profileCache.Set(context, canonical, viewerID, channel, ChannelProfileCacheTTL); err != nil {
		service.logger.Warn("channel_profile_cache_set_failed",
			slog.String("channel", canonical),
			slog.Any("error", err),
		)
	}

	return channel, nil
}

/*
WatchHistory returns the account's watch history, most recent first.

Description: The account's existence is checked explicitly so a missing
account yields NotFound rather than an indistinguishable empty history.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []WatchEntry: Ordered, owner-resolved entries (possibly empty)
  - error: apperr.NotFound or storage failures
*/
func (service *Service) WatchHistory(context context.Context, accountID string) ([]WatchEntry, error) {
	if _, err := service.profileRepository.FindByID(context, accountID); err != nil {
		return nil, err
	}

	entries, err := service.profileRepository.WatchHistory(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_watch_history_failed: %w", err)
	}

	return entries, nil
}

// # Subscriptions

/*
Subscribe makes the viewer follow the named channel.

Description: Idempotent; subscribing twice is a no-op. Self-subscription is
rejected. The viewer's cached projection of the channel is invalidated so
the IsSubscribed flag flips immediately.

Parameters:
  - context: context.Context
  - subscriberID: string
  - handle: string (channel username)

Returns:
  - error: ValidationError, apperr.NotFound, or storage failures
*/
func (service *Service) Subscribe(context context.Context, subscriberID, handle string) error {
	channel, err := service.resolveChannel(context, handle)
	if err != nil {
		return err
	}

	if channel.ID == subscriberID {
		return apperr.ValidationError("Cannot subscribe to your own channel")
	}

	if err := service.subscriptionRepository.Subscribe(context, subscriberID, channel.ID); err != nil {
		return err
	}

	service.invalidateChannelCache(context, channel.Username, subscriberID)

	return nil
}

/*
Unsubscribe removes the viewer's subscription to the named channel.

Description: Idempotent; unsubscribing from a channel the viewer does not
follow succeeds silently.

Parameters:
  - context: context.Context
  - subscriberID: string
  - handle: string (channel username)

Returns:
  - error: apperr.NotFound (unknown channel) or storage failures
*/
func (service *Service) Unsubscribe(context context.Context, subscriberID, handle string) error {
	channel, err := service.resolveChannel(context, handle)
	if err != nil {
		return err
	}

	if err := service.subscriptionRepository.Unsubscribe(context, subscriberID, channel.ID); err != nil {
		return err
	}

	service.invalidateChannelCache(context, channel.Username, subscriberID)

	return nil
}

// resolveChannel looks up a channel account by its (possibly uncanonical) handle.
func (service *Service) resolveChannel(context context.Context, handle string) (*auth.Account, error) {
	canonical := username.Canonical(handle)
	if canonical == "" {
		return nil, apperr.ValidationError("Username is required")
	}

	return service.profileRepository.FindByUsername(context, canonical)
}

// invalidateChannelCache drops the viewer's cached channel projection, best-effort.
func (service *Service) invalidateChannelCache(context context.Context, channelUsername, viewerID string) {
	if err := service.profileCache.Invalidate(context, channelUsername, viewerID); err != nil {
		service.logger.Warn("channel_profile_cache_invalidate_failed",
			slog.String("channel", channelUsername),
			slog.Any("error", err),
		)
	}
}
