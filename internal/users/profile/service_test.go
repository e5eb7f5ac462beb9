// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/blob"
	"github.com/taibuivan/vidora/internal/users/auth"
)

// # Test Fakes

type fakeProfileRepository struct {
	accounts      map[string]*auth.Account
	history       map[string][]WatchEntry
	subscriptions *fakeSubscriptionRepository
	channelReads  int
}

func newFakeProfileRepository(subscriptions *fakeSubscriptionRepository) *fakeProfileRepository {
	return &fakeProfileRepository{
		accounts:      make(map[string]*auth.Account),
		history:       make(map[string][]WatchEntry),
		subscriptions: subscriptions,
	}
}

func (repo *fakeProfileRepository) FindByID(_ context.Context, id string) (*auth.Account, error) {
	account, ok := repo.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	clone := *account
	return &clone, nil
}

func (repo *fakeProfileRepository) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	for _, account := range repo.accounts {
		if account.Username == username {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Channel")
}

func (repo *fakeProfileRepository) UpdateDetails(_ context.Context, accountID, fullName, email string) (*auth.Account, error) {
	account, ok := repo.accounts[accountID]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	account.FullName = fullName
	account.Email = email
	clone := *account
	return &clone, nil
}

func (repo *fakeProfileRepository) UpdateMediaURL(_ context.Context, accountID string, slot MediaSlot, locator string) error {
	account, ok := repo.accounts[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	if slot == SlotCover {
		account.CoverImageURL = locator
	} else {
		account.AvatarURL = locator
	}
	return nil
}

func (repo *fakeProfileRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*ChannelProfile, error) {
	repo.channelReads++
	account, err := repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	// Mirror the SQL projection: counts from the edge set, the flag from the
	// (viewer, channel) edge.
	subscriberCount := 0
	subscribedTo := 0
	for key := range repo.subscriptions.edges {
		if strings.HasSuffix(key, "->"+account.ID) {
			subscriberCount++
		}
		if strings.HasPrefix(key, account.ID+"->") {
			subscribedTo++
		}
	}

	return &ChannelProfile{
		ID:              account.ID,
		Username:        account.Username,
		Email:           account.Email,
		FullName:        account.FullName,
		AvatarURL:       account.AvatarURL,
		SubscriberCount: subscriberCount,
		SubscribedTo:    subscribedTo,
		IsSubscribed:    repo.subscriptions.edges[edgeKey(viewerID, account.ID)],
	}, nil
}

func (repo *fakeProfileRepository) WatchHistory(_ context.Context, accountID string) ([]WatchEntry, error) {
	return repo.history[accountID], nil
}

type fakeSubscriptionRepository struct {
	edges map[string]bool
}

func newFakeSubscriptionRepository() *fakeSubscriptionRepository {
	return &fakeSubscriptionRepository{edges: make(map[string]bool)}
}

func edgeKey(subscriberID, channelID string) string {
	return subscriberID + "->" + channelID
}

func (repo *fakeSubscriptionRepository) Subscribe(_ context.Context, subscriberID, channelID string) error {
	repo.edges[edgeKey(subscriberID, channelID)] = true
	return nil
}

func (repo *fakeSubscriptionRepository) Unsubscribe(_ context.Context, subscriberID, channelID string) error {
	delete(repo.edges, edgeKey(subscriberID, channelID))
	return nil
}

type fakeProfileCache struct {
	entries       map[string]*ChannelProfile
	invalidations []string
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{entries: make(map[string]*ChannelProfile)}
}

func (cache *fakeProfileCache) Get(_ context.Context, username, viewerID string) (*ChannelProfile, error) {
	if profile, ok := cache.entries[username+":"+viewerID]; ok {
		return profile, nil
	}
	return nil, apperr.NotFound("Cached channel profile")
}

func (cache *fakeProfileCache) Set(_ context.Context, username, viewerID string, profile *ChannelProfile, _ time.Duration) error {
	cache.entries[username+":"+viewerID] = profile
	return nil
}

func (cache *fakeProfileCache) Invalidate(_ context.Context, username, viewerID string) error {
	key := username + ":" + viewerID
	delete(cache.entries, key)
	cache.invalidations = append(cache.invalidations, key)
	return nil
}

type fakeBlobStore struct {
	uploads    int
	deleted    []string
	failDelete bool
}

func (store *fakeBlobStore) Upload(_ context.Context, _ string) (*blob.Asset, error) {
	store.uploads++
	assetID := fmt.Sprintf("new-asset-%d", store.uploads)
	return &blob.Asset{
		Locator: "https://cdn.test/media/" + assetID + ".png",
		AssetID: assetID,
	}, nil
}

func (store *fakeBlobStore) Delete(_ context.Context, assetID string) error {
	if store.failDelete {
		return errors.New("simulated storage outage")
	}
	store.deleted = append(store.deleted, assetID)
	return nil
}

// # Fixtures

func newTestService(t *testing.T) (*Service, *fakeProfileRepository, *fakeSubscriptionRepository, *fakeProfileCache, *fakeBlobStore) {
	t.Helper()

	subscriptions := newFakeSubscriptionRepository()
	repo := newFakeProfileRepository(subscriptions)
	cache := newFakeProfileCache()
	blobStore := &fakeBlobStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(repo, subscriptions, cache, blobStore, logger), repo, subscriptions, cache, blobStore
}

func seedAccount(repo *fakeProfileRepository, id, handle string) *auth.Account {
	account := &auth.Account{
		ID:           id,
		Username:     handle,
		Email:        handle + "@example.com",
		FullName:     "Seeded " + handle,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		AvatarURL:    "https://cdn.test/media/old-avatar-" + handle + ".png",
	}
	repo.accounts[id] = account
	return account
}

// # Media Replacement

func TestService_ReplaceMedia(t *testing.T) {
	service, repo, _, _, blobStore := newTestService(t)
	seedAccount(repo, "acc-1", "astra")

	account, err := service.ReplaceMedia(context.Background(), "acc-1", SlotAvatar, "/tmp/new-avatar.png")
	require.NoError(t, err)

	// The profile now points at the freshly uploaded object.
	assert.Contains(t, account.AvatarURL, "new-asset-1")
	assert.Contains(t, repo.accounts["acc-1"].AvatarURL, "new-asset-1")

	// The superseded object was deleted using the id derived from the old locator.
	require.Len(t, blobStore.deleted, 1)
	assert.Equal(t, "old-avatar-astra", blobStore.deleted[0])

	// Credentials stripped from the returned entity.
	assert.Empty(t, account.PasswordHash)
	assert.Empty(t, account.RefreshToken)
}

func TestService_ReplaceMedia_DeleteFailureIsTolerated(t *testing.T) {
	service, repo, _, _, blobStore := newTestService(t)
	seedAccount(repo, "acc-1", "astra")
	blobStore.failDelete = true

	account, err := service.ReplaceMedia(context.Background(), "acc-1", SlotAvatar, "/tmp/new-avatar.png")
	require.NoError(t, err, "a failed delete of the old object must not fail the replacement")

	assert.Contains(t, account.AvatarURL, "new-asset-1")
	assert.Contains(t, repo.accounts["acc-1"].AvatarURL, "new-asset-1")
}

func TestService_ReplaceMedia_CoverSlot(t *testing.T) {
	service, repo, _, _, blobStore := newTestService(t)
	seedAccount(repo, "acc-1", "astra")

	account, err := service.ReplaceMedia(context.Background(), "acc-1", SlotCover, "/tmp/new-cover.png")
	require.NoError(t, err)

	assert.Contains(t, account.CoverImageURL, "new-asset-1")

	// The account had no cover image before, so nothing was deleted.
	assert.Empty(t, blobStore.deleted)
}

func TestService_ReplaceMedia_Validation(t *testing.T) {
	service, repo, _, _, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")

	_, err := service.ReplaceMedia(context.Background(), "acc-1", SlotAvatar, "")
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"), "missing file")

	_, err = service.ReplaceMedia(context.Background(), "acc-1", MediaSlot("banner"), "/tmp/x.png")
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"), "unknown slot")

	_, err = service.ReplaceMedia(context.Background(), "ghost", SlotAvatar, "/tmp/x.png")
	assert.True(t, apperr.IsNotFound(err), "unknown account")
}

// # Read Aggregations

func TestService_ChannelProfile_CachesResult(t *testing.T) {
	service, repo, _, cache, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")

	first, err := service.ChannelProfile(context.Background(), "viewer-1", "Astra")
	require.NoError(t, err)
	assert.Equal(t, "astra", first.Username)
	assert.Equal(t, "astra@example.com", first.Email)
	assert.Equal(t, 1, repo.channelReads)

	// Second read is served from the cache.
	second, err := service.ChannelProfile(context.Background(), "viewer-1", "astra")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.channelReads, "database must not be hit on a cache hit")

	// A different viewer has their own entry.
	_, err = service.ChannelProfile(context.Background(), "viewer-2", "astra")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.channelReads)
	assert.Len(t, cache.entries, 2)
}

func TestService_ChannelProfile_SubscriptionVisibility(t *testing.T) {
	service, repo, _, _, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")
	seedAccount(repo, "acc-2", "nebula")

	require.NoError(t, service.Subscribe(context.Background(), "acc-1", "nebula"))

	// The subscriber sees the count and their own relationship.
	asSubscriber, err := service.ChannelProfile(context.Background(), "acc-1", "nebula")
	require.NoError(t, err)
	assert.Equal(t, 1, asSubscriber.SubscriberCount)
	assert.True(t, asSubscriber.IsSubscribed)

	// A non-subscriber sees the same count but no relationship.
	asStranger, err := service.ChannelProfile(context.Background(), "acc-3", "nebula")
	require.NoError(t, err)
	assert.Equal(t, 1, asStranger.SubscriberCount)
	assert.False(t, asStranger.IsSubscribed)

	// The subscriber's outgoing edge shows on their own channel.
	ownChannel, err := service.ChannelProfile(context.Background(), "", "astra")
	require.NoError(t, err)
	assert.Equal(t, 1, ownChannel.SubscribedTo)
	assert.Equal(t, 0, ownChannel.SubscriberCount)

	// After unsubscribing, a fresh viewer sees the edge gone.
	require.NoError(t, service.Unsubscribe(context.Background(), "acc-1", "nebula"))
	after, err := service.ChannelProfile(context.Background(), "acc-4", "nebula")
	require.NoError(t, err)
	assert.Equal(t, 0, after.SubscriberCount)
	assert.False(t, after.IsSubscribed)
}

func TestService_ChannelProfile_NotFound(t *testing.T) {
	service, _, _, _, _ := newTestService(t)

	_, err := service.ChannelProfile(context.Background(), "", "ghost")
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_WatchHistory(t *testing.T) {
	service, repo, _, _, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")
	repo.history["acc-1"] = []WatchEntry{
		{VideoID: "vid-2", Title: "Second watch"},
		{VideoID: "vid-1", Title: "First watch"},
	}

	entries, err := service.WatchHistory(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "vid-2", entries[0].VideoID)
}

func TestService_WatchHistory_AccountGuard(t *testing.T) {
	service, repo, _, _, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")

	// Existing account with no history gets an empty list, not an error.
	entries, err := service.WatchHistory(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A missing account is NotFound, never an empty list.
	_, err = service.WatchHistory(context.Background(), "ghost")
	assert.True(t, apperr.IsNotFound(err))
}

// # Subscriptions

func TestService_Subscribe(t *testing.T) {
	service, repo, subscriptions, cache, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")
	seedAccount(repo, "acc-2", "nebula")

	require.NoError(t, service.Subscribe(context.Background(), "acc-1", "nebula"))
	assert.True(t, subscriptions.edges[edgeKey("acc-1", "acc-2")])

	// Subscribing twice is a no-op.
	require.NoError(t, service.Subscribe(context.Background(), "acc-1", "nebula"))

	// The viewer's cached projection was invalidated.
	assert.Contains(t, cache.invalidations, "nebula:acc-1")
}

func TestService_Subscribe_Failures(t *testing.T) {
	service, repo, _, _, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")

	err := service.Subscribe(context.Background(), "acc-1", "astra")
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"), "self-subscription")

	err = service.Subscribe(context.Background(), "acc-1", "ghost")
	assert.True(t, apperr.IsNotFound(err), "unknown channel")
}

func TestService_Unsubscribe_Idempotent(t *testing.T) {
	service, repo, subscriptions, _, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")
	seedAccount(repo, "acc-2", "nebula")

	require.NoError(t, service.Subscribe(context.Background(), "acc-1", "nebula"))
	require.NoError(t, service.Unsubscribe(context.Background(), "acc-1", "nebula"))
	assert.False(t, subscriptions.edges[edgeKey("acc-1", "acc-2")])

	// Unsubscribing again still succeeds.
	assert.NoError(t, service.Unsubscribe(context.Background(), "acc-1", "nebula"))
}

// # Account Surface

func TestService_UpdateDetails(t *testing.T) {
	service, repo, _, _, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")

	account, err := service.UpdateDetails(context.Background(), "acc-1", "Astra V. Updated", "new@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Astra V. Updated", account.FullName)
	assert.Equal(t, "new@example.com", account.Email)
	assert.Empty(t, account.PasswordHash)

	_, err = service.UpdateDetails(context.Background(), "ghost", "X", "x@example.com")
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_GetCurrent(t *testing.T) {
	service, repo, _, _, _ := newTestService(t)
	seedAccount(repo, "acc-1", "astra")

	account, err := service.GetCurrent(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "astra", account.Username)
	assert.Empty(t, account.PasswordHash)
	assert.Empty(t, account.RefreshToken)
}
