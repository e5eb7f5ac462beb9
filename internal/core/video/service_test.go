// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/blob"
	"github.com/taibuivan/vidora/internal/users/auth"
	"github.com/taibuivan/vidora/pkg/pagination"
)

// # Test Fakes

type fakeVideoRepository struct {
	videos map[string]*Video
	order  []string
}

func newFakeVideoRepository() *fakeVideoRepository {
	return &fakeVideoRepository{videos: make(map[string]*Video)}
}

func (repo *fakeVideoRepository) Create(_ context.Context, video *Video) error {
	clone := *video
	repo.videos[video.ID] = &clone
	repo.order = append(repo.order, video.ID)
	return nil
}

func (repo *fakeVideoRepository) FindByID(_ context.Context, id string) (*Video, error) {
	video, ok := repo.videos[id]
	if !ok || !video.IsPublished {
		return nil, apperr.NotFound("Video")
	}
	clone := *video
	return &clone, nil
}

func (repo *fakeVideoRepository) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]Video, int, error) {
	owned := make([]Video, 0)
	// Newest first.
	for i := len(repo.order) - 1; i >= 0; i-- {
		video := repo.videos[repo.order[i]]
		if video.OwnerID == ownerID && video.IsPublished {
			owned = append(owned, *video)
		}
	}

	total := len(owned)
	if offset >= total {
		return []Video{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (repo *fakeVideoRepository) IncrementViews(_ context.Context, videoID string) error {
	video, ok := repo.videos[videoID]
	if !ok {
		return apperr.NotFound("Video")
	}
	video.ViewCount++
	return nil
}

type fakeWatchRecorder struct {
	records []string
	fail    bool
}

func (recorder *fakeWatchRecorder) RecordWatch(_ context.Context, accountID, videoID string) error {
	if recorder.fail {
		return errors.New("simulated storage outage")
	}
	recorder.records = append(recorder.records, accountID+":"+videoID)
	return nil
}

type fakeChannelResolver struct {
	channels map[string]*auth.Account
}

func (resolver *fakeChannelResolver) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	account, ok := resolver.channels[username]
	if !ok {
		return nil, apperr.NotFound("Channel")
	}
	return account, nil
}

type fakeBlobStore struct {
	uploads int
}

func (store *fakeBlobStore) Upload(_ context.Context, _ string) (*blob.Asset, error) {
	store.uploads++
	assetID := fmt.Sprintf("asset-%d", store.uploads)
	return &blob.Asset{
		Locator: "https://cdn.test/media/" + assetID + ".mp4",
		AssetID: assetID,
	}, nil
}

func (store *fakeBlobStore) Delete(_ context.Context, _ string) error {
	return nil
}

// # Fixtures

func newTestService(t *testing.T) (*Service, *fakeVideoRepository, *fakeWatchRecorder) {
	t.Helper()

	repo := newFakeVideoRepository()
	recorder := &fakeWatchRecorder{}
	resolver := &fakeChannelResolver{channels: map[string]*auth.Account{
		"astra": {ID: "acc-1", Username: "astra"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(repo, recorder, resolver, &fakeBlobStore{}, logger), repo, recorder
}

func publishTestVideo(t *testing.T, service *Service, title string) *Video {
	t.Helper()

	video, err := service.Publish(context.Background(), "acc-1", PublishInput{
		Title:         title,
		Duration:      120,
		VideoPath:     "/tmp/clip.mp4",
		ThumbnailPath: "/tmp/thumb.png",
	})
	require.NoError(t, err)
	return video
}

// # Publishing

func TestService_Publish(t *testing.T) {
	service, repo, _ := newTestService(t)

	video := publishTestVideo(t, service, "First upload")

	assert.NotEmpty(t, video.ID)
	assert.Equal(t, "acc-1", video.OwnerID)
	assert.NotEmpty(t, video.VideoURL)
	assert.NotEmpty(t, video.ThumbnailURL)
	assert.NotEqual(t, video.VideoURL, video.ThumbnailURL)
	assert.True(t, video.IsPublished)

	_, ok := repo.videos[video.ID]
	assert.True(t, ok, "video persisted")
}

func TestService_Publish_RequiresBothFiles(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Publish(context.Background(), "acc-1", PublishInput{
		Title:         "No media",
		ThumbnailPath: "/tmp/thumb.png",
	})
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"), "missing video file")

	_, err = service.Publish(context.Background(), "acc-1", PublishInput{
		Title:     "No thumbnail",
		VideoPath: "/tmp/clip.mp4",
	})
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"), "missing thumbnail")
}

// # Playback

func TestService_Get_AnonymousViewer(t *testing.T) {
	service, _, recorder := newTestService(t)
	video := publishTestVideo(t, service, "Clip")

	resolved, err := service.Get(context.Background(), "", video.ID)
	require.NoError(t, err)

	assert.Equal(t, video.ID, resolved.ID)
	assert.Equal(t, int64(0), resolved.ViewCount, "anonymous playback is not counted")
	assert.Empty(t, recorder.records, "anonymous playback is not recorded")
}

func TestService_Get_AuthenticatedViewer(t *testing.T) {
	service, repo, recorder := newTestService(t)
	video := publishTestVideo(t, service, "Clip")

	resolved, err := service.Get(context.Background(), "viewer-1", video.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), resolved.ViewCount)
	assert.Equal(t, int64(1), repo.videos[video.ID].ViewCount)
	assert.Equal(t, []string{"viewer-1:" + video.ID}, recorder.records)
}

func TestService_Get_RecorderFailureIsTolerated(t *testing.T) {
	service, _, recorder := newTestService(t)
	video := publishTestVideo(t, service, "Clip")
	recorder.fail = true

	resolved, err := service.Get(context.Background(), "viewer-1", video.ID)
	require.NoError(t, err, "history write failure must not break playback")
	assert.Equal(t, video.ID, resolved.ID)
}

func TestService_Get_NotFound(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Get(context.Background(), "viewer-1", "missing-video")
	assert.True(t, apperr.IsNotFound(err))
}

// # Channel Listing

func TestService_ListByChannel(t *testing.T) {
	service, _, _ := newTestService(t)

	for i := 1; i <= 5; i++ {
		publishTestVideo(t, service, fmt.Sprintf("Clip %d", i))
	}

	videos, meta, err := service.ListByChannel(context.Background(), "Astra", pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)

	assert.Len(t, videos, 2)
	assert.Equal(t, "Clip 5", videos[0].Title, "newest first")
	assert.Equal(t, 5, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	// Last partial page.
	videos, _, err = service.ListByChannel(context.Background(), "astra", pagination.Params{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, videos, 1)
}

func TestService_ListByChannel_UnknownChannel(t *testing.T) {
	service, _, _ := newTestService(t)

	_, _, err := service.ListByChannel(context.Background(), "ghost", pagination.Params{Page: 1, Limit: 10})
	assert.True(t, apperr.IsNotFound(err))
}
