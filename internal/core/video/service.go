// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/blob"
	"github.com/taibuivan/vidora/pkg/pagination"
	"github.com/taibuivan/vidora/pkg/username"
	"github.com/taibuivan/vidora/pkg/uuid"
)

// # Service Layer

// Service orchestrates the video catalog use cases.
type Service struct {
	videoRepository VideoRepository
	watchRecorder   WatchRecorder
	channelResolver ChannelResolver
	blobStore       blob.Store
	logger          *slog.Logger
}

// NewService constructs a new video [Service] with its dependencies.
func NewService(
	videoRepo VideoRepository,
	watchRecorder WatchRecorder,
	channelResolver ChannelResolver,
	blobStore blob.Store,
	logger *slog.Logger,
) *Service {
	return &Service{
		videoRepository: videoRepo,
		watchRecorder:   watchRecorder,
		channelResolver: channelResolver,
		blobStore:       blobStore,
		logger:          logger,
	}
}

// # Publishing

// PublishInput holds the data required to publish a new video.
//
// VideoPath and ThumbnailPath are LOCAL staged file paths; the service
// pushes both through the blob store.
type PublishInput struct {
	Title         string
	Description   string
	Duration      int
	VideoPath     string
	ThumbnailPath string
}

/*
Publish uploads and catalogs a new video for the owner's channel.

Description: Both the media file and the thumbnail are mandatory; the video
is uploaded first so a thumbnail failure never leaves a catalog entry
without media.

Parameters:
  - context: context.Context
  - ownerID: string
  - input: PublishInput

Returns:
  - *Video: Created catalog entry
  - error: ValidationError, UploadFailed, or storage failures
*/
func (service *Service) Publish(context context.Context, ownerID string, input PublishInput) (*Video, error) {
	if input.VideoPath == "" {
		return nil, apperr.ValidationError("A video file is required")
	}
	if input.ThumbnailPath == "" {
		return nil, apperr.ValidationError("A thumbnail is required")
	}

	media, err := service.blobStore.Upload(context, input.VideoPath)
	if err != nil {
		return nil, err
	}

	thumbnail, err := service.blobStore.Upload(context, input.ThumbnailPath)
	if err != nil {
		return nil, err
	}

	video := &Video{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        input.Title,
		Description:  input.Description,
		VideoURL:     media.Locator,
		ThumbnailURL: thumbnail.Locator,
		Duration:     input.Duration,
		IsPublished:  true,
	}

	if err := service.videoRepository.Create(context, video); err != nil {
		return nil, err
	}

	service.logger.Info("video_published",
		slog.String("video_id", video.ID),
		slog.String("owner_id", ownerID),
	)

	return video, nil
}

// # Playback

/*
Get resolves a single video for playback.

Description: When the viewer is authenticated, the playback is appended to
their watch history and counted as a view. Both side effects are
best-effort: a failed write is logged, never surfaced.

Parameters:
  - context: context.Context
  - viewerID: string (empty for anonymous viewers)
  - videoID: string

Returns:
  - *Video: Hydrated entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Get(context context.Context, viewerID, videoID string) (*Video, error) {
	video, err := service.videoRepository.FindByID(context, videoID)
	if err != nil {
		return nil, err
	}

	if viewerID != "" {
		if err := service.watchRecorder.RecordWatch(context, viewerID, video.ID); err != nil {
			service.logger.Warn("watch_history_record_failed",
				slog.String("video_id", video.ID),
				slog.Any("error", err),
			)
		}

		if err := service.videoRepository.IncrementViews(context, video.ID); err != nil {
			service.logger.Warn("view_count_increment_failed",
				slog.String("video_id", video.ID),
				slog.Any("error", err),
			)
		} else {
			video.ViewCount++
		}
	}

	return video, nil
}

// # Channel Listing

/*
ListByChannel returns one page of a channel's published videos.

Parameters:
  - context: context.Context
  - handle: string (channel username, any casing)
  - params: pagination.Params

Returns:
  - []Video: Newest first
  - pagination.Meta: Page metadata
  - error: apperr.NotFound (unknown channel) or storage failures
*/
func (service *Service) ListByChannel(context context.Context, handle string, params pagination.Params) ([]Video, pagination.Meta, error) {
	channel, err := service.channelResolver.FindByUsername(context, username.Canonical(handle))
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	videos, total, err := service.videoRepository.ListByOwner(context, channel.ID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("video_service_list_failed: %w", err)
	}

	return videos, pagination.NewMeta(params.Page, params.Limit, total), nil
}
