// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package video implements the minimal video catalog of the platform.

It covers publishing a video (media + thumbnail through the blob store),
resolving a single video for playback, and listing a channel's videos. A
playback by an authenticated viewer is recorded into their watch history
and counted as a view.
*/
package video

import "time"

// # Domain Entities

// Video represents one published media item.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     int       `json:"duration_seconds"`
	ViewCount    int64     `json:"view_count"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Validation Bounds

const (
	// MaxTitleLength bounds the video title (in runes).
	MaxTitleLength = 120

	// MaxDescriptionLength bounds the video description (in runes).
	MaxDescriptionLength = 5000
)

// # Field Identifiers

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDuration    = "duration_seconds"
	FieldVideoFile   = "video_file"
	FieldThumbnail   = "thumbnail"
	FieldVideoID     = "videoID"
	FieldUsername    = "username"
)
