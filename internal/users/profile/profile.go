// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile implements the public-facing side of a Vidora account.

Every account doubles as a channel. This package owns the channel's mutable
surface (details, avatar, cover image), the subscription graph between
channels, and the two heavy read aggregations: channel profiles and watch
history.

# Architecture

  - Service: Orchestrates media replacement, detail updates, and aggregations.
  - Repository: Postgres for truth, Redis as a short-TTL read cache for
    channel profiles.
  - Media: Avatar/cover replacement goes through the blob store adapter with
    best-effort cleanup of the superseded object.
*/
package profile

import (
	"time"
)

// # Media Slots

// MediaSlot names one of the account's two replaceable image slots.
type MediaSlot string

const (
	// SlotAvatar is the mandatory channel avatar.
	SlotAvatar MediaSlot = "avatar"
	// SlotCover is the optional channel cover image.
	SlotCover MediaSlot = "cover_image"
)

// Valid reports whether the slot is one of the two known media slots.
func (slot MediaSlot) Valid() bool {
	return slot == SlotAvatar || slot == SlotCover
}

// # Read Models

// ChannelProfile is the public projection of an account viewed as a channel.
type ChannelProfile struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	AvatarURL       string    `json:"avatar_url"`
	CoverImageURL   string    `json:"cover_image_url,omitempty"`
	SubscriberCount int       `json:"subscriber_count"`
	SubscribedTo    int       `json:"subscribed_to_count"`
	IsSubscribed    bool      `json:"is_subscribed"`
	CreatedAt       time.Time `json:"created_at"`
}

// WatchEntry is one resolved item of an account's watch history.
type WatchEntry struct {
	VideoID       string    `json:"video_id"`
	Title         string    `json:"title"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	Duration      int       `json:"duration_seconds"`
	OwnerID       string    `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	OwnerFullName string    `json:"owner_full_name"`
	OwnerAvatar   string    `json:"owner_avatar_url"`
	WatchedAt     time.Time `json:"watched_at"`
}

// # Cache Tuning

const (
	// ChannelProfileCacheTTL bounds staleness of the Redis-cached projection.
	ChannelProfileCacheTTL = 60 * time.Second
)

// # Field Identifiers

const (
	FieldFullName = "full_name"
	FieldEmail    = "email"
	FieldUsername = "username"
	FieldMessage  = "message"
)
