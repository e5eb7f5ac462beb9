// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
)

// anonymousViewer keys cache entries for unauthenticated requests.
const anonymousViewer = "anon"

// RedisProfileCache implements ProfileCache using Redis.
//
// Entries are keyed per (channel, viewer) because the IsSubscribed flag is
// viewer-specific. The short TTL bounds staleness for viewers whose entry is
// not explicitly invalidated.
type RedisProfileCache struct {
	client *redis.Client
}

// NewProfileCache creates a new Redis-backed ProfileCache.
func NewProfileCache(client *redis.Client) *RedisProfileCache {
	return &RedisProfileCache{client: client}
}

// cacheKey builds the Redis key for a (channel, viewer) pair.
func cacheKey(username, viewerID string) string {
	if viewerID == "" {
		viewerID = anonymousViewer
	}
	return constants.RedisPrefixChannelProfile + username + ":" + viewerID
}

/*
Get returns the cached channel projection for (username, viewerID).

Description: Returns apperr.NotFound on a cache miss so callers can fall
through to the database without special-casing redis.Nil.

Parameters:
  - context: context.Context
  - username: string
  - viewerID: string

Returns:
  - *ChannelProfile: Cached projection
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisProfileCache) Get(context context.Context, username, viewerID string) (*ChannelProfile, error) {
	payload, err := cache.client.Get(context, cacheKey(username, viewerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Cached channel profile")
		}
		return nil, fmt.Errorf("redis_profile_cache_get_failed: %w", err)
	}

	channel := &ChannelProfile{}
	if err := json.Unmarshal(payload, channel); err != nil {
		// A corrupt entry behaves like a miss.
		return nil, apperr.NotFound("Cached channel profile")
	}

	return channel, nil
}

/*
Set stores the channel projection with the given TTL.

Parameters:
  - context: context.Context
  - username: string
  - viewerID: string
  - profile: *ChannelProfile
  - ttl: time.Duration

Returns:
  - error: Serialization or storage failures
*/
func (cache *RedisProfileCache) Set(context context.Context, username, viewerID string, profile *ChannelProfile, ttl time.Duration) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("redis_profile_cache_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, cacheKey(username, viewerID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_profile_cache_set_failed: %w", err)
	}

	return nil
}

/*
Invalidate drops the cached projection for (username, viewerID).

Parameters:
  - context: context.Context
  - username: string
  - viewerID: string

Returns:
  - error: Deletion failures
*/
func (cache *RedisProfileCache) Invalidate(context context.Context, username, viewerID string) error {
	if err := cache.client.Del(context, cacheKey(username, viewerID)).Err(); err != nil {
		return fmt.Errorf("redis_profile_cache_invalidate_failed: %w", err)
	}

	return nil
}
