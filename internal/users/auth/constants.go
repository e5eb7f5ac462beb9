// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Session Token Lifetimes

const (
	// AccessTokenTTL is the lifetime of a short-lived access token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of the long-lived refresh token.
	// The stored slot expires with the token itself.
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// # Validation Bounds

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MinUsernameLength is the minimum accepted username length (in runes).
	MinUsernameLength = 3
)
