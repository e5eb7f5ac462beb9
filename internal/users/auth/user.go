// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core account entity and the logic for registration, login,
logout, password change, and the single-slot refresh-token session model.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"strings"
	"time"
)

// # Domain Entities

// Account represents a registered member of the Vidora platform.
//
// Every account doubles as a channel: avatar and cover image are the channel's
// public branding, and other accounts can subscribe to it.
type Account struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	PasswordHash  string    `json:"-"` // Explicitly omitted from JSON for security.
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	RefreshToken  string    `json:"-"` // Single-slot session token. Omitted for security.
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the account with credential material zeroed.
//
// The JSON tags already hide PasswordHash and RefreshToken from responses;
// zeroing them as well keeps the values out of logs and test diffs.
func (account *Account) Sanitized() *Account {
	clone := *account
	clone.PasswordHash = ""
	clone.RefreshToken = ""
	return &clone
}

// CanonicalEmail folds an email address into its stored form: surrounding
// whitespace trimmed, the whole address lowercased.
//
// Lowercasing the local part is technically lossy per RFC 5321, but matches
// how mainstream providers treat addresses and makes both email uniqueness
// and login-by-email case-insensitive.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TokenPair is the access/refresh token set issued for a session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldFullName        = "full_name"
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldLogin           = "login"
	FieldAvatar          = "avatar"
	FieldCoverImage      = "cover_image"
	FieldOldPassword     = "old_password"
	FieldNewPassword     = "new_password"
	FieldConfirmPassword = "confirm_password"
	FieldAccessToken     = "access_token"
	FieldRefreshToken    = "refresh_token"
	FieldUser            = "user"
	FieldMessage         = "message"
)
