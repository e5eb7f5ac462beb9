// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/blob"
	"github.com/taibuivan/vidora/internal/platform/ctxutil"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/pkg/username"
	"github.com/taibuivan/vidora/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and verifying session tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given account.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - email: The email of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an error if signing fails.
	GenerateAccessToken(userID, username, email string, timeToLive time.Duration) (string, error)

	// GenerateRefreshToken creates a signed, minimal-payload refresh JWT.
	GenerateRefreshToken(userID string, timeToLive time.Duration) (string, error)

	// VerifyRefreshToken checks signature and expiry of a refresh token string.
	VerifyRefreshToken(tokenString string) (*sec.AuthClaims, error)
}

// Service implements user authentication and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token rotation logic must be reviewed by the security team.
type Service struct {
	accountRepository AccountRepository
	tokenProvider     TokenProvider
	blobStore         blob.Store
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(accountRepo AccountRepository, tokenProv TokenProvider, blobStore blob.Store) *Service {
	return &Service{
		accountRepository: accountRepo,
		tokenProvider:     tokenProv,
		blobStore:         blobStore,
	}
}

// # Session Manager

/*
IssueTokenPair mints a fresh access/refresh pair and stores the refresh token.

Description: The refresh token is written into the account's single session
slot, replacing whatever was there. A pair is only returned once the slot
write has succeeded, so a returned refresh token is always the stored one.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *TokenPair: Signed access and refresh tokens
  - error: apperr.NotFound if the account is gone, or signing/storage failures
*/
func (service *Service) IssueTokenPair(context context.Context, accountID string) (*TokenPair, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(account.ID, account.Username, account.Email, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.GenerateRefreshToken(account.ID, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.accountRepository.SaveRefreshToken(context, account.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_persist_refresh_failed: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

/*
Rotate exchanges a valid refresh token for a brand-new token pair.

Description: Single-slot rotation with replay detection. The incoming token
must verify cryptographically AND be byte-identical to the stored slot; a
verified-but-superseded token indicates replay of a rotated-out credential
and is rejected with TokenMismatch.

Parameters:
  - context: context.Context
  - incomingToken: string

Returns:
  - *TokenPair: New session credentials
  - error: apperr.InvalidToken, apperr.NotFound, apperr.TokenMismatch,
    or signing/storage failures
*/
func (service *Service) Rotate(context context.Context, incomingToken string) (*TokenPair, error) {
	claims, err := service.tokenProvider.VerifyRefreshToken(incomingToken)
	if err != nil {
		return nil, apperr.InvalidToken("Refresh token is invalid or expired")
	}

	account, err := service.accountRepository.FindByID(context, claims.UserID)
	if err != nil {
		return nil, err
	}

	// Constant-time comparison against the stored slot. An empty slot
	// (logged out) also fails here.
	if subtle.ConstantTimeCompare([]byte(account.RefreshToken), []byte(incomingToken)) != 1 {
		return nil, apperr.TokenMismatch()
	}

	return service.IssueTokenPair(context, account.ID)
}

/*
Invalidate clears the account's refresh-token slot.

Description: Ends the tracked session. The operation is idempotent: clearing
an empty slot or a nonexistent account succeeds silently.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Storage failures only
*/
func (service *Service) Invalidate(context context.Context, accountID string) error {
	if err := service.accountRepository.ClearRefreshToken(context, accountID); err != nil {
		return fmt.Errorf("auth_service_invalidate_failed: %w", err)
	}
	return nil
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
//
// AvatarPath and CoverPath are LOCAL staged file paths (see requestutil);
// the service pushes them through the blob store.
type RegisterInput struct {
	FullName   string
	Username   string
	Email      string
	Password   string
	AvatarPath string
	CoverPath  string
}

/*
Register validates, hashes, and persists a brand new account.

Description: Deep-enrollment of a new member. The username is folded to its
canonical form, identity conflicts are rejected, the avatar is mandatory and
uploaded first, the cover image is best-effort.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created entity with credentials stripped
  - error: ValidationError, Conflict, UploadFailed, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {

	// Fold the handle into canonical form before any uniqueness checks.
	canonicalUsername := username.Canonical(input.Username)
	if !username.IsValid(canonicalUsername) {
		return nil, apperr.ValidationError("Username must be 3-30 characters of letters, digits, '.', '_' or '-'")
	}

	// Verify username uniqueness. Return a client-safe Conflict error.
	if _, err := service.accountRepository.FindByUsername(context, canonicalUsername); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Fold the email too: uniqueness and login-by-email are case-insensitive.
	canonicalEmail := CanonicalEmail(input.Email)

	// Verify email uniqueness. Return a client-safe Conflict error.
	if _, err := service.accountRepository.FindByEmail(context, canonicalEmail); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Avatar is the mandatory branding slot; no locator means no account.
	if input.AvatarPath == "" {
		return nil, apperr.ValidationError("Avatar image is required")
	}

	avatar, err := service.blobStore.Upload(context, input.AvatarPath)
	if err != nil {
		return nil, err
	}

	// Cover image is optional and best-effort: a failed upload is logged and
	// the account is created without one.
	coverURL := ""
	if input.CoverPath != "" {
		cover, err := service.blobStore.Upload(context, input.CoverPath)
		if err != nil {
			ctxutil.GetLogger(context).Warn("register_cover_upload_failed", slog.Any("error", err))
		} else {
			coverURL = cover.Locator
		}
	}

	// Construct the new Account entity. Time-sortable ID to prevent PG index fragmentation.
	account := &Account{
		ID:            uuid.New(),
		Username:      canonicalUsername,
		Email:         canonicalEmail,
		FullName:      input.FullName,
		PasswordHash:  hashedPassword,
		AvatarURL:     avatar.Locator,
		CoverImageURL: coverURL,
	}

	// Persist the account to the database
	if err := service.accountRepository.Create(context, account); err != nil {
		return nil, err
	}

	return account.Sanitized(), nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
}

// LoginSession represents a successfully established session.
type LoginSession struct {
	Tokens  *TokenPair
	Account *Account
}

/*
Login validates account credentials and issues a session token pair.

Description: Verifies identity by username or email, performs constant-time
password comparison, and stores the new refresh token in the session slot.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session credentials
  - err: NotFound, Unauthorized, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	account, err := service.accountRepository.FindByLogin(context, canonicalLogin(input.Login))
	if err != nil {
		return nil, err
	}

	// Verify password hash using bcrypt's constant-time comparison to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid account credentials")
	}

	tokens, err := service.IssueTokenPair(context, account.ID)
	if err != nil {
		return nil, err
	}

	return &LoginSession{
		Tokens:  tokens,
		Account: account.Sanitized(),
	}, nil
}

/*
Logout ends the account's tracked session.

Description: Clears the single refresh-token slot. Logging out an account
that has no live session succeeds (idempotent operation).

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Storage failures only
*/
func (service *Service) Logout(context context.Context, accountID string) error {
	return service.Invalidate(context, accountID)
}

// canonicalLogin folds a login identifier into its stored form. Email-shaped
// identifiers get email folding; everything else is treated as a username.
// Usernames never contain '@' (see pkg/username), so the branch is unambiguous.
func canonicalLogin(login string) string {
	if strings.Contains(login, "@") {
		return CanonicalEmail(login)
	}
	return username.Canonical(login)
}

// # Credential Management

/*
ChangePassword allows an authenticated member to update their credentials.

Description: Rejects no-op changes up front, verifies the current password,
then replaces the stored hash. The live session is intentionally kept.

Parameters:
  - context: context.Context
  - accountID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - error: ValidationError, Unauthorized, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, accountID, oldPassword, newPassword string) error {
	if oldPassword == newPassword {
		return apperr.ValidationError("New password must differ from the old password")
	}

	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing the change
	if !sec.CheckPasswordHash(oldPassword, account.PasswordHash) {
		return apperr.Unauthorized("Old password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.accountRepository.UpdatePassword(context, accountID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}
