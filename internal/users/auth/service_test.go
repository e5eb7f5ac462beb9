// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/blob"
	"github.com/taibuivan/vidora/internal/platform/sec"
)

// # Test Fakes

// fakeAccountRepository is an in-memory AccountRepository.
type fakeAccountRepository struct {
	accounts map[string]*Account
	failSave bool
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{accounts: make(map[string]*Account)}
}

func (repo *fakeAccountRepository) Create(_ context.Context, account *Account) error {
	for _, existing := range repo.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return apperr.Conflict("Account already exists")
		}
	}
	clone := *account
	repo.accounts[account.ID] = &clone
	return nil
}

func (repo *fakeAccountRepository) FindByID(_ context.Context, id string) (*Account, error) {
	account, ok := repo.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	clone := *account
	return &clone, nil
}

func (repo *fakeAccountRepository) FindByUsername(_ context.Context, username string) (*Account, error) {
	for _, account := range repo.accounts {
		if account.Username == username {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeAccountRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	for _, account := range repo.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeAccountRepository) FindByLogin(ctx context.Context, login string) (*Account, error) {
	if account, err := repo.FindByUsername(ctx, login); err == nil {
		return account, nil
	}
	return repo.FindByEmail(ctx, login)
}

func (repo *fakeAccountRepository) SaveRefreshToken(_ context.Context, accountID, token string) error {
	if repo.failSave {
		return errors.New("simulated storage outage")
	}
	account, ok := repo.accounts[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	account.RefreshToken = token
	return nil
}

func (repo *fakeAccountRepository) ClearRefreshToken(_ context.Context, accountID string) error {
	if account, ok := repo.accounts[accountID]; ok {
		account.RefreshToken = ""
	}
	return nil
}

func (repo *fakeAccountRepository) UpdatePassword(_ context.Context, accountID, newHash string) error {
	account, ok := repo.accounts[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	account.PasswordHash = newHash
	return nil
}

// fakeTokenProvider issues unique, parseable tokens without real crypto.
//
// A monotonic counter guarantees that two tokens for the same account are
// never byte-identical, which the rotation tests depend on.
type fakeTokenProvider struct {
	counter int
}

func (provider *fakeTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	provider.counter++
	return fmt.Sprintf("access|%s|%d", userID, provider.counter), nil
}

func (provider *fakeTokenProvider) GenerateRefreshToken(userID string, _ time.Duration) (string, error) {
	provider.counter++
	return fmt.Sprintf("refresh|%s|%d", userID, provider.counter), nil
}

func (provider *fakeTokenProvider) VerifyRefreshToken(tokenString string) (*sec.AuthClaims, error) {
	parts := strings.Split(tokenString, "|")
	if len(parts) != 3 || parts[0] != "refresh" {
		return nil, errors.New("fake: malformed refresh token")
	}
	return &sec.AuthClaims{UserID: parts[1]}, nil
}

// fakeBlobStore records uploads and deletions in memory.
type fakeBlobStore struct {
	uploads    int
	deleted    []string
	failUpload bool
}

func (store *fakeBlobStore) Upload(_ context.Context, localPath string) (*blob.Asset, error) {
	if store.failUpload {
		return nil, apperr.UploadFailed("simulated upload failure", nil)
	}
	store.uploads++
	assetID := fmt.Sprintf("asset-%d", store.uploads)
	return &blob.Asset{
		Locator: "https://cdn.test/media/" + assetID + ".png",
		AssetID: assetID,
	}, nil
}

func (store *fakeBlobStore) Delete(_ context.Context, assetID string) error {
	store.deleted = append(store.deleted, assetID)
	return nil
}

// # Fixtures

func newTestService(t *testing.T) (*Service, *fakeAccountRepository, *fakeBlobStore) {
	t.Helper()
	repo := newFakeAccountRepository()
	blobStore := &fakeBlobStore{}
	return NewService(repo, &fakeTokenProvider{}, blobStore), repo, blobStore
}

func seedAccount(t *testing.T, repo *fakeAccountRepository, password string) *Account {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	account := &Account{
		ID:           "0190b7a2-4f3c-7000-8000-0123456789ab",
		Username:     "astra",
		Email:        "astra@example.com",
		FullName:     "Astra Vidal",
		PasswordHash: hash,
		AvatarURL:    "https://cdn.test/media/seed-avatar.png",
	}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

// # Session Manager

func TestService_IssueTokenPair(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "hunter2-hunter2")

	pair, err := service.IssueTokenPair(context.Background(), account.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// The returned refresh token must be the one stored in the slot.
	stored, err := repo.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

func TestService_IssueTokenPair_UnknownAccount(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.IssueTokenPair(context.Background(), "missing-id")
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_IssueTokenPair_PersistFailure(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "hunter2-hunter2")

	repo.failSave = true
	_, err := service.IssueTokenPair(context.Background(), account.ID)
	assert.Error(t, err)
}

func TestService_Rotate(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "hunter2-hunter2")

	first, err := service.IssueTokenPair(context.Background(), account.ID)
	require.NoError(t, err)

	second, err := service.Rotate(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The slot now holds the second token.
	stored, err := repo.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, second.RefreshToken, stored.RefreshToken)
}

func TestService_Rotate_ReplayDetected(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "hunter2-hunter2")

	first, err := service.IssueTokenPair(context.Background(), account.ID)
	require.NoError(t, err)

	_, err = service.Rotate(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	// Replaying the rotated-out token must be rejected even though the
	// token itself still verifies cryptographically.
	_, err = service.Rotate(context.Background(), first.RefreshToken)
	assert.True(t, apperr.IsCode(err, "TOKEN_MISMATCH"))
}

func TestService_Rotate_InvalidToken(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Rotate(context.Background(), "not-a-token")
	assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
}

func TestService_Rotate_AfterLogout(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "hunter2-hunter2")

	pair, err := service.IssueTokenPair(context.Background(), account.ID)
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), account.ID))

	// The slot is empty; the still-valid token no longer matches anything.
	_, err = service.Rotate(context.Background(), pair.RefreshToken)
	assert.True(t, apperr.IsCode(err, "TOKEN_MISMATCH"))
}

func TestService_Rotate_UnknownAccount(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Rotate(context.Background(), "refresh|ghost-account|1")
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_Logout_Idempotent(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "hunter2-hunter2")

	_, err := service.IssueTokenPair(context.Background(), account.ID)
	require.NoError(t, err)

	assert.NoError(t, service.Logout(context.Background(), account.ID))
	assert.NoError(t, service.Logout(context.Background(), account.ID), "second logout must succeed")
	assert.NoError(t, service.Logout(context.Background(), "never-existed"), "unknown account must succeed")
}

// # Registration

func TestService_Register(t *testing.T) {
	service, repo, blobStore := newTestService(t)

	account, err := service.Register(context.Background(), RegisterInput{
		FullName:   "Astra Vidal",
		Username:   "  AstraVid  ",
		Email:      "astra@example.com",
		Password:   "hunter2-hunter2",
		AvatarPath: "/tmp/avatar.png",
		CoverPath:  "/tmp/cover.png",
	})
	require.NoError(t, err)

	// Username folded to canonical form.
	assert.Equal(t, "astravid", account.Username)

	// Credentials stripped from the returned entity.
	assert.Empty(t, account.PasswordHash)
	assert.Empty(t, account.RefreshToken)

	assert.NotEmpty(t, account.AvatarURL)
	assert.NotEmpty(t, account.CoverImageURL)
	assert.Equal(t, 2, blobStore.uploads)

	// But the stored row keeps the hash.
	stored, err := repo.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "hunter2-hunter2", stored.PasswordHash)
}

func TestService_Register_Conflicts(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedAccount(t, repo, "hunter2-hunter2")

	testCases := []struct {
		name     string
		username string
		email    string
	}{
		{"duplicate username", "astra", "fresh@example.com"},
		{"duplicate username case-insensitive", "AsTrA", "fresh@example.com"},
		{"duplicate email", "freshuser", "astra@example.com"},
		{"duplicate email case-insensitive", "freshuser", "Astra@Example.COM"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), RegisterInput{
				FullName:   "Someone Else",
				Username:   testCase.username,
				Email:      testCase.email,
				Password:   "hunter2-hunter2",
				AvatarPath: "/tmp/avatar.png",
			})
			assert.True(t, apperr.IsCode(err, "CONFLICT"))
		})
	}
}

func TestService_Register_MixedCaseEmail(t *testing.T) {
	service, _, _ := newTestService(t)

	account, err := service.Register(context.Background(), RegisterInput{
		FullName:   "Astra Vidal",
		Username:   "astra",
		Email:      "Astra@Example.com",
		Password:   "hunter2-hunter2",
		AvatarPath: "/tmp/avatar.png",
	})
	require.NoError(t, err)

	// The stored address is folded to lowercase.
	assert.Equal(t, "astra@example.com", account.Email)

	// Logging in works with the address exactly as typed at signup.
	_, err = service.Login(context.Background(), LoginInput{
		Login:    "Astra@Example.com",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)

	// And with any other casing.
	_, err = service.Login(context.Background(), LoginInput{
		Login:    "ASTRA@EXAMPLE.COM",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)
}

func TestService_Register_AvatarRequired(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), RegisterInput{
		FullName: "Astra Vidal",
		Username: "astra",
		Email:    "astra@example.com",
		Password: "hunter2-hunter2",
	})
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

func TestService_Register_AvatarUploadFailure(t *testing.T) {
	service, _, blobStore := newTestService(t)
	blobStore.failUpload = true

	_, err := service.Register(context.Background(), RegisterInput{
		FullName:   "Astra Vidal",
		Username:   "astra",
		Email:      "astra@example.com",
		Password:   "hunter2-hunter2",
		AvatarPath: "/tmp/avatar.png",
	})
	assert.True(t, apperr.IsCode(err, "UPLOAD_FAILED"))
}

// # Authentication

func TestService_Login(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "hunter2-hunter2")

	testCases := []struct {
		name  string
		login string
	}{
		{"by username", "astra"},
		{"by email", "astra@example.com"},
		{"by uppercase username", "ASTRA"},
		{"by mixed-case email", "Astra@Example.COM"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			session, err := service.Login(context.Background(), LoginInput{
				Login:    testCase.login,
				Password: "hunter2-hunter2",
			})
			require.NoError(t, err)

			assert.Equal(t, account.ID, session.Account.ID)
			assert.Empty(t, session.Account.PasswordHash)
			assert.NotEmpty(t, session.Tokens.AccessToken)
			assert.NotEmpty(t, session.Tokens.RefreshToken)
		})
	}
}

func TestService_Login_Failures(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedAccount(t, repo, "hunter2-hunter2")

	_, err := service.Login(context.Background(), LoginInput{
		Login:    "nobody",
		Password: "hunter2-hunter2",
	})
	assert.True(t, apperr.IsNotFound(err), "unknown identity")

	_, err = service.Login(context.Background(), LoginInput{
		Login:    "astra",
		Password: "wrong-password",
	})
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"), "wrong password")
}

// # Credential Management

func TestService_ChangePassword(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "old-password-1")

	err := service.ChangePassword(context.Background(), account.ID, "old-password-1", "new-password-2")
	require.NoError(t, err)

	// Old password no longer works, new one does.
	_, err = service.Login(context.Background(), LoginInput{Login: "astra", Password: "old-password-1"})
	assert.Error(t, err)

	_, err = service.Login(context.Background(), LoginInput{Login: "astra", Password: "new-password-2"})
	assert.NoError(t, err)
}

func TestService_ChangePassword_Failures(t *testing.T) {
	service, repo, _ := newTestService(t)
	account := seedAccount(t, repo, "old-password-1")

	err := service.ChangePassword(context.Background(), account.ID, "old-password-1", "old-password-1")
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"), "unchanged password")

	err = service.ChangePassword(context.Background(), account.ID, "guessed-wrong", "new-password-2")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"), "wrong old password")

	err = service.ChangePassword(context.Background(), "missing-id", "old-password-1", "new-password-2")
	assert.True(t, apperr.IsNotFound(err), "unknown account")
}
