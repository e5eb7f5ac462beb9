// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/sec"
)

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("access-secret-for-tests", "refresh-secret-for-tests", "vidora.test")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_Construction verifies the dual-secret invariants.
*/
func TestTokenService_Construction(t *testing.T) {
	tests := []struct {
		name          string
		accessSecret  string
		refreshSecret string
		wantErr       bool
	}{
		{"valid_pair", "aaa", "bbb", false},
		{"missing_access", "", "bbb", true},
		{"missing_refresh", "aaa", "", true},
		{"identical_secrets", "aaa", "aaa", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenService(tt.accessSecret, tt.refreshSecret, "vidora.test")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestTokenService_AccessRoundTrip verifies sign + verify of an access token.
*/
func TestTokenService_AccessRoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "maria", "maria@example.com", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, "maria@example.com", claims.Email)
}

/*
TestTokenService_SecretsAreNotInterchangeable ensures a refresh token never
verifies as an access token and vice versa.
*/
func TestTokenService_SecretsAreNotInterchangeable(t *testing.T) {
	service := newTestTokenService(t)

	refreshToken, err := service.GenerateRefreshToken("user-1", time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(refreshToken)
	assert.Error(t, err)

	accessToken, err := service.GenerateAccessToken("user-1", "maria", "maria@example.com", time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyRefreshToken(accessToken)
	assert.Error(t, err)
}

/*
TestTokenService_Expiry verifies that an expired token is rejected.
*/
func TestTokenService_Expiry(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateRefreshToken("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyRefreshToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_TamperedToken verifies signature enforcement.
*/
func TestTokenService_TamperedToken(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "maria", "maria@example.com", time.Minute)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = service.VerifyToken(tampered)
	assert.Error(t, err)
}
