// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
HTTP delivery layer for the auth package.

It implements the gateway for the account lifecycle: registration, login,
session refresh, logout, and password change.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: RESTful JSON, with multipart for media-bearing registration.
  - Security: Orchestrates the accessToken/refreshToken cookie pair.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the account lifecycle entry
// points (Registration, Login, Session refresh, Password change).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account (multipart).
//   - POST /login    : Authenticates and sets the session cookie pair.
//   - POST /refresh  : Rotates the refresh token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Description: Accepts a multipart form with the account fields plus an avatar
file (required) and a cover image (optional), stages the files locally, and
delegates enrollment to the service.

Request:
  - Form: full_name, username, email, password
  - Files: avatar (required), cover_image (optional)

Response:
  - 201: Account: Created account profile (credentials stripped)
  - 400: ErrValidation: Bad input or missing avatar
  - 409: ErrConflict: Username or Email already exists
  - 502: ErrUploadFailed: Object storage rejected the avatar
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseMultipartForm(constants.MaxUploadMemory); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Expected multipart form data"))
		return
	}

	fullName := request.FormValue(FieldFullName)
	handle := request.FormValue(FieldUsername)
	email := request.FormValue(FieldEmail)
	password := request.FormValue(FieldPassword)

	validator := &validate.Validator{}
	validator.Required(FieldFullName, fullName).
		Required(FieldUsername, handle).
		MinLen(FieldUsername, handle, MinUsernameLength).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, password).
		MinLen(FieldPassword, password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	avatarPath, err := requestutil.SpoolFormFile(request, FieldAvatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	coverPath, err := requestutil.SpoolFormFile(request, FieldCoverImage)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		FullName:   fullName,
		Username:   handle,
		Email:      email,
		Password:   password,
		AvatarPath: avatarPath,
		CoverPath:  coverPath,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

/*
Login authenticates an account and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials by username or email, issues the token
pair, and injects both session cookies into the response.

Request:
  - Body: loginRequest (Login | Username | Email, Password)

Response:
  - 200: Session: Account profile plus both tokens
  - 404: ErrNotFound: No account for that identity
  - 401: ErrUnauthorized: Wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Accept the identity under any of the three field names.
	login := input.Login
	if login == "" {
		login = input.Username
	}
	if login == "" {
		login = input.Email
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, login)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    login,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session.Tokens)

	respond.OK(writer, map[string]any{
		FieldUser:         session.Account,
		FieldAccessToken:  session.Tokens.AccessToken,
		FieldRefreshToken: session.Tokens.RefreshToken,
	})
}

/*
Refresh rotates the session using a valid refresh token.

POST /api/v1/auth/refresh

Description: Reads the refresh token from the session cookie (or request
body as a fallback for non-browser clients), rotates the single-slot
session, and re-issues both cookies.

Response:
  - 200: TokenPair: New session credentials
  - 401: ErrInvalidToken / ErrTokenMismatch: Unusable or replayed token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	incomingToken := ""

	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		incomingToken = cookie.Value
	}

	if incomingToken == "" {
		var input refreshRequest
		if err := requestutil.DecodeJSON(request, &input); err == nil {
			incomingToken = input.RefreshToken
		}
	}

	if incomingToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	tokens, err := handler.authService.Rotate(request.Context(), incomingToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, tokens)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  tokens.AccessToken,
		FieldRefreshToken: tokens.RefreshToken,
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Clears the account's refresh-token slot and expires both
session cookies. Safe to call repeatedly.

Response:
  - 200: Success: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearSessionCookies(writer)

	respond.OK(writer, map[string]string{
		FieldMessage: "Logged out successfully",
	})
}

/*
ChangePassword updates the authenticated account's password.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying a new one. The
new password must differ from the old and match its confirmation.

Request:
  - Body: changePasswordRequest (OldPassword, NewPassword, ConfirmPassword)

Response:
  - 200: Success: Password changed
  - 400: ErrValidation: Weak, unchanged, or unconfirmed password
  - 401: ErrUnauthorized: Old password incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength).
		Custom(FieldConfirmPassword, input.ConfirmPassword != input.NewPassword, "must match the new password")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		accountID,
		input.OldPassword,
		input.NewPassword,
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

// # Cookie Helpers

// setSessionCookies writes both halves of the session cookie pair.
func setSessionCookies(writer http.ResponseWriter, tokens *TokenPair) {
	now := time.Now()

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    tokens.AccessToken,
		Path:     constants.SessionCookiePath,
		Expires:  now.Add(AccessTokenTTL),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    tokens.RefreshToken,
		Path:     constants.SessionCookiePath,
		Expires:  now.Add(RefreshTokenTTL),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies expires both session cookies on the client.
func clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.SessionCookiePath,
			MaxAge:   -1,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
