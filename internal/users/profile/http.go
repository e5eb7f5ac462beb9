// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the channel-profile HTTP endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] configured with profile-specific routes.
//
// # Endpoints
//   - GET   /me                     : Current account profile.
//   - PATCH /me                     : Update fullname/email.
//   - PATCH /me/avatar              : Replace the avatar (multipart).
//   - PATCH /me/cover-image         : Replace the cover image (multipart).
//   - GET   /history                : Watch history.
//   - GET   /channel/{username}     : Public channel profile.
//   - POST  /channel/{username}/subscribe   : Follow the channel.
//   - DELETE /channel/{username}/subscribe  : Unfollow the channel.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoint; an authenticated viewer enriches the projection.
	router.Get("/channel/{username}", handler.channelProfile)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.currentAccount)
		r.Patch("/me", handler.updateDetails)
		r.Patch("/me/avatar", handler.updateAvatar)
		r.Patch("/me/cover-image", handler.updateCoverImage)
		r.Get("/history", handler.watchHistory)
		r.Post("/channel/{username}/subscribe", handler.subscribe)
		r.Delete("/channel/{username}/subscribe", handler.unsubscribe)
	})

	return router
}

// # Request Payloads

type updateDetailsRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

/*
CurrentAccount returns the authenticated account's own profile.

GET /api/v1/users/me

Response:
  - 200: Account: Profile with credentials stripped
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) currentAccount(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.profileService.GetCurrent(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
UpdateDetails patches the authenticated account's fullname and email.

PATCH /api/v1/users/me

Request:
  - Body: updateDetailsRequest (FullName, Email)

Response:
  - 200: Account: Updated profile
  - 400: ErrValidation: Missing or malformed fields
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) updateDetails(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateDetailsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFullName, input.FullName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.profileService.UpdateDetails(request.Context(), accountID, input.FullName, input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
UpdateAvatar replaces the authenticated account's avatar.

PATCH /api/v1/users/me/avatar

Request:
  - File: avatar (multipart)

Response:
  - 200: Account: Updated profile pointing at the new avatar
  - 400: ErrValidation: Missing file
  - 502: ErrUploadFailed: Object storage rejected the upload
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	handler.replaceMedia(writer, request, SlotAvatar, "avatar")
}

/*
UpdateCoverImage replaces the authenticated account's cover image.

PATCH /api/v1/users/me/cover-image

Request:
  - File: cover_image (multipart)

Response:
  - 200: Account: Updated profile pointing at the new cover image
  - 400: ErrValidation: Missing file
  - 502: ErrUploadFailed: Object storage rejected the upload
*/
func (handler *Handler) updateCoverImage(writer http.ResponseWriter, request *http.Request) {
	handler.replaceMedia(writer, request, SlotCover, "cover_image")
}

// replaceMedia is the shared multipart flow behind both media endpoints.
func (handler *Handler) replaceMedia(writer http.ResponseWriter, request *http.Request, slot MediaSlot, field string) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.MaxUploadMemory); err != nil {
		respond.Error(writer, request, validate.RequiredError(field, "must be a multipart file upload"))
		return
	}

	localPath, err := requestutil.SpoolFormFile(request, field)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.profileService.ReplaceMedia(request.Context(), accountID, slot, localPath)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
WatchHistory returns the authenticated account's watch history.

GET /api/v1/users/history

Response:
  - 200: []WatchEntry: Most recent first
  - 404: ErrNotFound: Account no longer exists
*/
func (handler *Handler) watchHistory(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.profileService.WatchHistory(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

/*
ChannelProfile returns the public projection of a channel.

GET /api/v1/users/channel/{username}

Description: Anonymous viewers get IsSubscribed=false; authenticated viewers
get their own relationship to the channel.

Response:
  - 200: ChannelProfile: Aggregated projection
  - 404: ErrNotFound: No such channel
*/
func (handler *Handler) channelProfile(writer http.ResponseWriter, request *http.Request) {
	viewerID := ""
	if claims := requestutil.Claims(request); claims != nil {
		viewerID = claims.UserID
	}

	channel, err := handler.profileService.ChannelProfile(
		request.Context(),
		viewerID,
		requestutil.Param(request, FieldUsername),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, channel)
}

/*
Subscribe makes the authenticated viewer follow the channel.

POST /api/v1/users/channel/{username}/subscribe

Response:
  - 200: Success: Subscribed (idempotent)
  - 400: ErrValidation: Self-subscription
  - 404: ErrNotFound: No such channel
*/
func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.profileService.Subscribe(request.Context(), accountID, requestutil.Param(request, FieldUsername))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Subscribed successfully",
	})
}

/*
Unsubscribe removes the authenticated viewer's subscription.

DELETE /api/v1/users/channel/{username}/subscribe

Response:
  - 200: Success: Unsubscribed (idempotent)
  - 404: ErrNotFound: No such channel
*/
func (handler *Handler) unsubscribe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.profileService.Unsubscribe(request.Context(), accountID, requestutil.Param(request, FieldUsername))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Unsubscribed successfully",
	})
}
