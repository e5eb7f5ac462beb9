// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/validate"
	"github.com/taibuivan/vidora/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the video catalog HTTP endpoints.
type Handler struct {
	videoService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{videoService: service}
}

// Routes returns a [chi.Router] configured with video-specific routes.
//
// # Endpoints
//   - POST /                    : Publish a video (multipart).
//   - GET  /{videoID}           : Resolve a video for playback.
//   - GET  /channel/{username}  : List a channel's videos (paginated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints; an authenticated viewer gets watch-history recording.
	router.Get("/{videoID}", handler.get)
	router.Get("/channel/{username}", handler.listByChannel)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.publish)
	})

	return router
}

/*
Publish uploads and catalogs a new video.

POST /api/v1/videos

Request:
  - Form: title, description, duration_seconds
  - Files: video_file (required), thumbnail (required)

Response:
  - 201: Video: Created catalog entry
  - 400: ErrValidation: Missing files or malformed fields
  - 502: ErrUploadFailed: Object storage rejected an upload
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.MaxUploadMemory); err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldVideoFile, "must be a multipart file upload"))
		return
	}

	title := request.FormValue(FieldTitle)
	description := request.FormValue(FieldDescription)
	duration, _ := strconv.Atoi(request.FormValue(FieldDuration))

	validator := &validate.Validator{}
	validator.Required(FieldTitle, title).
		MaxLen(FieldTitle, title, MaxTitleLength).
		MaxLen(FieldDescription, description, MaxDescriptionLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	videoPath, err := requestutil.SpoolFormFile(request, FieldVideoFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	thumbnailPath, err := requestutil.SpoolFormFile(request, FieldThumbnail)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	video, err := handler.videoService.Publish(request.Context(), ownerID, PublishInput{
		Title:         title,
		Description:   description,
		Duration:      duration,
		VideoPath:     videoPath,
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, video)
}

/*
Get resolves a single video for playback.

GET /api/v1/videos/{videoID}

Description: Authenticated viewers get the playback recorded into their
watch history and counted as a view.

Response:
  - 200: Video: Hydrated entity
  - 404: ErrNotFound: Unknown or unpublished video
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	viewerID := ""
	if claims := requestutil.Claims(request); claims != nil {
		viewerID = claims.UserID
	}

	video, err := handler.videoService.Get(request.Context(), viewerID, requestutil.Param(request, FieldVideoID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, video)
}

/*
ListByChannel returns one page of a channel's published videos.

GET /api/v1/videos/channel/{username}?page=&limit=

Response:
  - 200: []Video + pagination metadata
  - 404: ErrNotFound: Unknown channel
*/
func (handler *Handler) listByChannel(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	videos, metadata, err := handler.videoService.ListByChannel(
		request.Context(),
		requestutil.Param(request, FieldUsername),
		params,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, videos, metadata)
}
