// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction, common body
decoding patterns, and multipart upload spooling, ensuring consistent error
handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/ctxutil"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {

	// Get user claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {

	// Get user claims
	claims, err := RequiredClaims(request)

	// If the user is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}

/*
SpoolFormFile copies the named multipart form file to a local temp file and
returns its path.

Description: Services that talk to the Blob Store Adapter take a LOCAL file
path, mirroring how upload middleware stages files on disk. The adapter is
responsible for removing the temp file after its upload attempt.

Parameters:
  - request: *http.Request (multipart form must already be parsed or parseable)
  - field: string (form field name, e.g. "avatar")

Returns:
  - string: Path of the spooled temp file; empty if the field is absent
  - error: apperr.Internal on filesystem failures
*/
func SpoolFormFile(request *http.Request, field string) (string, error) {
	file, header, err := request.FormFile(field)
	if err != nil {
		// Absent field is not an error at this layer; callers decide whether
		// the slot is mandatory.
		return "", nil
	}
	defer func() { _ = file.Close() }()

	pattern := constants.UploadTempPattern
	if ext := filepath.Ext(header.Filename); ext != "" {
		pattern += ext
	}

	temp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", apperr.Internal(err)
	}

	if _, err := io.Copy(temp, file); err != nil {
		_ = temp.Close()
		_ = os.Remove(temp.Name())
		return "", apperr.Internal(err)
	}

	if err := temp.Close(); err != nil {
		_ = os.Remove(temp.Name())
		return "", apperr.Internal(err)
	}

	return temp.Name(), nil
}
