// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package blob provides the object-storage adapter for user-visible media.

It wraps an S3-compatible backend (Cloudflare R2, MinIO, AWS S3) behind a
narrow interface so that domain services only ever deal with two concepts:

  - Locator: the public URL a client can fetch the media from.
  - AssetID: the storage-side identifier used for later deletion.

Upload consumes a LOCAL file path (staged by the request layer) and always
removes the temp file after the attempt, success or failure, so that failed
uploads never leak disk space.
*/
package blob

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/pkg/uuid"
)

// keyPrefix namespaces every uploaded object inside the bucket.
const keyPrefix = "media/"

// # Store Contract

// Asset is the result of a successful upload.
type Asset struct {
	// Locator is the public URL clients use to fetch the media.
	Locator string
	// AssetID identifies the object for deletion, independent of the URL.
	AssetID string
}

// Store is the interface domain services depend on for media storage.
type Store interface {
	// Upload pushes a local file to the backend and returns its Asset.
	// The local file is removed after the attempt regardless of outcome.
	Upload(ctx context.Context, localPath string) (*Asset, error)

	// Delete removes the object identified by assetID. Deleting an object
	// that no longer exists is not an error.
	Delete(ctx context.Context, assetID string) error
}

// # S3 Implementation

// Settings carries the connection parameters for the S3 backend.
type Settings struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKeyID   string
	SecretKey     string
	PublicBaseURL string
}

// S3Store implements [Store] on top of an S3-compatible backend.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

// NewS3Store builds the S3 client and wraps it into a [Store].
//
// # Parameters
//   - ctx: Context for AWS config resolution.
//   - settings: Backend connection parameters.
//   - logger: Structured logger for storage events.
func NewS3Store(ctx context.Context, settings Settings, logger *slog.Logger) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID, settings.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("blob: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if settings.Endpoint != "" {
			options.BaseEndpoint = aws.String(settings.Endpoint)
		}
		// R2 and MinIO require path-style addressing.
		options.UsePathStyle = true
	})

	return &S3Store{
		client:        client,
		bucket:        settings.Bucket,
		publicBaseURL: strings.TrimSuffix(settings.PublicBaseURL, "/"),
		logger:        logger,
	}, nil
}

/*
Upload pushes the file at localPath to the bucket under a fresh UUIDv7 key.

Description: The temp file is deleted after the attempt in both the success
and failure paths, mirroring the contract in the package doc. An empty
localPath is rejected up front so callers can treat "no file provided" and
"upload failed" as distinct conditions.

Parameters:
  - ctx: context.Context
  - localPath: string (path of a staged local file)

Returns:
  - *Asset: Locator + AssetID of the stored object
  - error: apperr.UploadFailed on any backend or filesystem failure
*/
func (store *S3Store) Upload(ctx context.Context, localPath string) (*Asset, error) {
	if localPath == "" {
		return nil, apperr.UploadFailed("No file provided", nil)
	}

	// The staged file is single-use; remove it whatever happens next.
	defer func() {
		if err := os.Remove(localPath); err != nil {
			store.logger.Warn("blob_temp_cleanup_failed",
				slog.String("path", localPath),
				slog.Any("error", err),
			)
		}
	}()

	file, err := os.Open(localPath)
	if err != nil {
		return nil, apperr.UploadFailed("Could not read staged file", err)
	}
	defer func() { _ = file.Close() }()

	assetID := uuid.New()
	extension := filepath.Ext(localPath)
	key := keyPrefix + assetID + extension

	contentType := mime.TypeByExtension(extension)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(store.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, apperr.UploadFailed("Object storage rejected the upload", err)
	}

	locator := store.publicBaseURL + "/" + key
	store.logger.Info("blob_uploaded",
		slog.String("asset_id", assetID),
		slog.String("key", key),
	)

	return &Asset{Locator: locator, AssetID: assetID}, nil
}

/*
Delete removes the object identified by assetID from the bucket.

Description: S3 DeleteObject is idempotent, so deleting an already-deleted
asset succeeds. Callers that only need best-effort cleanup are expected to
log rather than propagate the returned error.
*/
func (store *S3Store) Delete(ctx context.Context, assetID string) error {
	if assetID == "" {
		return nil
	}

	// The stored key may carry any extension; list by prefix and delete
	// whatever matches the asset id.
	listing, err := store.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(store.bucket),
		Prefix: aws.String(keyPrefix + assetID),
	})
	if err != nil {
		return fmt.Errorf("blob: delete listing failed: %w", err)
	}

	for _, object := range listing.Contents {
		_, err := store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(store.bucket),
			Key:    object.Key,
		})
		if err != nil {
			return fmt.Errorf("blob: delete failed: %w", err)
		}
	}

	return nil
}

// # Locator Helpers

// AssetIDFromLocator derives the storage asset id from a public media URL.
//
// The derivation is purely syntactic: the last path segment of the URL with
// its file extension stripped. It never contacts the storage backend, so it
// is safe to call on any historical locator.
func AssetIDFromLocator(locator string) string {
	if locator == "" {
		return ""
	}

	segment := path.Base(locator)
	if segment == "." || segment == "/" {
		return ""
	}

	// Strip any query string before the extension.
	if idx := strings.IndexByte(segment, '?'); idx >= 0 {
		segment = segment[:idx]
	}

	return strings.TrimSuffix(segment, path.Ext(segment))
}
