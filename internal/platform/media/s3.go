// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// # S3 Implementation

// S3Config holds the connection settings for an S3-compatible bucket.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store stores uploads in an S3-compatible bucket.
type S3Store struct {
	client *s3.Client
	config S3Config
}

// NewS3Store builds the SDK client with static credentials and an optional
// custom endpoint (required for R2 and MinIO).
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("media: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Store{client: client, config: cfg}, nil
}

/*
Upload stores the raw bytes under a time-partitioned key.

Keys look like "avatars/2026/08/<uuid>": the folder comes from the caller,
the date partition keeps bucket listings manageable, and the UUID prevents
collisions between concurrent uploads.

# Parameters
  - ctx: context.Context for cancellation
  - data: The raw object bytes
  - folder: Logical top-level folder (e.g. "avatars")

# Returns
  - *Asset: The storage key and public URL of the new object
  - error: Any SDK failure
*/
func (store *S3Store) Upload(ctx context.Context, data []byte, folder string) (*Asset, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("%s/%d/%02d/%s", folder, now.Year(), now.Month(), uuid.NewString())

	contentType := http.DetectContentType(data)

	_, err := store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(store.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("media: failed to upload object %q: %w", key, err)
	}

	return &Asset{
		PublicID: key,
		URL:      strings.TrimSuffix(store.config.PublicBaseURL, "/") + "/" + key,
	}, nil
}

// Destroy removes the object identified by publicID from the bucket.
func (store *S3Store) Destroy(ctx context.Context, publicID string) error {
	_, err := store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(store.config.Bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("media: failed to delete object %q: %w", publicID, err)
	}

	return nil
}
