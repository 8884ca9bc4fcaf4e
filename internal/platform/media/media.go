// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

/*
Package media provides the object-storage collaborator for user uploads.

It abstracts an S3-compatible bucket (Cloudflare R2, MinIO, AWS S3) behind a
small Store interface so that domain services can swap implementations in tests.
*/
package media

import "context"

// Asset identifies a stored object and its public URL.
type Asset struct {
	// PublicID is the storage key, kept so the object can be deleted later.
	PublicID string `json:"public_id"`

	// URL is the publicly reachable address of the object.
	URL string `json:"url"`
}

// Store is the contract consumed by domain services for media uploads.
type Store interface {
	// Upload stores the raw bytes under a generated key inside folder and
	// returns the resulting asset.
	Upload(ctx context.Context, data []byte, folder string) (*Asset, error)

	// Destroy removes a previously uploaded object. Removing a missing
	// object is not an error.
	Destroy(ctx context.Context, publicID string) error
}
