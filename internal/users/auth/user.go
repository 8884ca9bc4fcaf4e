// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

/*
Package auth implements the user identity and session management layer.

It covers the full account lifecycle: two-step email activation, credential
and social login, cookie-carried access/refresh tokens, and profile updates.

# Architecture

  - Service: Orchestrates business logic (Register, Activate, Login, Refresh).
  - UserRepository: Durable account storage (PostgreSQL).
  - SessionCache: Live session snapshots (Redis). A signed token is honored
    only while its owner's snapshot exists, which makes the cache the
    revocation authority for the whole platform.
*/
package auth

import (
	"time"

	"github.com/dothanhvu/lurnia/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Lurnia platform.
//
// The same struct doubles as the session snapshot stored in Redis: whatever
// is persisted here is what authenticated handlers see as the principal.
type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	AvatarID     *string      `json:"avatar_id,omitempty"`
	AvatarURL    *string      `json:"avatar_url,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"is_verified"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HasPassword reports whether the account carries a local credential.
// Social-only accounts have none and cannot use password operations.
func (user *User) HasPassword() bool {
	return user.PasswordHash != ""
}

// Session bundles the freshly minted token pair with its owner.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldOldPassword     = "old_password"
	FieldNewPassword     = "new_password"
	FieldActivationToken = "activation_token"
	FieldActivationCode  = "activation_code"
	FieldAvatar          = "avatar"
)
