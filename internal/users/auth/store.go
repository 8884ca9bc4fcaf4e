// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth

import "context"

// # Storage Contracts

// UserRepository defines persistence operations for user accounts.
//
// Implementations must translate storage errors into [apperr.AppError] values
// (NotFound, Conflict) so the service layer never sees driver internals.
type UserRepository interface {
	// Create persists a brand new account.
	Create(ctx context.Context, user *User) error

	// FindByID retrieves an account by its primary key.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail retrieves an account by its unique email address.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Save writes back every mutable field of an existing account.
	Save(ctx context.Context, user *User) error
}

// SessionCache defines the live session snapshot store.
//
// # Revocation Authority
//
// Every authenticated request resolves its principal from this cache. A
// missing snapshot means the session was logged out (or never existed), so
// even a cryptographically valid token is rejected. Deleting a key here is
// the one and only way to revoke a session.
type SessionCache interface {
	// Set writes (or overwrites) the snapshot for a user. Concurrent writers
	// for the same user resolve last-write-wins.
	Set(ctx context.Context, user *User) error

	// Get retrieves the snapshot, or an [apperr.AppError] with code
	// SESSION_NOT_FOUND when absent.
	Get(ctx context.Context, userID string) (*User, error)

	// Del removes the snapshot, revoking the session. Deleting an absent
	// key is not an error.
	Del(ctx context.Context, userID string) error
}
