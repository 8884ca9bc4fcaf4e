// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	"github.com/dothanhvu/lurnia/internal/platform/dberr"
)

// # User Repository (PostgreSQL)

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userColumns is the canonical column list shared by every SELECT.
const userColumns = `id, name, email, passwordhash, avatarid, avatarurl, role, isverified, createdat, updatedat`

// scanUser hydrates a [User] from a single-row query result.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarID,
		&user.AvatarURL,
		&user.Role,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, initializing timestamps when
absent. A unique-constraint violation on the email column surfaces as a
client-safe Conflict.

Parameters:
  - ctx: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict, or storage errors
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, name, email, passwordhash, avatarid, avatarurl, role, isverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.AvatarID,
		user.AvatarURL,
		user.Role,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_create_failed")
	}

	return nil
}

/*
FindByID retrieves a user record by its primary key.

Parameters:
  - ctx: context.Context
  - id: string (UUIDv7 primary key)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or storage errors
*/
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_id_failed")
	}

	return user, nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Description: Performs a lookup on the account table, filtering out
soft-deleted users.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or storage errors
*/
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_email_failed")
	}

	return user, nil
}

/*
Save writes back every mutable field of an existing account.

Description: Full-row update keyed by ID. The updatedat column is always
bumped so cached snapshots can be compared against durable state.

Parameters:
  - ctx: context.Context
  - user: *User (Entity with updated fields)

Returns:
  - error: apperr.NotFound, apperr.Conflict (email taken), or storage errors
*/
func (repository *PostgresUserRepository) Save(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET name = $2,
		    email = $3,
		    passwordhash = $4,
		    avatarid = $5,
		    avatarurl = $6,
		    role = $7,
		    isverified = $8,
		    updatedat = $9
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.AvatarID,
		user.AvatarURL,
		user.Role,
		user.IsVerified,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_save_failed")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
