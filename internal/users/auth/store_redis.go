// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	"github.com/dothanhvu/lurnia/internal/platform/constants"
)

// ErrSessionNotFound is returned when no live snapshot exists for a user.
//
// It is deliberately a 401: a valid token without a snapshot means the
// session was revoked, and the client must authenticate again.
var ErrSessionNotFound = apperr.New(http.StatusUnauthorized, "SESSION_NOT_FOUND", "Please login to access this resource.")

// # Session Cache (Redis)

// RedisSessionCache implements [SessionCache] using Redis.
//
// Snapshots are stored as JSON under "auth:session:<userID>". The entry TTL
// matches the refresh-token lifetime, so an abandoned session expires on its
// own instead of lingering forever.
type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed [SessionCache] with the given
// snapshot lifetime.
func NewSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{client: client, ttl: ttl}
}

// sessionKey builds the cache key for a user's snapshot.
func sessionKey(userID string) string {
	return constants.RedisPrefixSession + userID
}

/*
Set writes (or overwrites) the session snapshot for a user.

Description: Serializes the full user entity as JSON. Concurrent writers for
the same user resolve last-write-wins, which is acceptable because every
writer serializes current durable state.

Parameters:
  - ctx: context.Context
  - user: *User (The snapshot to cache)

Returns:
  - error: Serialization or connectivity errors
*/
func (cache *RedisSessionCache) Set(ctx context.Context, user *User) error {

	// Serialize the snapshot
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	// Write with the session lifetime as TTL
	if err := cache.client.Set(ctx, sessionKey(user.ID), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the session snapshot for a user.

Description: Returns [ErrSessionNotFound] when the key is absent or expired.
This is the revocation check every authenticated request goes through.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *User: The deserialized snapshot
  - error: ErrSessionNotFound or connectivity errors
*/
func (cache *RedisSessionCache) Get(ctx context.Context, userID string) (*User, error) {

	// Fetch the raw JSON payload
	payload, err := cache.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	// Deserialize into the domain entity
	user := &User{}
	if err := json.Unmarshal(payload, user); err != nil {
		return nil, fmt.Errorf("redis_session_unmarshal_failed: %w", err)
	}

	return user, nil
}

/*
Del removes the session snapshot, revoking the session.

Description: The delete is awaited and its error propagated. Logout must not
report success while the snapshot still exists, otherwise the "token valid
only with snapshot" invariant silently breaks.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - error: Connectivity errors
*/
func (cache *RedisSessionCache) Del(ctx context.Context, userID string) error {
	if err := cache.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis_session_del_failed: %w", err)
	}

	return nil
}
