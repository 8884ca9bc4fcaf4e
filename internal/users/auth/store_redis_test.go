// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dothanhvu/lurnia/internal/platform/sec"
	"github.com/dothanhvu/lurnia/internal/users/auth"
)

func newTestSessionCache(t *testing.T) (*auth.RedisSessionCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewSessionCache(client, time.Hour), server
}

/*
TestRedisSessionCache_RoundTrip verifies that a snapshot survives the
serialize/deserialize cycle with all fields intact.
*/
func TestRedisSessionCache_RoundTrip(t *testing.T) {
	cache, _ := newTestSessionCache(t)
	ctx := context.Background()

	avatarURL := "https://cdn.lurnia.app/avatars/vu.png"
	user := &auth.User{
		ID:         "user-123",
		Name:       "Vu",
		Email:      "vu@lurnia.app",
		AvatarURL:  &avatarURL,
		Role:       sec.RoleAdmin,
		IsVerified: true,
	}

	require.NoError(t, cache.Set(ctx, user))

	snapshot, err := cache.Get(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, snapshot.ID)
	assert.Equal(t, user.Email, snapshot.Email)
	assert.Equal(t, sec.RoleAdmin, snapshot.Role)
	require.NotNil(t, snapshot.AvatarURL)
	assert.Equal(t, avatarURL, *snapshot.AvatarURL)
}

/*
TestRedisSessionCache_MissingSnapshot verifies the revocation semantics:
absent keys surface as ErrSessionNotFound.
*/
func TestRedisSessionCache_MissingSnapshot(t *testing.T) {
	cache, _ := newTestSessionCache(t)

	_, err := cache.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

/*
TestRedisSessionCache_Del verifies that deletion revokes the session and
that deleting an absent key is not an error.
*/
func TestRedisSessionCache_Del(t *testing.T) {
	cache, _ := newTestSessionCache(t)
	ctx := context.Background()

	user := &auth.User{ID: "user-123", Email: "vu@lurnia.app", Role: sec.RoleUser}
	require.NoError(t, cache.Set(ctx, user))

	require.NoError(t, cache.Del(ctx, "user-123"))

	_, err := cache.Get(ctx, "user-123")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	// Idempotent
	assert.NoError(t, cache.Del(ctx, "user-123"))
}

/*
TestRedisSessionCache_Expiry verifies the snapshot honors its TTL.
*/
func TestRedisSessionCache_Expiry(t *testing.T) {
	cache, server := newTestSessionCache(t)
	ctx := context.Background()

	user := &auth.User{ID: "user-123", Email: "vu@lurnia.app", Role: sec.RoleUser}
	require.NoError(t, cache.Set(ctx, user))

	server.FastForward(2 * time.Hour)

	_, err := cache.Get(ctx, "user-123")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

/*
TestRedisSessionCache_LastWriteWins verifies concurrent overwrite semantics
for the same user.
*/
func TestRedisSessionCache_LastWriteWins(t *testing.T) {
	cache, _ := newTestSessionCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &auth.User{ID: "user-123", Name: "Old", Role: sec.RoleUser}))
	require.NoError(t, cache.Set(ctx, &auth.User{ID: "user-123", Name: "New", Role: sec.RoleUser}))

	snapshot, err := cache.Get(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, "New", snapshot.Name)
}
