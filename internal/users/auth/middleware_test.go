// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dothanhvu/lurnia/internal/platform/constants"
	"github.com/dothanhvu/lurnia/internal/platform/sec"
	"github.com/dothanhvu/lurnia/internal/users/auth"
)

type gateFixture struct {
	codec    *sec.TokenCodec
	sessions *fakeSessionCache
	handler  http.Handler
	lastUser *auth.User
}

func newGateFixture(t *testing.T, extra ...func(http.Handler) http.Handler) *gateFixture {
	t.Helper()

	fixture := &gateFixture{
		codec:    sec.NewTokenCodec("activation-secret", "access-secret", "refresh-secret", "lurnia.test"),
		sessions: newFakeSessionCache(),
	}

	var final http.Handler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user, _ := auth.PrincipalFromContext(request.Context())
		fixture.lastUser = user
		writer.WriteHeader(http.StatusOK)
	})

	for i := len(extra) - 1; i >= 0; i-- {
		final = extra[i](final)
	}

	fixture.handler = auth.Authenticate(fixture.codec, fixture.sessions)(final)
	return fixture
}

func (fixture *gateFixture) request(t *testing.T, token string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: token})
	}

	recorder := httptest.NewRecorder()
	fixture.handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestAuthenticate_HappyPath verifies a valid token with a live snapshot
passes and exposes the snapshot as the principal.
*/
func TestAuthenticate_HappyPath(t *testing.T) {
	fixture := newGateFixture(t)

	user := &auth.User{ID: "user-123", Email: "vu@lurnia.app", Role: sec.RoleUser}
	require.NoError(t, fixture.sessions.Set(context.Background(), user))

	token, err := fixture.codec.SignSession(sec.PurposeAccess, "user-123", time.Minute)
	require.NoError(t, err)

	recorder := fixture.request(t, token)
	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, fixture.lastUser)
	assert.Equal(t, "vu@lurnia.app", fixture.lastUser.Email)
}

/*
TestAuthenticate_Failures walks every rejection branch of the gate.
*/
func TestAuthenticate_Failures(t *testing.T) {
	fixture := newGateFixture(t)

	user := &auth.User{ID: "user-123", Email: "vu@lurnia.app", Role: sec.RoleUser}
	require.NoError(t, fixture.sessions.Set(context.Background(), user))

	validToken, err := fixture.codec.SignSession(sec.PurposeAccess, "user-123", time.Minute)
	require.NoError(t, err)
	expiredToken, err := fixture.codec.SignSession(sec.PurposeAccess, "user-123", -time.Minute)
	require.NoError(t, err)
	refreshToken, err := fixture.codec.SignSession(sec.PurposeRefresh, "user-123", time.Minute)
	require.NoError(t, err)
	orphanToken, err := fixture.codec.SignSession(sec.PurposeAccess, "ghost", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{"missing_cookie", "", "UNAUTHORIZED"},
		{"expired_token", expiredToken, "UNAUTHORIZED"},
		{"refresh_token_as_access", refreshToken, "UNAUTHORIZED"},
		{"no_snapshot", orphanToken, "SESSION_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := fixture.request(t, tt.token)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.wantCode, envelope[constants.FieldCode])
		})
	}

	// Logout-style revocation: same valid token, snapshot deleted.
	require.NoError(t, fixture.sessions.Del(context.Background(), "user-123"))
	recorder := fixture.request(t, validToken)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestRequireRole verifies the flat allowed-set semantics: no hierarchy, an
admin is not implicitly an instructor.
*/
func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       sec.UserRole
		allowed    []sec.UserRole
		wantStatus int
	}{
		{"admin_allowed", sec.RoleAdmin, []sec.UserRole{sec.RoleAdmin}, http.StatusOK},
		{"user_forbidden", sec.RoleUser, []sec.UserRole{sec.RoleAdmin}, http.StatusForbidden},
		{"admin_not_instructor", sec.RoleAdmin, []sec.UserRole{sec.RoleInstructor}, http.StatusForbidden},
		{"multi_role_set", sec.RoleInstructor, []sec.UserRole{sec.RoleAdmin, sec.RoleInstructor}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newGateFixture(t, auth.RequireRole(tt.allowed...))

			user := &auth.User{ID: "user-123", Email: "vu@lurnia.app", Role: tt.role}
			require.NoError(t, fixture.sessions.Set(context.Background(), user))

			token, err := fixture.codec.SignSession(sec.PurposeAccess, "user-123", time.Minute)
			require.NoError(t, err)

			recorder := fixture.request(t, token)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
