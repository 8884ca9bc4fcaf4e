// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	"github.com/dothanhvu/lurnia/internal/platform/constants"
	"github.com/dothanhvu/lurnia/internal/platform/ctxkey"
	"github.com/dothanhvu/lurnia/internal/platform/respond"
	"github.com/dothanhvu/lurnia/internal/platform/sec"
)

// # Access Gate

// ErrMissingCredential is returned when no access token cookie is present.
var ErrMissingCredential = apperr.Unauthorized("Please login to access this resource.")

// ErrAccessTokenExpired tells the client to hit the refresh endpoint.
var ErrAccessTokenExpired = apperr.Unauthorized("Access token is expired")

// ErrAccessTokenInvalid covers forged or malformed access tokens.
var ErrAccessTokenInvalid = apperr.Unauthorized("Access token is not valid")

/*
Authenticate guards routes that require a logged-in user.

Description: Reads the access token cookie, verifies its signature and
expiry, then resolves the live session snapshot. All three checks must
pass — a valid token whose snapshot was deleted (logout) is rejected.
The snapshot becomes the request principal.

Parameters:
  - codec: *sec.TokenCodec (verifies access tokens)
  - sessions: SessionCache (the revocation authority)

Returns:
  - Standard chi-compatible middleware
*/
func Authenticate(codec *sec.TokenCodec, sessions SessionCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. The access token travels in a cookie, never in a header
			cookie, err := request.Cookie(constants.AccessTokenCookieName)
			if err != nil || cookie.Value == "" {
				respond.Error(writer, request, ErrMissingCredential)
				return
			}

			// 2. Cryptographic verification
			claims, err := codec.VerifySession(sec.PurposeAccess, cookie.Value)
			if err != nil {
				if errors.Is(err, sec.ErrTokenExpired) {
					respond.Error(writer, request, ErrAccessTokenExpired)
					return
				}
				respond.Error(writer, request, ErrAccessTokenInvalid)
				return
			}

			// 3. Revocation check: the snapshot must still exist
			user, err := sessions.Get(request.Context(), claims.UserID)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// 4. Expose the principal to downstream handlers
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, user)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

/*
RequireRole restricts a route to an allowed set of roles.

Description: Must run after [Authenticate]. Authorization is a flat
allowed-set check, not a hierarchy — an admin is rejected from
instructor-only routes unless listed explicitly.

Parameters:
  - allowed: ...sec.UserRole (the roles permitted through)

Returns:
  - Standard chi-compatible middleware
*/
func RequireRole(allowed ...sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			user, ok := PrincipalFromContext(request.Context())
			if !ok {
				respond.Error(writer, request, ErrMissingCredential)
				return
			}

			if !user.Role.In(allowed...) {
				respond.Error(writer, request, apperr.Forbidden(
					fmt.Sprintf("Role: %s is not allowed to access this resource", user.Role),
				))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// PrincipalFromContext extracts the authenticated user from the context.
// The second return is false on unauthenticated requests.
func PrincipalFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ctxkey.KeyUser).(*User)
	return user, ok && user != nil
}
