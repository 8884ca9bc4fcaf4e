// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package sec_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dothanhvu/lurnia/internal/platform/sec"
)

func newTestCodec() *sec.TokenCodec {
	return sec.NewTokenCodec("activation-secret", "access-secret", "refresh-secret", "lurnia.test")
}

/*
TestTokenCodec_SessionRoundTrip verifies that a signed session token decodes
back to the same user under the same purpose.
*/
func TestTokenCodec_SessionRoundTrip(t *testing.T) {
	codec := newTestCodec()

	for _, purpose := range []sec.TokenPurpose{sec.PurposeAccess, sec.PurposeRefresh} {
		t.Run(string(purpose), func(t *testing.T) {
			token, err := codec.SignSession(purpose, "user-123", time.Minute)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := codec.VerifySession(purpose, token)
			require.NoError(t, err)
			assert.Equal(t, "user-123", claims.UserID)
			assert.Equal(t, "lurnia.test", claims.Issuer)
		})
	}
}

/*
TestTokenCodec_CrossPurposeRejected verifies that a token minted for one
purpose never verifies under another, in either direction.
*/
func TestTokenCodec_CrossPurposeRejected(t *testing.T) {
	codec := newTestCodec()

	accessToken, err := codec.SignSession(sec.PurposeAccess, "user-123", time.Minute)
	require.NoError(t, err)

	refreshToken, err := codec.SignSession(sec.PurposeRefresh, "user-123", time.Minute)
	require.NoError(t, err)

	_, err = codec.VerifySession(sec.PurposeRefresh, accessToken)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = codec.VerifySession(sec.PurposeAccess, refreshToken)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	// An activation token is not a session token either.
	activationToken, err := codec.SignActivation(sec.CandidateUser{Email: "vu@lurnia.app"}, "1234", time.Minute)
	require.NoError(t, err)

	_, err = codec.VerifySession(sec.PurposeAccess, activationToken)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenCodec_Expiry verifies that expiry is reported distinctly from a
bad signature.
*/
func TestTokenCodec_Expiry(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.SignSession(sec.PurposeAccess, "user-123", -time.Minute)
	require.NoError(t, err)

	_, err = codec.VerifySession(sec.PurposeAccess, token)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenCodec_Tampering verifies that a modified payload fails verification.
*/
func TestTokenCodec_Tampering(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.SignSession(sec.PurposeAccess, "user-123", time.Minute)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "xxxx"
	_, err = codec.VerifySession(sec.PurposeAccess, tampered)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = codec.VerifySession(sec.PurposeAccess, "not-a-token")
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenCodec_ActivationRoundTrip verifies that the candidate and the
activation code survive the sign/verify cycle intact.
*/
func TestTokenCodec_ActivationRoundTrip(t *testing.T) {
	codec := newTestCodec()

	candidate := sec.CandidateUser{
		Name:     "Vu",
		Email:    "vu@lurnia.app",
		Password: "secret-password",
	}

	token, err := codec.SignActivation(candidate, "4821", time.Minute)
	require.NoError(t, err)

	claims, err := codec.VerifyActivation(token)
	require.NoError(t, err)
	assert.Equal(t, candidate, claims.Candidate)
	assert.Equal(t, "4821", claims.ActivationCode)
}

/*
TestGenerateActivationCode verifies that generated codes are always four
digits and never start with zero.
*/
func TestGenerateActivationCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := sec.GenerateActivationCode()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}
