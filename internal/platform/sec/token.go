// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Token Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer.
//
// # Token Purposes
//
// Three token purposes exist, each signed with its own secret: activation
// tokens (registration), access tokens (per-request identity), and refresh
// tokens (session extension). Because the secrets differ, a token minted for
// one purpose never verifies under another — cross-purpose reuse is rejected
// as an invalid signature.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose selects which signing secret a token is bound to.
type TokenPurpose string

const (
	// PurposeActivation signs short-lived registration tokens.
	PurposeActivation TokenPurpose = "activation"

	// PurposeAccess signs short-lived access tokens.
	PurposeAccess TokenPurpose = "access"

	// PurposeRefresh signs longer-lived refresh tokens.
	PurposeRefresh TokenPurpose = "refresh"
)

// # Verification Failures

var (
	// ErrTokenExpired is returned when the embedded expiry has passed.
	ErrTokenExpired = errors.New("sec: token is expired")

	// ErrTokenInvalid is returned for a bad signature, a malformed token,
	// or a token signed for a different purpose.
	ErrTokenInvalid = errors.New("sec: token is invalid")
)

// # Claim Payloads

// SessionClaims is the payload embedded inside access and refresh tokens.
//
// It intentionally carries only the user identifier: the live user snapshot
// is resolved from the session cache on every request, so a deleted session
// invalidates the token regardless of its cryptographic validity.
type SessionClaims struct {
	jwt.RegisteredClaims

	// UserID is the identifier of the authenticated account.
	UserID string `json:"id"`
}

// CandidateUser is the not-yet-persisted registration payload carried by an
// activation token. The password is plaintext pending hashing — the token
// itself never leaves the signed, server-verified channel.
type CandidateUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ActivationClaims is the payload embedded inside an activation token.
type ActivationClaims struct {
	jwt.RegisteredClaims

	Candidate      CandidateUser `json:"user"`
	ActivationCode string        `json:"activation_code"`
}

// # Token Codec

// TokenCodec signs and verifies purpose-bound HS256 tokens.
//
// # Concurrency
//
// The codec is immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secrets map[TokenPurpose][]byte
	issuer  string
}

// NewTokenCodec creates a codec with one distinct secret per token purpose.
func NewTokenCodec(activationSecret, accessSecret, refreshSecret, issuer string) *TokenCodec {
	return &TokenCodec{
		secrets: map[TokenPurpose][]byte{
			PurposeActivation: []byte(activationSecret),
			PurposeAccess:     []byte(accessSecret),
			PurposeRefresh:    []byte(refreshSecret),
		},
		issuer: issuer,
	}
}

// SignSession creates a signed session token carrying the user identifier.
//
// # Parameters
//   - purpose: PurposeAccess or PurposeRefresh.
//   - userID: The ID of the account.
//   - timeToLive: The duration before the token expires.
//
// # Returns
//   - A signed token string, or an error if signing fails.
func (codec *TokenCodec) SignSession(purpose TokenPurpose, userID string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
	}

	return codec.sign(purpose, claims)
}

// VerifySession checks the signature and validity of a session token.
//
// # Returns
//   - *SessionClaims: The decoded payload.
//   - error: ErrTokenExpired or ErrTokenInvalid.
func (codec *TokenCodec) VerifySession(purpose TokenPurpose, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := codec.verify(purpose, tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// SignActivation creates a signed activation token embedding the candidate
// user and the 4-digit activation code.
func (codec *TokenCodec) SignActivation(candidate CandidateUser, activationCode string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := ActivationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   candidate.Email,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Candidate:      candidate,
		ActivationCode: activationCode,
	}

	return codec.sign(PurposeActivation, claims)
}

// VerifyActivation checks the signature and validity of an activation token.
func (codec *TokenCodec) VerifyActivation(tokenString string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := codec.verify(PurposeActivation, tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// sign produces an HS256 token for the given purpose.
func (codec *TokenCodec) sign(purpose TokenPurpose, claims jwt.Claims) (string, error) {
	secret, ok := codec.secrets[purpose]
	if !ok {
		return "", fmt.Errorf("sec: unknown token purpose %q", purpose)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// verify parses the token under the purpose's secret and classifies failures
// into the two sentinel errors. Failures are always reported to the caller.
func (codec *TokenCodec) verify(purpose TokenPurpose, tokenString string, claims jwt.Claims) error {
	secret, ok := codec.secrets[purpose]
	if !ok {
		return fmt.Errorf("sec: unknown token purpose %q", purpose)
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		// Expiry is checked before the caller sees the payload; report it
		// distinctly so the refresh path can tell "expired" from "forged".
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
