// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	"github.com/dothanhvu/lurnia/internal/platform/mail"
	"github.com/dothanhvu/lurnia/internal/platform/media"
	"github.com/dothanhvu/lurnia/internal/platform/sec"
	"github.com/dothanhvu/lurnia/pkg/pointer"
	"github.com/dothanhvu/lurnia/pkg/uuid"
)

// # Domain Failures

var (
	// ErrActivationTokenInvalid covers expired, forged, or malformed
	// activation tokens. Both cases look the same to the client.
	ErrActivationTokenInvalid = apperr.New(http.StatusBadRequest, "ACTIVATION_TOKEN_INVALID", "Activation token is invalid or expired")

	// ErrActivationCodeMismatch is returned when the submitted 4-digit code
	// does not match the one embedded in the activation token.
	ErrActivationCodeMismatch = apperr.New(http.StatusBadRequest, "ACTIVATION_CODE_MISMATCH", "Activation code is not valid")

	// ErrInvalidCredentials keeps login failures indistinguishable, whether
	// the email is unknown or the password is wrong.
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")

	// ErrRefreshTokenInvalid is returned when the refresh token cannot be
	// verified and the client must authenticate from scratch.
	ErrRefreshTokenInvalid = apperr.Unauthorized("Could not refresh token. Please login again.")
)

// # Service

// Service implements the authentication and account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, activation,
// or session logic must be reviewed by the security team.
type Service struct {
	users           UserRepository
	sessions        SessionCache
	codec           *sec.TokenCodec
	mailer          mail.Sender
	media           media.Store
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewService constructs a new [Service] with its collaborators.
func NewService(
	users UserRepository,
	sessions SessionCache,
	codec *sec.TokenCodec,
	mailer mail.Sender,
	mediaStore media.Store,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) *Service {
	return &Service{
		users:           users,
		sessions:        sessions,
		codec:           codec,
		mailer:          mailer,
		media:           mediaStore,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// # Registration & Activation

// RegisterInput holds the data submitted by a registration candidate.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Registration is the outcome of a successful registration request.
//
// Note that no account exists yet: the candidate lives only inside the
// signed activation token until the emailed code is confirmed.
type Registration struct {
	ActivationToken string `json:"activation_token"`
}

/*
Register starts the two-step signup flow.

Description: Verifies the email is free, mints a 4-digit activation code,
embeds the candidate inside a short-lived signed token, and emails the code.
Nothing is persisted — an abandoned registration leaves no trace.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *Registration: The activation token the client must echo back
  - error: Conflict (email taken), mail delivery, or signing failures
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Registration, error) {

	// Reject already-registered emails up front for a clear client error.
	// The activation step re-checks, so a race here is not a correctness hole.
	_, err := service.users.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Mint the 4-digit code the user must read from their inbox
	activationCode, err := sec.GenerateActivationCode()
	if err != nil {
		return nil, fmt.Errorf("auth_service_activation_code_failed: %w", err)
	}

	// Seal candidate and code into a short-lived signed token. The password
	// travels inside the token, never in our storage.
	candidate := sec.CandidateUser{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}

	activationToken, err := service.codec.SignActivation(candidate, activationCode, ActivationTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_activation_sign_failed: %w", err)
	}

	// Deliver the code. A failed send fails the whole registration: a token
	// whose code the user can never read must not count as issued.
	mailData := map[string]any{
		"Name":           input.Name,
		"ActivationCode": activationCode,
	}
	if err := service.mailer.Send(ctx, input.Email, ActivationEmailSubject, ActivationEmailTemplate, mailData); err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_activation_mail_failed: %w", err))
	}

	return &Registration{ActivationToken: activationToken}, nil
}

// ActivateInput holds the token/code pair that completes a registration.
type ActivateInput struct {
	ActivationToken string
	ActivationCode  string
}

/*
Activate completes the two-step signup flow and creates the account.

Description: Verifies the activation token, compares the submitted code
against the embedded one, re-checks email uniqueness (the registration
check may have raced), hashes the password, and persists the account.
No session is issued — the client logs in explicitly afterwards.

Parameters:
  - ctx: context.Context
  - input: ActivateInput

Returns:
  - *User: The newly created account
  - error: ErrActivationTokenInvalid, ErrActivationCodeMismatch, Conflict
*/
func (service *Service) Activate(ctx context.Context, input ActivateInput) (*User, error) {

	// 1. Verify signature and expiry of the activation token
	claims, err := service.codec.VerifyActivation(input.ActivationToken)
	if err != nil {
		return nil, ErrActivationTokenInvalid
	}

	// 2. Compare the emailed code with the submitted one
	if claims.ActivationCode != input.ActivationCode {
		return nil, ErrActivationCodeMismatch
	}

	// 3. Re-check uniqueness: someone may have registered this email while
	// the token was in flight
	_, err = service.users.FindByEmail(ctx, claims.Candidate.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// 4. Hash the password only now, at the moment an account comes to exist
	hashedPassword, err := sec.HashPassword(claims.Candidate.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// 5. Persist. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Name:         claims.Candidate.Name,
		Email:        claims.Candidate.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		IsVerified:   true,
	}

	if err := service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates credentials and establishes a session.

Description: Looks the account up by email, performs a constant-time bcrypt
comparison, and on success mints the token pair and caches the session
snapshot.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *Session: Freshly minted token pair plus the user
  - error: ErrInvalidCredentials or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {

	// Unknown email and wrong password produce the same generic failure
	// to prevent account enumeration.
	user, err := service.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.HasPassword() || !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return service.IssueSession(ctx, user)
}

// SocialAuthInput carries the profile asserted by a trusted identity provider.
type SocialAuthInput struct {
	Name      string
	Email     string
	AvatarURL string
}

/*
SocialAuth signs a user in via an external identity provider.

Description: Find-or-create by email. A brand new social account has no
password hash, so it can never authenticate through the password login path.

Parameters:
  - ctx: context.Context
  - input: SocialAuthInput

Returns:
  - *Session: Freshly minted token pair plus the user
  - error: Storage or signing failures
*/
func (service *Service) SocialAuth(ctx context.Context, input SocialAuthInput) (*Session, error) {
	user, err := service.users.FindByEmail(ctx, input.Email)

	if err != nil {
		// Only a missing account may be auto-provisioned; storage failures
		// must not silently create duplicates.
		appError := apperr.As(err)
		if appError == nil || appError.HTTPStatus != http.StatusNotFound {
			return nil, err
		}

		user = &User{
			ID:         uuid.New(),
			Name:       input.Name,
			Email:      input.Email,
			Role:       sec.RoleUser,
			IsVerified: true,
		}
		if input.AvatarURL != "" {
			user.AvatarURL = pointer.To(input.AvatarURL)
		}

		if err := service.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	return service.IssueSession(ctx, user)
}

// # Session Lifecycle

/*
IssueSession mints the access/refresh token pair and caches the snapshot.

Description: Both tokens carry only the user ID; the cached snapshot is the
live principal. Writing the snapshot is mandatory — without it the freshly
minted tokens would be rejected on their first use.

Parameters:
  - ctx: context.Context
  - user: *User

Returns:
  - *Session: Token pair plus the user
  - error: Signing or cache failures
*/
func (service *Service) IssueSession(ctx context.Context, user *User) (*Session, error) {
	accessToken, err := service.codec.SignSession(sec.PurposeAccess, user.ID, service.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_sign_failed: %w", err)
	}

	refreshToken, err := service.codec.SignSession(sec.PurposeRefresh, user.ID, service.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_sign_failed: %w", err)
	}

	if err := service.sessions.Set(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_session_cache_failed: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

/*
Refresh extends a session using a valid refresh token.

Description: Verifies the refresh token, requires a live snapshot (a revoked
session cannot be resurrected by a still-valid token), then re-mints both
tokens and rewrites the snapshot, extending its lifetime.

Parameters:
  - ctx: context.Context
  - refreshToken: string (taken from the refresh cookie)

Returns:
  - *Session: Rotated token pair plus the user
  - error: ErrRefreshTokenInvalid, ErrSessionNotFound, or internal failures
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := service.codec.VerifySession(sec.PurposeRefresh, refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	// The snapshot is the revocation authority: no snapshot, no refresh.
	user, err := service.sessions.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return service.IssueSession(ctx, user)
}

/*
Logout revokes the user's session.

Description: Deletes the session snapshot and waits for confirmation. Every
outstanding token for this user dies with the snapshot, regardless of its
remaining cryptographic validity.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - error: Cache failures (logout must not falsely report success)
*/
func (service *Service) Logout(ctx context.Context, userID string) error {
	if err := service.sessions.Del(ctx, userID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Profile Updates

// UpdateInfoInput carries profile fields to change. Empty fields are left
// untouched.
type UpdateInfoInput struct {
	Name  string
	Email string
}

/*
UpdateInfo changes the user's name and/or email address.

Description: A changed email is checked for uniqueness first. After the
durable write the session snapshot is rewritten so subsequent requests see
the new profile immediately.

Parameters:
  - ctx: context.Context
  - userID: string
  - input: UpdateInfoInput

Returns:
  - *User: The updated account
  - error: Conflict (email taken), NotFound, or storage failures
*/
func (service *Service) UpdateInfo(ctx context.Context, userID string, input UpdateInfoInput) (*User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != "" && input.Email != user.Email {
		if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
			return nil, apperr.Conflict("Email is already registered")
		}
		user.Email = input.Email
	}

	if input.Name != "" {
		user.Name = input.Name
	}

	if err := service.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, service.sessions.Set(ctx, user)
}

/*
UpdatePassword rotates the user's password after verifying the old one.

Description: Social-only accounts carry no password hash and are rejected.
The session snapshot is rewritten after the durable write.

Parameters:
  - ctx: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - *User: The updated account
  - error: Validation, NotFound, or storage failures
*/
func (service *Service) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (*User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.HasPassword() {
		return nil, apperr.ValidationError("This account has no password to change")
	}

	if !sec.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return nil, apperr.ValidationError("Old password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_service_password_hash_failed: %w", err)
	}
	user.PasswordHash = hashedPassword

	if err := service.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, service.sessions.Set(ctx, user)
}

/*
UpdateAvatar replaces the user's profile picture.

Description: Uploads the new image to object storage, deletes the previous
one if present, persists the new asset reference, and rewrites the session
snapshot.

Parameters:
  - ctx: context.Context
  - userID: string
  - imageData: []byte (decoded image bytes)

Returns:
  - *User: The updated account
  - error: Upload, NotFound, or storage failures
*/
func (service *Service) UpdateAvatar(ctx context.Context, userID string, imageData []byte) (*User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	asset, err := service.media.Upload(ctx, imageData, AvatarFolder)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_avatar_upload_failed: %w", err))
	}

	// Remove the previous picture only after the new one is safely stored.
	// A failed delete leaves an orphan object, never a broken profile.
	if user.AvatarID != nil {
		_ = service.media.Destroy(ctx, *user.AvatarID)
	}

	user.AvatarID = pointer.To(asset.PublicID)
	user.AvatarURL = pointer.To(asset.URL)

	if err := service.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, service.sessions.Set(ctx, user)
}
