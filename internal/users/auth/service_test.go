// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	"github.com/dothanhvu/lurnia/internal/platform/media"
	"github.com/dothanhvu/lurnia/internal/platform/sec"
	"github.com/dothanhvu/lurnia/internal/users/auth"
)

// # Test Doubles

type fakeUserRepository struct {
	byID    map[string]*auth.User
	byEmail map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		byID:    map[string]*auth.User{},
		byEmail: map[string]*auth.User{},
	}
}

func (repo *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	if _, exists := repo.byEmail[user.Email]; exists {
		return apperr.Conflict("Duplicate value entered")
	}
	clone := *user
	repo.byID[user.ID] = &clone
	repo.byEmail[user.Email] = &clone
	return nil
}

func (repo *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := repo.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repo *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	user, ok := repo.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repo *fakeUserRepository) Save(_ context.Context, user *auth.User) error {
	existing, ok := repo.byID[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	delete(repo.byEmail, existing.Email)
	clone := *user
	repo.byID[user.ID] = &clone
	repo.byEmail[user.Email] = &clone
	return nil
}

type fakeSessionCache struct {
	snapshots map[string]*auth.User
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{snapshots: map[string]*auth.User{}}
}

func (cache *fakeSessionCache) Set(_ context.Context, user *auth.User) error {
	clone := *user
	cache.snapshots[user.ID] = &clone
	return nil
}

func (cache *fakeSessionCache) Get(_ context.Context, userID string) (*auth.User, error) {
	user, ok := cache.snapshots[userID]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	clone := *user
	return &clone, nil
}

func (cache *fakeSessionCache) Del(_ context.Context, userID string) error {
	delete(cache.snapshots, userID)
	return nil
}

type sentMail struct {
	To       string
	Subject  string
	Template string
	Data     any
}

type fakeMailer struct {
	sent    []sentMail
	failure error
}

func (mailer *fakeMailer) Send(_ context.Context, toAddress, subject, templateName string, data any) error {
	if mailer.failure != nil {
		return mailer.failure
	}
	mailer.sent = append(mailer.sent, sentMail{To: toAddress, Subject: subject, Template: templateName, Data: data})
	return nil
}

type fakeMediaStore struct {
	uploads   int
	destroyed []string
}

func (store *fakeMediaStore) Upload(_ context.Context, _ []byte, folder string) (*media.Asset, error) {
	store.uploads++
	return &media.Asset{
		PublicID: fmt.Sprintf("%s/object-%d", folder, store.uploads),
		URL:      fmt.Sprintf("https://cdn.lurnia.app/%s/object-%d", folder, store.uploads),
	}, nil
}

func (store *fakeMediaStore) Destroy(_ context.Context, publicID string) error {
	store.destroyed = append(store.destroyed, publicID)
	return nil
}

// # Fixture

type serviceFixture struct {
	service  *auth.Service
	users    *fakeUserRepository
	sessions *fakeSessionCache
	mailer   *fakeMailer
	media    *fakeMediaStore
	codec    *sec.TokenCodec
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	fixture := &serviceFixture{
		users:    newFakeUserRepository(),
		sessions: newFakeSessionCache(),
		mailer:   &fakeMailer{},
		media:    &fakeMediaStore{},
		codec:    sec.NewTokenCodec("activation-secret", "access-secret", "refresh-secret", "lurnia.test"),
	}

	fixture.service = auth.NewService(
		fixture.users,
		fixture.sessions,
		fixture.codec,
		fixture.mailer,
		fixture.media,
		5*time.Minute,
		72*time.Hour,
	)

	return fixture
}

// registerAndActivate walks a candidate through the full signup flow.
func (fixture *serviceFixture) registerAndActivate(t *testing.T, name, email, password string) *auth.User {
	t.Helper()
	ctx := context.Background()

	registration, err := fixture.service.Register(ctx, auth.RegisterInput{
		Name: name, Email: email, Password: password,
	})
	require.NoError(t, err)

	claims, err := fixture.codec.VerifyActivation(registration.ActivationToken)
	require.NoError(t, err)

	user, err := fixture.service.Activate(ctx, auth.ActivateInput{
		ActivationToken: registration.ActivationToken,
		ActivationCode:  claims.ActivationCode,
	})
	require.NoError(t, err)
	return user
}

// # Registration & Activation

/*
TestService_Register_SendsActivationMail verifies the first half of the
signup flow: nothing persisted, one mail sent, token echoes the code.
*/
func TestService_Register_SendsActivationMail(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	registration, err := fixture.service.Register(ctx, auth.RegisterInput{
		Name:     "Vu",
		Email:    "vu@lurnia.app",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registration.ActivationToken)

	// No account exists yet
	_, err = fixture.users.FindByEmail(ctx, "vu@lurnia.app")
	assert.Error(t, err)

	// Exactly one mail, carrying the same code the token embeds
	require.Len(t, fixture.mailer.sent, 1)
	assert.Equal(t, "vu@lurnia.app", fixture.mailer.sent[0].To)

	claims, err := fixture.codec.VerifyActivation(registration.ActivationToken)
	require.NoError(t, err)

	mailData, ok := fixture.mailer.sent[0].Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, claims.ActivationCode, mailData["ActivationCode"])
}

/*
TestService_Register_MailFailureFailsRegistration verifies that a failed
delivery aborts the registration entirely.
*/
func TestService_Register_MailFailureFailsRegistration(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.mailer.failure = errors.New("smtp unreachable")

	_, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Name: "Vu", Email: "vu@lurnia.app", Password: "secret-password",
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusInternalServerError, appError.HTTPStatus)
}

/*
TestService_Register_DuplicateEmail verifies the early uniqueness check.
*/
func TestService_Register_DuplicateEmail(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")

	_, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Name: "Other", Email: "vu@lurnia.app", Password: "another-password",
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
}

/*
TestService_Activate_CreatesVerifiedAccount verifies the second half of the
signup flow: account persisted, password hashed, no session issued.
*/
func TestService_Activate_CreatesVerifiedAccount(t *testing.T) {
	fixture := newServiceFixture(t)

	user := fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.True(t, user.IsVerified)
	assert.NotEqual(t, "secret-password", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret-password", user.PasswordHash))

	// Activation does not log the user in
	_, err := fixture.sessions.Get(context.Background(), user.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

/*
TestService_Activate_CodeMismatch verifies the 4-digit code comparison.
*/
func TestService_Activate_CodeMismatch(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	registration, err := fixture.service.Register(ctx, auth.RegisterInput{
		Name: "Vu", Email: "vu@lurnia.app", Password: "secret-password",
	})
	require.NoError(t, err)

	claims, err := fixture.codec.VerifyActivation(registration.ActivationToken)
	require.NoError(t, err)

	wrongCode := "1234"
	if claims.ActivationCode == wrongCode {
		wrongCode = "4321"
	}

	_, err = fixture.service.Activate(ctx, auth.ActivateInput{
		ActivationToken: registration.ActivationToken,
		ActivationCode:  wrongCode,
	})
	assert.ErrorIs(t, err, auth.ErrActivationCodeMismatch)
}

/*
TestService_Activate_InvalidToken verifies forged and malformed tokens fail.
*/
func TestService_Activate_InvalidToken(t *testing.T) {
	fixture := newServiceFixture(t)

	_, err := fixture.service.Activate(context.Background(), auth.ActivateInput{
		ActivationToken: "not-a-token",
		ActivationCode:  "1234",
	})
	assert.ErrorIs(t, err, auth.ErrActivationTokenInvalid)
}

/*
TestService_Activate_EmailRace verifies that an email registered while the
activation token was in flight is rejected at activation time.
*/
func TestService_Activate_EmailRace(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	registration, err := fixture.service.Register(ctx, auth.RegisterInput{
		Name: "Vu", Email: "vu@lurnia.app", Password: "secret-password",
	})
	require.NoError(t, err)

	// A second candidate wins the race for the same email
	fixture.registerAndActivate(t, "Faster", "vu@lurnia.app", "another-password")

	claims, err := fixture.codec.VerifyActivation(registration.ActivationToken)
	require.NoError(t, err)

	_, err = fixture.service.Activate(ctx, auth.ActivateInput{
		ActivationToken: registration.ActivationToken,
		ActivationCode:  claims.ActivationCode,
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
}

// # Login & Session Lifecycle

/*
TestService_Login_IssuesSession verifies the happy path: both tokens verify
under their own purpose and the snapshot is cached.
*/
func TestService_Login_IssuesSession(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	user := fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")

	session, err := fixture.service.Login(ctx, auth.LoginInput{
		Email: "vu@lurnia.app", Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)

	accessClaims, err := fixture.codec.VerifySession(sec.PurposeAccess, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, accessClaims.UserID)

	refreshClaims, err := fixture.codec.VerifySession(sec.PurposeRefresh, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshClaims.UserID)

	snapshot, err := fixture.sessions.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, snapshot.Email)
}

/*
TestService_Login_InvalidCredentials verifies that a wrong password and an
unknown email are indistinguishable.
*/
func TestService_Login_InvalidCredentials(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")

	_, wrongPassword := fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: "bad"})
	_, unknownEmail := fixture.service.Login(ctx, auth.LoginInput{Email: "nobody@lurnia.app", Password: "secret-password"})

	assert.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, auth.ErrInvalidCredentials)
}

/*
TestService_Refresh_RotatesTokens verifies that a valid refresh token with a
live snapshot yields a fresh, working session.
*/
func TestService_Refresh_RotatesTokens(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	user := fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")
	session, err := fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: "secret-password"})
	require.NoError(t, err)

	rotated, err := fixture.service.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, rotated.User.ID)

	claims, err := fixture.codec.VerifySession(sec.PurposeAccess, rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// An access token can never drive the refresh endpoint
	_, err = fixture.service.Refresh(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenInvalid)
}

/*
TestService_Refresh_RevokedSession verifies that a valid refresh token dies
with its snapshot: logout ends the session for good.
*/
func TestService_Refresh_RevokedSession(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	user := fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")
	session, err := fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: "secret-password"})
	require.NoError(t, err)

	require.NoError(t, fixture.service.Logout(ctx, user.ID))

	_, err = fixture.sessions.Get(ctx, user.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	_, err = fixture.service.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

/*
TestService_SocialAuth_FindOrCreate verifies auto-provisioning on first
contact and reuse on the second.
*/
func TestService_SocialAuth_FindOrCreate(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	first, err := fixture.service.SocialAuth(ctx, auth.SocialAuthInput{
		Name: "Vu", Email: "vu@lurnia.app", AvatarURL: "https://avatars.example.com/vu.png",
	})
	require.NoError(t, err)
	assert.True(t, first.User.IsVerified)
	assert.False(t, first.User.HasPassword())

	second, err := fixture.service.SocialAuth(ctx, auth.SocialAuthInput{
		Name: "Vu", Email: "vu@lurnia.app",
	})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	// A social-only account has no password to log in with
	_, err = fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: ""})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// # Profile Updates

/*
TestService_UpdateInfo_RewritesSnapshot verifies that a profile change is
visible both durably and in the live session.
*/
func TestService_UpdateInfo_RewritesSnapshot(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	user := fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")
	_, err := fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: "secret-password"})
	require.NoError(t, err)

	updated, err := fixture.service.UpdateInfo(ctx, user.ID, auth.UpdateInfoInput{Name: "Thanh Vu"})
	require.NoError(t, err)
	assert.Equal(t, "Thanh Vu", updated.Name)
	assert.Equal(t, "vu@lurnia.app", updated.Email)

	snapshot, err := fixture.sessions.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thanh Vu", snapshot.Name)
}

/*
TestService_UpdateInfo_EmailConflict verifies that switching to a taken
email is rejected.
*/
func TestService_UpdateInfo_EmailConflict(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	user := fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")
	fixture.registerAndActivate(t, "Other", "other@lurnia.app", "another-password")

	_, err := fixture.service.UpdateInfo(ctx, user.ID, auth.UpdateInfoInput{Email: "other@lurnia.app"})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
}

/*
TestService_UpdatePassword verifies old-password verification and that the
new credential takes effect immediately.
*/
func TestService_UpdatePassword(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	user := fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")
	_, err := fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: "secret-password"})
	require.NoError(t, err)

	_, err = fixture.service.UpdatePassword(ctx, user.ID, "wrong-old", "new-password")
	require.Error(t, err)

	_, err = fixture.service.UpdatePassword(ctx, user.ID, "secret-password", "new-password")
	require.NoError(t, err)

	_, err = fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: "secret-password"})
	assert.Error(t, err)

	_, err = fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: "new-password"})
	assert.NoError(t, err)
}

/*
TestService_UpdateAvatar verifies upload, old-asset cleanup, and snapshot
rewrite.
*/
func TestService_UpdateAvatar(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	user := fixture.registerAndActivate(t, "Vu", "vu@lurnia.app", "secret-password")
	_, err := fixture.service.Login(ctx, auth.LoginInput{Email: "vu@lurnia.app", Password: "secret-password"})
	require.NoError(t, err)

	updated, err := fixture.service.UpdateAvatar(ctx, user.ID, []byte("image-one"))
	require.NoError(t, err)
	require.NotNil(t, updated.AvatarID)
	require.NotNil(t, updated.AvatarURL)
	assert.Empty(t, fixture.media.destroyed)

	firstAvatarID := *updated.AvatarID

	updated, err = fixture.service.UpdateAvatar(ctx, user.ID, []byte("image-two"))
	require.NoError(t, err)
	assert.Equal(t, 2, fixture.media.uploads)
	assert.Equal(t, []string{firstAvatarID}, fixture.media.destroyed)

	snapshot, err := fixture.sessions.Get(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, snapshot.AvatarID)
	assert.Equal(t, *updated.AvatarID, *snapshot.AvatarID)
}
