// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package auth

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dothanhvu/lurnia/internal/platform/apperr"
	"github.com/dothanhvu/lurnia/internal/platform/config"
	"github.com/dothanhvu/lurnia/internal/platform/constants"
	requestutil "github.com/dothanhvu/lurnia/internal/platform/request"
	"github.com/dothanhvu/lurnia/internal/platform/respond"
	"github.com/dothanhvu/lurnia/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication and profile HTTP endpoints.
//
// # Scope
//
// This handler is strictly a transport layer: cookies, status codes, JSON.
// All identity rules live in [Service].
type Handler struct {
	authService *Service
	cfg         *config.Config
	gate        func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler].
//
// The gate parameter is the [Authenticate] middleware, prebuilt by the
// composition root so the handler does not need the codec or cache directly.
func NewHandler(service *Service, cfg *config.Config, gate func(http.Handler) http.Handler) *Handler {
	return &Handler{authService: service, cfg: cfg, gate: gate}
}

// RegisterRoutes mounts the authentication endpoints on the versioned API router.
//
// # Endpoints
//   - POST /registration          : Starts the two-step signup.
//   - POST /activate-user         : Confirms the emailed code, creates the account.
//   - POST /login                 : Password authentication.
//   - POST /social-auth           : Identity-provider authentication.
//   - GET  /refresh               : Rotates the token pair via the refresh cookie.
//   - GET  /logout                : Revokes the session (auth required).
//   - GET  /me                    : Returns the current principal (auth required).
//   - PUT  /update-user-info      : Profile update (auth required).
//   - PUT  /update-user-password  : Password rotation (auth required).
//   - PUT  /update-user-avatar    : Avatar upload (auth required).
func (handler *Handler) RegisterRoutes(router chi.Router) {

	// Public endpoints
	router.Post("/registration", handler.register)
	router.Post("/activate-user", handler.activate)
	router.Post("/login", handler.login)
	router.Post("/social-auth", handler.socialAuth)
	router.Get("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.gate)
		r.Get("/logout", handler.logout)
		r.Get("/me", handler.me)
		r.Put("/update-user-info", handler.updateInfo)
		r.Put("/update-user-password", handler.updatePassword)
		r.Put("/update-user-avatar", handler.updateAvatar)
	})
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type activateRequest struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialAuthRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

type updateInfoRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type updateAvatarRequest struct {
	Avatar string `json:"avatar"`
}

// # Cookie Management

// setSessionCookies attaches both credential cookies to the response.
//
// Secure is enabled only in production so local HTTP development keeps
// working; everything else (HttpOnly, SameSite=Lax, Path=/) is identical
// in every environment.
func (handler *Handler) setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.AuthCookiePath,
		MaxAge:   int(handler.cfg.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.AuthCookiePath,
		MaxAge:   int(handler.cfg.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies expires both credential cookies immediately.
func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.AuthCookiePath,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   handler.cfg.IsProduction(),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// # Registration & Activation

/*
register starts the two-step signup flow.

POST /api/v1/registration

Description: Validates the candidate profile, then delegates to the service
which emails a 4-digit code and returns a short-lived activation token.

Request:
  - Body: registerRequest (Name, Email, Password)

Response:
  - 201: Registration: The activation token to echo back
  - 400: Validation failure
  - 409: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	registration, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registration)
}

/*
activate completes the two-step signup flow.

POST /api/v1/activate-user

Description: Verifies the activation token and emailed code, then persists
the account. No session is issued — clients log in explicitly afterwards.

Request:
  - Body: activateRequest (ActivationToken, ActivationCode)

Response:
  - 201: User: The created account
  - 400: Invalid/expired token or code mismatch
  - 409: Email registered while the token was in flight
*/
func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	var input activateRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldActivationToken, input.ActivationToken).
		Required(FieldActivationCode, input.ActivationCode)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Activate(request.Context(), ActivateInput{
		ActivationToken: input.ActivationToken,
		ActivationCode:  input.ActivationCode,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// # Authentication

/*
login authenticates a user and establishes a session.

POST /api/v1/login

Description: Verifies credentials, then injects both credential cookies and
returns the session payload.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Token pair and user profile
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)
	respond.OK(writer, session)
}

/*
socialAuth signs a user in via a trusted identity provider.

POST /api/v1/social-auth

Description: Find-or-create by email, then establish a session exactly like
a password login.

Request:
  - Body: socialAuthRequest (Name, Email, Avatar)

Response:
  - 200: Session: Token pair and user profile
  - 400: Validation failure
*/
func (handler *Handler) socialAuth(writer http.ResponseWriter, request *http.Request) {
	var input socialAuthRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SocialAuth(request.Context(), SocialAuthInput{
		Name:      input.Name,
		Email:     input.Email,
		AvatarURL: input.Avatar,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)
	respond.OK(writer, session)
}

// # Session Lifecycle

/*
refresh rotates the token pair using the refresh cookie.

GET /api/v1/refresh

Description: Public endpoint — an expired access token is exactly the case
it serves. The refresh token is taken from its cookie, never from the body.

Response:
  - 200: Session: Rotated token pair and user profile
  - 401: Missing/invalid refresh token or revoked session
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, ErrRefreshTokenInvalid)
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)
	respond.OK(writer, session)
}

/*
logout revokes the current session.

GET /api/v1/logout

Description: Deletes the session snapshot (awaited) and expires both
credential cookies. Requires authentication.

Response:
  - 200: Confirmation message
  - 401: Not authenticated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	user, ok := PrincipalFromContext(request.Context())
	if !ok {
		respond.Error(writer, request, ErrMissingCredential)
		return
	}

	if err := handler.authService.Logout(request.Context(), user.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)
	respond.OK(writer, map[string]string{constants.FieldMessage: "Logged out successfully"})
}

// # Profile

/*
me returns the authenticated principal.

GET /api/v1/me

Response:
  - 200: User: The live session snapshot
  - 401: Not authenticated
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	user, ok := PrincipalFromContext(request.Context())
	if !ok {
		respond.Error(writer, request, ErrMissingCredential)
		return
	}

	respond.OK(writer, user)
}

/*
updateInfo changes the principal's name and/or email.

PUT /api/v1/update-user-info

Request:
  - Body: updateInfoRequest (Name, Email — empty fields untouched)

Response:
  - 200: User: The updated account
  - 409: Email already registered
*/
func (handler *Handler) updateInfo(writer http.ResponseWriter, request *http.Request) {
	user, ok := PrincipalFromContext(request.Context())
	if !ok {
		respond.Error(writer, request, ErrMissingCredential)
		return
	}

	var input updateInfoRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Email != "" {
		validator.Email(FieldEmail, input.Email)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.authService.UpdateInfo(request.Context(), user.ID, UpdateInfoInput{
		Name:  input.Name,
		Email: input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
updatePassword rotates the principal's password.

PUT /api/v1/update-user-password

Request:
  - Body: updatePasswordRequest (OldPassword, NewPassword)

Response:
  - 200: User: The updated account
  - 400: Wrong old password or passwordless account
*/
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	user, ok := PrincipalFromContext(request.Context())
	if !ok {
		respond.Error(writer, request, ErrMissingCredential)
		return
	}

	var input updatePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.authService.UpdatePassword(request.Context(), user.ID, input.OldPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
updateAvatar replaces the principal's profile picture.

PUT /api/v1/update-user-avatar

Request:
  - Body: updateAvatarRequest (Avatar — base64 image, data-URL prefix allowed)

Response:
  - 200: User: The updated account
  - 400: Missing, undecodable, or oversized image
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	user, ok := PrincipalFromContext(request.Context())
	if !ok {
		respond.Error(writer, request, ErrMissingCredential)
		return
	}

	var input updateAvatarRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	imageData, err := decodeAvatar(input.Avatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.authService.UpdateAvatar(request.Context(), user.ID, imageData)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// decodeAvatar turns a base64 upload (optionally a data URL) into raw bytes
// and enforces the size cap.
func decodeAvatar(avatar string) ([]byte, error) {
	if strings.TrimSpace(avatar) == "" {
		return nil, validate.RequiredError(FieldAvatar, "This field is required")
	}

	// Browsers commonly send "data:image/png;base64,<payload>"
	if index := strings.Index(avatar, ","); index != -1 && strings.HasPrefix(avatar, "data:") {
		avatar = avatar[index+1:]
	}

	imageData, err := base64.StdEncoding.DecodeString(avatar)
	if err != nil {
		return nil, apperr.ValidationError("Avatar must be base64-encoded image data")
	}

	if len(imageData) > MaxAvatarBytes {
		return nil, apperr.ValidationError("Avatar image exceeds the 2 MiB limit")
	}

	return imageData, nil
}
