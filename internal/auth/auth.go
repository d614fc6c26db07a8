// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements sign-in, sign-out, token verification and TOTP
// two-factor enrollment on top of the user store and the token store.
package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"postcms/internal/apperr"
	"postcms/internal/models"
	"postcms/internal/session"
)

// Messages shown to clients.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgUnauthenticated    = "Unauthenticated."
	MsgCodeRequired       = "Two-factor code required."
	MsgInvalidCode        = "Invalid two-factor code."
)

// qrSize is the edge length in pixels of the enrollment QR code.
const qrSize = 256

// UserRepository is the subset of the user store used for authentication.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
}

// TokenStore persists opaque access tokens.
type TokenStore interface {
	Issue(ctx context.Context, data *session.Data) (string, time.Time, error)
	Lookup(ctx context.Context, token string) (*session.Data, error)
	Revoke(ctx context.Context, token string) error
}

// Service provides the authentication use cases.
type Service struct {
	users  UserRepository
	tokens TokenStore
	issuer string
}

// NewService creates an authentication service. issuer names the account
// in authenticator apps.
func NewService(users UserRepository, tokens TokenStore, issuer string) *Service {
	return &Service{users: users, tokens: tokens, issuer: issuer}
}

// LoginInput carries sign-in credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// LoginResult is returned on successful sign-in.
type LoginResult struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// dummyHash is compared against when the email is unknown so that a miss
// costs the same as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("postcms-timing-equalizer"), bcrypt.DefaultCost)
	return h
})

// Login checks credentials and issues a new access token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if fields := validateLogin(in); len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Unexpected("Could not sign in.", fmt.Errorf("login lookup: %w", err))
	}

	if user == nil {
		bcrypt.CompareHashAndPassword(dummyHash(), []byte(in.Password))
		return nil, apperr.Authentication(MsgInvalidCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperr.Authentication(MsgInvalidCredentials)
	}

	if user.RequiresTOTP() {
		code := strings.TrimSpace(in.Code)
		if code == "" {
			return nil, apperr.Authentication(MsgCodeRequired)
		}
		if !totp.Validate(code, *user.TOTPSecret) {
			return nil, apperr.Authentication(MsgInvalidCode)
		}
	}

	token, expiresAt, err := s.tokens.Issue(ctx, &session.Data{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, apperr.Unexpected("Could not sign in.", err)
	}

	slog.Info("user signed in", "user_id", user.ID)
	return &LoginResult{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func validateLogin(in LoginInput) apperr.Fields {
	fields := apperr.Fields{}
	if in.Email == "" {
		fields.Add("email", "The email field is required.")
	} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		fields.Add("email", "The email field must be a valid email address.")
	}
	if in.Password == "" {
		fields.Add("password", "The password field is required.")
	}
	return fields
}

// Logout revokes token. Unknown or empty tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return apperr.Unexpected("Could not sign out.", err)
	}
	return nil
}

// Verify resolves token to a principal. The token must be live and its
// user must still exist. Verification never extends the token lifetime.
func (s *Service) Verify(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, apperr.Authorization(MsgUnauthenticated)
	}

	data, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return nil, apperr.Unexpected("Could not verify token.", err)
	}
	if data == nil {
		return nil, apperr.Authorization(MsgUnauthenticated)
	}

	user, err := s.users.FindByID(ctx, data.UserID)
	if err != nil {
		return nil, apperr.Unexpected("Could not verify token.", fmt.Errorf("verify lookup: %w", err))
	}
	if user == nil {
		return nil, apperr.Authorization(MsgUnauthenticated)
	}

	return &Principal{User: user, Token: token}, nil
}

// TOTPSetup holds what a client needs to enroll an authenticator app.
type TOTPSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
	QRCode string `json:"qr_code"` // base64-encoded PNG
}

// SetupTOTP generates and stores a new, not yet enabled, TOTP secret for
// the principal's user.
func (s *Service) SetupTOTP(ctx context.Context, p *Principal) (*TOTPSetup, error) {
	if p == nil {
		return nil, apperr.Authorization(MsgUnauthenticated)
	}
	if p.User.RequiresTOTP() {
		return nil, apperr.Conflict("Two-factor authentication is already enabled.", nil)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: p.User.Email,
	})
	if err != nil {
		return nil, apperr.Unexpected("Could not start two-factor setup.", fmt.Errorf("totp generate: %w", err))
	}

	if err := s.users.SetTOTPSecret(ctx, p.User.ID, key.Secret()); err != nil {
		return nil, apperr.Unexpected("Could not start two-factor setup.", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, qrSize)
	if err != nil {
		return nil, apperr.Unexpected("Could not start two-factor setup.", fmt.Errorf("qr encode: %w", err))
	}

	return &TOTPSetup{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: base64.StdEncoding.EncodeToString(png),
	}, nil
}

// EnableTOTP confirms enrollment with a code from the authenticator app.
func (s *Service) EnableTOTP(ctx context.Context, p *Principal, code string) error {
	if p == nil {
		return apperr.Authorization(MsgUnauthenticated)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return apperr.Validation(apperr.Fields{"code": {"The code field is required."}})
	}

	// Reload so a secret stored by a concurrent setup is the one checked.
	user, err := s.users.FindByID(ctx, p.User.ID)
	if err != nil {
		return apperr.Unexpected("Could not enable two-factor authentication.", err)
	}
	if user == nil {
		return apperr.Authorization(MsgUnauthenticated)
	}
	if user.TOTPSecret == nil {
		return apperr.Conflict("Two-factor setup has not been started.", nil)
	}
	if user.TOTPEnabled {
		return nil
	}

	if !totp.Validate(code, *user.TOTPSecret) {
		return apperr.Validation(apperr.Fields{"code": {MsgInvalidCode}})
	}

	if err := s.users.EnableTOTP(ctx, user.ID); err != nil {
		return apperr.Unexpected("Could not enable two-factor authentication.", err)
	}

	slog.Info("two-factor enabled", "user_id", user.ID)
	return nil
}
