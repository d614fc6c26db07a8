package handlers

import (
	"net/http"

	"postcms/internal/auth"
	"postcms/internal/envelope"
	"postcms/internal/middleware"
	"postcms/internal/session"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	auth    *auth.Service
	cookies *session.Store
}

// NewAuth creates a new Auth handler group. cookies only writes the
// access_token cookie; token storage goes through the service.
func NewAuth(svc *auth.Service, cookies *session.Store) *Auth {
	return &Auth{auth: svc, cookies: cookies}
}

// Login checks credentials, issues an access token and sets it as a cookie.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeMalformed(w)
		return
	}

	res, err := a.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	a.cookies.SetCookie(w, res.AccessToken)
	envelope.Success(w, http.StatusOK, "Login successful.", res)
}

// Logout revokes the presented token and clears the cookie. It succeeds
// even when the token was already invalid.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.auth.Logout(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		writeError(w, r, err)
		return
	}

	a.cookies.ClearCookie(w)
	envelope.Success(w, http.StatusOK, "Logged out successfully.", nil)
}

// VerifyToken reports whether the presented token is valid.
func (a *Auth) VerifyToken(w http.ResponseWriter, r *http.Request) {
	if middleware.VerifyFailed(r.Context()) {
		envelope.Error(w, http.StatusInternalServerError, "Server error.")
		return
	}
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		envelope.Fail(w, http.StatusUnauthorized, "Invalid or expired token.", nil)
		return
	}
	envelope.Success(w, http.StatusOK, "Token is valid.", map[string]any{
		"valid": true,
		"user":  p.User,
	})
}

// User returns the authenticated user.
func (a *Auth) User(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	envelope.Success(w, http.StatusOK, "User retrieved successfully.", p.User)
}

// TwoFASetup generates a TOTP secret and returns it with a QR code.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	setup, err := a.auth.SetupTOTP(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Scan the QR code with your authenticator app.", setup)
}

// TwoFAEnable confirms TOTP enrollment with a code.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeMalformed(w)
		return
	}

	if err := a.auth.EnableTOTP(r.Context(), auth.PrincipalFromContext(r.Context()), in.Code); err != nil {
		writeError(w, r, err)
		return
	}
	envelope.Success(w, http.StatusOK, "Two-factor authentication enabled.", nil)
}
