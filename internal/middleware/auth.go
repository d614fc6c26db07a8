// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"postcms/internal/apperr"
	"postcms/internal/auth"
	"postcms/internal/envelope"
	"postcms/internal/session"
)

// Verifier resolves an access token to a principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*auth.Principal, error)
}

type verifyFailedKey struct{}

// VerifyFailed reports whether the request carried a token that could not
// be checked because the token store failed.
func VerifyFailed(ctx context.Context) bool {
	failed, _ := ctx.Value(verifyFailedKey{}).(bool)
	return failed
}

// Authenticate resolves the request's access token and stores the principal
// in the request context. Downstream handlers read it with
// auth.PrincipalFromContext. This middleware does NOT enforce
// authentication: a missing or rejected token leaves the request anonymous.
// When the token store fails the request also continues anonymously, marked
// so that RequireAuth answers with a server error instead of a 401.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := v.Verify(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			case apperr.Is(err, apperr.KindAuthorization):
				// Expired or revoked: treat as anonymous.
			default:
				slog.ErrorContext(r.Context(), "token verification failed", "error", err)
				r = r.WithContext(context.WithValue(r.Context(), verifyFailedKey{}, true))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without a principal with a 401 envelope, or
// a 500 envelope when the token could not be verified. Must be applied
// after Authenticate in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if VerifyFailed(r.Context()) {
			envelope.Error(w, http.StatusInternalServerError, "Server error.")
			return
		}
		if auth.PrincipalFromContext(r.Context()) == nil {
			envelope.Fail(w, http.StatusUnauthorized, auth.MsgUnauthenticated, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest returns the access token from the Authorization bearer
// header, falling back to the access_token cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if c, err := r.Cookie(session.CookieName); err == nil {
		return c.Value
	}
	return ""
}
