package auth

import (
	"context"

	"postcms/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	User *models.User

	// Token is the access token the request was authenticated with.
	Token string
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the principal from ctx.
// Returns nil if the request is not authenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
