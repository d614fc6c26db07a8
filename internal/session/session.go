// Package session provides Valkey-backed access tokens. A token is an opaque
// random string handed to the client; Valkey only ever sees its SHA-256 digest,
// keyed with a TTL so expired tokens disappear on their own.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the cookie that carries the access token to browsers.
	CookieName = "access_token"

	// DefaultTTL is how long an issued token stays valid.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces token keys in Valkey to avoid collisions.
	keyPrefix = "token:"

	// tokenLength is the byte length of the random token (32 bytes = 64 hex chars).
	tokenLength = 32
)

// Data holds the token payload stored in Valkey.
type Data struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store manages access token lifecycle in Valkey.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
	secure bool
}

// NewStore creates a token store backed by the given Valkey client. A zero
// ttl falls back to DefaultTTL. When secure is true, cookies are marked
// Secure (for HTTPS deployments).
func NewStore(client redis.Cmdable, ttl time.Duration, secure bool) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
		secure: secure,
	}
}

// TTL returns the lifetime of newly issued tokens.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Issue generates a new token for data and stores it in Valkey. The
// plaintext token is returned to the caller and never persisted.
func (s *Store) Issue(ctx context.Context, data *Data) (string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token generate: %w", err)
	}

	data.CreatedAt = time.Now().UTC()
	data.ExpiresAt = data.CreatedAt.Add(s.ttl)

	payload, err := json.Marshal(data)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token marshal: %w", err)
	}

	if err := s.client.Set(ctx, key(token), payload, s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("token store: %w", err)
	}

	return token, data.ExpiresAt, nil
}

// Lookup returns the payload for token, or nil if the token is unknown or
// expired. The TTL is left untouched.
func (s *Store) Lookup(ctx context.Context, token string) (*Data, error) {
	if token == "" {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}

	return &data, nil
}

// Revoke deletes token from Valkey. Revoking an unknown token is not an error.
func (s *Store) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("token revoke: %w", err)
	}
	return nil
}

// SetCookie writes the access token cookie with the store's TTL.
func (s *Store) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}

// ClearCookie expires the access token cookie immediately.
func (s *Store) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// key maps a plaintext token to its Valkey key.
func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// generateToken creates a cryptographically random token.
func generateToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
