package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client connected to the test Valkey.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestIssueAndLookup(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, 0, false)
	ctx := context.Background()

	userID := uuid.New()
	token, expiresAt, err := store.Issue(ctx, &Data{UserID: userID, Email: "test@session.local"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(token) != 2*tokenLength {
		t.Errorf("token length: got %d, want %d", len(token), 2*tokenLength)
	}
	if d := time.Until(expiresAt); d < 23*time.Hour || d > DefaultTTL {
		t.Errorf("expiresAt %v is not ~24h away", expiresAt)
	}

	data, err := store.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if data == nil || data.UserID != userID {
		t.Fatalf("expected payload for %s, got %+v", userID, data)
	}

	// Plaintext token never appears as a key.
	if n, _ := client.Exists(ctx, keyPrefix+token).Result(); n != 0 {
		t.Error("plaintext token stored as key")
	}
}

func TestLookupDoesNotRefreshTTL(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, time.Minute, false)
	ctx := context.Background()

	token, _, err := store.Issue(ctx, &Data{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	client.Expire(ctx, key(token), 10*time.Second)

	if _, err := store.Lookup(ctx, token); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	ttl, _ := client.TTL(ctx, key(token)).Result()
	if ttl > 10*time.Second {
		t.Errorf("TTL refreshed to %v", ttl)
	}
}

func TestLookupUnknown(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, 0, false)

	for _, token := range []string{"", "not-a-real-token"} {
		data, err := store.Lookup(context.Background(), token)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", token, err)
		}
		if data != nil {
			t.Errorf("Lookup(%q): expected nil", token)
		}
	}
}

func TestRevoke(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, 0, false)
	ctx := context.Background()

	keep, _, _ := store.Issue(ctx, &Data{UserID: uuid.New()})
	drop, _, _ := store.Issue(ctx, &Data{UserID: uuid.New()})

	if err := store.Revoke(ctx, drop); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	// Second revoke is a no-op.
	if err := store.Revoke(ctx, drop); err != nil {
		t.Fatalf("Revoke (again): %v", err)
	}

	if data, _ := store.Lookup(ctx, drop); data != nil {
		t.Error("revoked token still resolves")
	}
	if data, _ := store.Lookup(ctx, keep); data == nil {
		t.Error("other token was revoked too")
	}
}

func TestSetCookie(t *testing.T) {
	store := NewStore(nil, 0, true)
	w := httptest.NewRecorder()

	store.SetCookie(w, "abc123")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "abc123" {
		t.Errorf("cookie: got %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if !c.Secure {
		t.Error("expected Secure cookie")
	}
	if c.MaxAge != int(DefaultTTL.Seconds()) {
		t.Errorf("MaxAge: got %d, want %d", c.MaxAge, int(DefaultTTL.Seconds()))
	}
}

func TestClearCookie(t *testing.T) {
	store := NewStore(nil, 0, false)
	w := httptest.NewRecorder()

	store.ClearCookie(w)

	header := w.Header().Get("Set-Cookie")
	if !strings.HasPrefix(header, CookieName+"=;") {
		t.Errorf("unexpected Set-Cookie: %q", header)
	}
	if !strings.Contains(header, "Max-Age=0") {
		t.Errorf("expected cookie to expire immediately, got %q", header)
	}

	r := &http.Request{Header: http.Header{"Cookie": {header}}}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		t.Errorf("cleared cookie still carries %q", c.Value)
	}
}

func TestKeyHashesToken(t *testing.T) {
	k := key("secret")
	if !strings.HasPrefix(k, keyPrefix) {
		t.Errorf("key %q missing prefix", k)
	}
	if strings.Contains(k, "secret") {
		t.Error("key contains plaintext token")
	}
	if k != key("secret") {
		t.Error("key is not deterministic")
	}
}
