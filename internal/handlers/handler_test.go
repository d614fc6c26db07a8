// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store so no external services are needed.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"postcms/internal/auth"
	"postcms/internal/models"
	"postcms/internal/service"
	"postcms/internal/session"
	"postcms/internal/store/memstore"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "correct-horse-battery"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	store      *memstore.Store
	tokens     *memstore.Tokens
	authSvc    *auth.Service
	auth       *Auth
	posts      *Posts
	categories *Categories
	user       *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memstore.New()
	tokens := memstore.NewTokens(session.DefaultTTL)
	user, err := st.Users().Create(context.Background(), testEmail, testPassword, "Admin")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	authSvc := auth.NewService(st.Users(), tokens, "postcms-test")
	return &testEnv{
		store:      st,
		tokens:     tokens,
		authSvc:    authSvc,
		auth:       NewAuth(authSvc, session.NewStore(nil, session.DefaultTTL, false)),
		posts:      NewPosts(service.NewPostService(st.Posts(), st.Categories(), service.DefaultSlugRetries)),
		categories: NewCategories(service.NewCategoryService(st.Categories(), service.DefaultSlugRetries)),
		user:       user,
	}
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches the environment's user as the request principal.
func (e *testEnv) asUser(r *http.Request) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), &auth.Principal{User: e.user, Token: "test-token"}))
}

// jsonRequest builds a request with body as its JSON payload.
func jsonRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// envelopeBody is the decoded response envelope.
type envelopeBody struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Content json.RawMessage     `json:"content"`
	Errors  map[string][]string `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return body
}

// decodeContent unmarshals the envelope content into dst.
func decodeContent(t *testing.T, body envelopeBody, dst any) {
	t.Helper()
	if err := json.Unmarshal(body.Content, dst); err != nil {
		t.Fatalf("decode content: %v (content %s)", err, body.Content)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

// createCategory creates a category through the handler and returns it.
func (e *testEnv) createCategory(t *testing.T, name string) models.Category {
	t.Helper()
	rec := httptest.NewRecorder()
	e.categories.Create(rec, e.asUser(jsonRequest(http.MethodPost, "/categories", `{"name":"`+name+`"}`)))
	assertStatus(t, rec, http.StatusCreated)

	var c models.Category
	decodeContent(t, decodeEnvelope(t, rec), &c)
	return c
}

// createPost creates a post through the handler and returns it.
func (e *testEnv) createPost(t *testing.T, title string, categoryID uuid.UUID) models.Post {
	t.Helper()
	payload, _ := json.Marshal(map[string]any{
		"title":       title,
		"content":     "Hello **world**",
		"author":      "Jane",
		"category_id": categoryID,
	})
	rec := httptest.NewRecorder()
	e.posts.Create(rec, e.asUser(jsonRequest(http.MethodPost, "/posts", string(payload))))
	assertStatus(t, rec, http.StatusCreated)

	var p models.Post
	decodeContent(t, decodeEnvelope(t, rec), &p)
	return p
}
