package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"postcms/internal/apperr"
	"postcms/internal/auth"
	"postcms/internal/models"
	"postcms/internal/store/memstore"
)

// authed returns a context carrying a signed-in principal.
func authed() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		User:  &models.User{ID: uuid.New(), Email: "editor@example.com"},
		Token: "test-token",
	})
}

func wantKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apperr.Error of kind %v, got %v", kind, err)
	}
	if ae.Kind != kind {
		t.Fatalf("kind: got %v, want %v (%v)", ae.Kind, kind, err)
	}
	return ae
}

func wantField(t *testing.T, ae *apperr.Error, field, msg string) {
	t.Helper()
	for _, m := range ae.Fields[field] {
		if m == msg {
			return
		}
	}
	t.Errorf("fields[%s] = %v, want %q", field, ae.Fields[field], msg)
}

func str(s string) Field[string] { return NewField(s) }

// fixture wires both services to one in-memory store.
type fixture struct {
	store      *memstore.Store
	posts      *PostService
	categories *CategoryService
}

func newFixture() *fixture {
	s := memstore.New()
	return &fixture{
		store:      s,
		posts:      NewPostService(s.Posts(), s.Categories(), DefaultSlugRetries),
		categories: NewCategoryService(s.Categories(), DefaultSlugRetries),
	}
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := f.categories.Create(authed(), CategoryInput{Name: str(name)})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

func (f *fixture) post(t *testing.T, title string, categoryID uuid.UUID) *models.Post {
	t.Helper()
	p, err := f.posts.Create(authed(), PostInput{
		Title:      str(title),
		Content:    str("Some *content*."),
		Author:     str("Jane"),
		CategoryID: NewField(categoryID),
	})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return p
}
