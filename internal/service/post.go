package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"postcms/internal/apperr"
	"postcms/internal/markdown"
	"postcms/internal/models"
	"postcms/internal/slug"
	"postcms/internal/store"
)

const msgPostNotFound = "Post not found."

// PostRepository is the persistence the post service needs.
type PostRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.Post, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryChecker reports whether a category exists.
type CategoryChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PostInput carries post fields from a create or update request.
type PostInput struct {
	Title      Field[string]    `json:"title"`
	Content    Field[string]    `json:"content"`
	Author     Field[string]    `json:"author"`
	CategoryID Field[uuid.UUID] `json:"category_id"`
}

// PostService implements the post use cases.
type PostService struct {
	posts      PostRepository
	categories CategoryChecker
	slugs      slug.Generator
	retries    int
}

// NewPostService creates a post service. retries bounds how often a write
// is retried after a concurrent writer claimed the same slug.
func NewPostService(posts PostRepository, categories CategoryChecker, retries int) *PostService {
	if retries < 0 {
		retries = DefaultSlugRetries
	}
	return &PostService{
		posts:      posts,
		categories: categories,
		slugs:      slug.Generator{Fallback: "post"},
		retries:    retries,
	}
}

// slugTaken returns the existence probe for post slugs, ignoring the post
// identified by exclude (uuid.Nil for none).
func (s *PostService) slugTaken(exclude uuid.UUID) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.posts.SlugExists(ctx, candidate, exclude)
	}
}

func (s *PostService) validate(ctx context.Context, in *PostInput, partial bool) error {
	v := newValidator()
	v.requiredString("title", &in.Title, maxStringLen, partial)
	v.requiredString("content", &in.Content, 0, partial)
	v.requiredString("author", &in.Author, maxStringLen, partial)
	err := v.requiredReference("category_id", in.CategoryID, partial, func(id uuid.UUID) (bool, error) {
		return s.categories.Exists(ctx, id)
	})
	if err != nil {
		return apperr.Unexpected(msgServerError, fmt.Errorf("check category: %w", err))
	}
	return v.err()
}

// List returns one page of posts. It does not require authentication.
func (s *PostService) List(ctx context.Context, page, perPage int) (*Page[models.Post], error) {
	page, perPage = normalizePage(page, perPage)

	items, total, err := s.posts.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, apperr.Unexpected("Failed to retrieve posts.", err)
	}
	if items == nil {
		items = []models.Post{}
	}
	for i := range items {
		render(&items[i])
	}

	return &Page[models.Post]{
		Data:        items,
		CurrentPage: page,
		LastPage:    lastPage(total, perPage),
		PerPage:     perPage,
		Total:       total,
	}, nil
}

// Get returns a single post. It does not require authentication.
func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, unexpected(err)
	}
	if p == nil {
		return nil, apperr.NotFound(msgPostNotFound)
	}
	render(p)
	return p, nil
}

// Create validates in, assigns a slug derived from the title and stores
// the post.
func (s *PostService) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	if err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in, false); err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:      in.Title.Value,
		Content:    in.Content.Value,
		Author:     in.Author.Value,
		CategoryID: in.CategoryID.Value,
	}

	created, err := writeWithSlug(ctx, s.slugs, p.Title, s.slugTaken(uuid.Nil), s.retries,
		func(candidate string) (*models.Post, error) {
			p.Slug = candidate
			return s.posts.Create(ctx, p)
		})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	slog.Info("post created", "id", created.ID, "slug", created.Slug)
	render(created)
	return created, nil
}

// Update applies the fields present in in to the post. The slug is
// recomputed only when the title changes.
func (s *PostService) Update(ctx context.Context, id uuid.UUID, in PostInput) (*models.Post, error) {
	if err := requirePrincipal(ctx); err != nil {
		return nil, err
	}

	existing, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, unexpected(err)
	}
	if existing == nil {
		return nil, apperr.NotFound(msgPostNotFound)
	}

	if err := s.validate(ctx, &in, true); err != nil {
		return nil, err
	}

	merged := *existing
	if in.Title.Set {
		merged.Title = in.Title.Value
	}
	if in.Content.Set {
		merged.Content = in.Content.Value
	}
	if in.Author.Set {
		merged.Author = in.Author.Value
	}
	if in.CategoryID.Set {
		merged.CategoryID = in.CategoryID.Value
	}

	var updated *models.Post
	if merged.Title != existing.Title {
		updated, err = writeWithSlug(ctx, s.slugs, merged.Title, s.slugTaken(id), s.retries,
			func(candidate string) (*models.Post, error) {
				merged.Slug = candidate
				return s.posts.Update(ctx, &merged)
			})
	} else {
		updated, err = s.posts.Update(ctx, &merged)
	}
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	if updated.Slug != existing.Slug {
		slog.Info("post slug changed", "id", id, "from", existing.Slug, "to", updated.Slug)
	}
	render(updated)
	return updated, nil
}

// Delete removes the post, freeing its slug.
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := requirePrincipal(ctx); err != nil {
		return err
	}

	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		return unexpected(err)
	}
	if !deleted {
		return apperr.NotFound(msgPostNotFound)
	}

	slog.Info("post deleted", "id", id)
	return nil
}

func (s *PostService) mapWriteError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(msgPostNotFound)
	case errors.Is(err, store.ErrInvalidReference):
		// The category was deleted between validation and the write.
		return apperr.Validation(apperr.Fields{"category_id": {"The selected category id is invalid."}})
	default:
		return unexpected(err)
	}
}

// render fills ContentHTML from the Markdown content. A rendering failure
// leaves it empty; the raw content is still served.
func render(p *models.Post) {
	out, err := markdown.ToHTML(p.Content)
	if err != nil {
		slog.Warn("render post content failed", "id", p.ID, "error", err)
		return
	}
	p.ContentHTML = out
}
