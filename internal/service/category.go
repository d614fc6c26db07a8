package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"postcms/internal/apperr"
	"postcms/internal/models"
	"postcms/internal/slug"
	"postcms/internal/store"
)

const msgCategoryNotFound = "Category not found."

// CategoryRepository is the persistence the category service needs.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryInput carries category fields from a create or update request.
type CategoryInput struct {
	Name        Field[string] `json:"name"`
	Description Field[string] `json:"description"`
}

// CategoryService implements the category use cases.
type CategoryService struct {
	categories CategoryRepository
	slugs      slug.Generator
	retries    int
}

// NewCategoryService creates a category service.
func NewCategoryService(categories CategoryRepository, retries int) *CategoryService {
	if retries < 0 {
		retries = DefaultSlugRetries
	}
	return &CategoryService{
		categories: categories,
		slugs:      slug.Generator{Fallback: "category"},
		retries:    retries,
	}
}

func (s *CategoryService) slugTaken(exclude uuid.UUID) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.categories.SlugExists(ctx, candidate, exclude)
	}
}

func validateCategory(in *CategoryInput, partial bool) error {
	v := newValidator()
	v.requiredString("name", &in.Name, maxStringLen, partial)
	v.nullableString("description", &in.Description, 0)
	return v.err()
}

// description converts the input into the nullable column value.
func description(f Field[string]) *string {
	if !f.Present() {
		return nil
	}
	d := f.Value
	return &d
}

// List returns every category. Categories are not paginated.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperr.Unexpected("Failed to retrieve categories.", err)
	}
	if items == nil {
		items = []models.Category{}
	}
	return items, nil
}

// Get returns a single category.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, unexpected(err)
	}
	if c == nil {
		return nil, apperr.NotFound(msgCategoryNotFound)
	}
	return c, nil
}

// Create validates in, assigns a slug derived from the name and stores the
// category.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	if err := validateCategory(&in, false); err != nil {
		return nil, err
	}

	c := &models.Category{
		Name:        in.Name.Value,
		Description: description(in.Description),
	}

	created, err := writeWithSlug(ctx, s.slugs, c.Name, s.slugTaken(uuid.Nil), s.retries,
		func(candidate string) (*models.Category, error) {
			c.Slug = candidate
			return s.categories.Create(ctx, c)
		})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	slog.Info("category created", "id", created.ID, "slug", created.Slug)
	return created, nil
}

// Update applies the fields present in in to the category.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	if err := requirePrincipal(ctx); err != nil {
		return nil, err
	}

	existing, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, unexpected(err)
	}
	if existing == nil {
		return nil, apperr.NotFound(msgCategoryNotFound)
	}

	if err := validateCategory(&in, true); err != nil {
		return nil, err
	}

	merged := *existing
	if in.Name.Set {
		merged.Name = in.Name.Value
	}
	if in.Description.Set {
		merged.Description = description(in.Description)
	}

	var updated *models.Category
	if merged.Name != existing.Name {
		updated, err = writeWithSlug(ctx, s.slugs, merged.Name, s.slugTaken(id), s.retries,
			func(candidate string) (*models.Category, error) {
				merged.Slug = candidate
				return s.categories.Update(ctx, &merged)
			})
	} else {
		updated, err = s.categories.Update(ctx, &merged)
	}
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	if updated.Slug != existing.Slug {
		slog.Info("category slug changed", "id", id, "from", existing.Slug, "to", updated.Slug)
	}
	return updated, nil
}

// Delete removes the category. Categories that still have posts cannot be
// deleted.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := requirePrincipal(ctx); err != nil {
		return err
	}

	deleted, err := s.categories.Delete(ctx, id)
	if errors.Is(err, store.ErrInUse) {
		return apperr.Conflict("Category has posts and cannot be deleted.", err)
	}
	if err != nil {
		return unexpected(err)
	}
	if !deleted {
		return apperr.NotFound(msgCategoryNotFound)
	}

	slog.Info("category deleted", "id", id)
	return nil
}

func (s *CategoryService) mapWriteError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgCategoryNotFound)
	}
	return unexpected(err)
}
