// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"postcms/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, description, slug, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner rowScanner) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Exists reports whether a category with the given ID exists.
func (s *CategoryStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category exists: %w", err)
	}
	return exists, nil
}

// SlugExists reports whether any category other than excludeID holds slug.
// Pass uuid.Nil to check the whole collection.
func (s *CategoryStore) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if excludeID == uuid.Nil {
		err = s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug,
		).Scan(&exists)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`, slug, excludeID,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("category slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, description, slug)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		c.Name, c.Description, c.Slug,
	)
	result, err := scanCategory(row)
	if violates(err, codeUniqueViolation, "categories_slug_key") {
		return nil, fmt.Errorf("create category: %w", ErrDuplicateSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update writes every field of c, slug included, in a single statement.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, description = $2, slug = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+categoryColumns,
		c.Name, c.Description, c.Slug, c.ID,
	)
	result, err := scanCategory(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("update category: %w", ErrNotFound)
	case violates(err, codeUniqueViolation, "categories_slug_key"):
		return nil, fmt.Errorf("update category: %w", ErrDuplicateSlug)
	case err != nil:
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// Delete removes a category by ID and reports whether a row was removed.
// Categories that still have posts are rejected with ErrInUse.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if violates(err, codeForeignKeyViolation, "") {
		return false, fmt.Errorf("delete category: %w", ErrInUse)
	}
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return n > 0, nil
}
