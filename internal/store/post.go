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
	"golang.org/x/sync/errgroup"

	"postcms/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, content, author, slug, category_id, created_at, updated_at`

func scanPost(scanner rowScanner) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Content, &p.Author, &p.Slug,
		&p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of posts in creation order together with the total
// number of posts. The page and the count are queried concurrently.
func (s *PostStore) List(ctx context.Context, limit, offset int) ([]models.Post, int, error) {
	var (
		items []models.Post
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.QueryRowContext(gctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
			return fmt.Errorf("count posts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.db.QueryContext(gctx, `
			SELECT `+postColumns+`
			FROM posts
			ORDER BY created_at, id
			LIMIT $1 OFFSET $2
		`, limit, offset)
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPost(rows)
			if err != nil {
				return fmt.Errorf("scan post: %w", err)
			}
			items = append(items, *p)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// SlugExists reports whether any post other than excludeID holds slug.
// Pass uuid.Nil to check the whole collection.
func (s *PostStore) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if excludeID == uuid.Nil {
		err = s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug,
		).Scan(&exists)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, excludeID,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("post slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new post and returns it with the generated ID.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, content, author, slug, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+postColumns,
		p.Title, p.Content, p.Author, p.Slug, p.CategoryID,
	)
	result, err := scanPost(row)
	switch {
	case violates(err, codeUniqueViolation, "posts_slug_key"):
		return nil, fmt.Errorf("create post: %w", ErrDuplicateSlug)
	case violates(err, codeForeignKeyViolation, ""):
		return nil, fmt.Errorf("create post: %w", ErrInvalidReference)
	case err != nil:
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update writes every field of p, slug included, in a single statement so
// a rename is applied completely or not at all.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE posts SET
			title = $1, content = $2, author = $3, slug = $4,
			category_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+postColumns,
		p.Title, p.Content, p.Author, p.Slug, p.CategoryID, p.ID,
	)
	result, err := scanPost(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("update post: %w", ErrNotFound)
	case violates(err, codeUniqueViolation, "posts_slug_key"):
		return nil, fmt.Errorf("update post: %w", ErrDuplicateSlug)
	case violates(err, codeForeignKeyViolation, ""):
		return nil, fmt.Errorf("update post: %w", ErrInvalidReference)
	case err != nil:
		return nil, fmt.Errorf("update post: %w", err)
	}
	return result, nil
}

// Delete removes a post by ID and reports whether a row was removed.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}
