// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service implements the post and category use cases: validation,
// authorization, slug assignment and mapping of storage failures onto the
// apperr taxonomy.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"postcms/internal/apperr"
	"postcms/internal/auth"
	"postcms/internal/slug"
	"postcms/internal/store"
)

// DefaultSlugRetries is how many times a write is retried after losing a
// race for a slug.
const DefaultSlugRetries = 3

// Messages shared by both resources.
const (
	msgUnauthenticated = "Unauthenticated."
	msgServerError     = "Server error."
	msgSlugConflict    = "Could not assign a unique slug, please retry."
)

// errSlugExhausted is returned by writeWithSlug when every attempt lost
// the race for its slug.
var errSlugExhausted = errors.New("slug retries exhausted")

// requirePrincipal returns an authorization error when ctx carries no
// authenticated principal.
func requirePrincipal(ctx context.Context) error {
	if auth.PrincipalFromContext(ctx) == nil {
		return apperr.Authorization(msgUnauthenticated)
	}
	return nil
}

// writeWithSlug probes for a free slug derived from source and hands it to
// write. When write reports that another writer took the slug in between,
// the probe runs again against the updated collection, up to retries more
// times.
func writeWithSlug[T any](ctx context.Context, gen slug.Generator, source string, exists slug.ExistsFunc, retries int, write func(slug string) (T, error)) (T, error) {
	var zero T
	for attempt := 0; attempt <= retries; attempt++ {
		candidate, err := gen.Unique(ctx, source, exists)
		if err != nil {
			return zero, err
		}

		rec, err := write(candidate)
		if errors.Is(err, store.ErrDuplicateSlug) {
			slog.Warn("slug taken during write, retrying",
				"slug", candidate, "attempt", attempt+1, "max_retries", retries)
			continue
		}
		return rec, err
	}
	return zero, errSlugExhausted
}

// unexpected wraps err unless it already carries a kind.
func unexpected(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, errSlugExhausted) || errors.Is(err, store.ErrDuplicateSlug) {
		return apperr.Conflict(msgSlugConflict, err)
	}
	return apperr.Unexpected(msgServerError, err)
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Pagination defaults.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// normalizePage clamps the requested page and page size. The page is
// capped so that (page-1)*perPage fits in an int.
func normalizePage(page, perPage int) (int, int) {
	switch {
	case perPage < 1:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / perPage; page > maxPage {
		page = maxPage
	}
	return page, perPage
}

func lastPage(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
