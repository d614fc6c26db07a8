// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and collision-free slug assignment within a collection.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFallback is used when neither the source text nor the generator
// yields a usable base slug.
const DefaultFallback = "item"

var (
	// nonWord matches anything that isn't a letter, digit, whitespace, hyphen or underscore.
	nonWord = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	// separators collapses runs of whitespace, underscores and hyphens into one hyphen.
	separators = regexp.MustCompile(`[\s_-]+`)

	// ligatures covers letters that have no canonical decomposition.
	ligatures = strings.NewReplacer(
		"ß", "ss", "æ", "ae", "Æ", "ae", "œ", "oe", "Œ", "oe",
		"ø", "o", "Ø", "o", "đ", "d", "Đ", "d", "ł", "l", "Ł", "l",
		"þ", "th", "Þ", "th", "@", " at ",
	)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// Diacritics are folded to their ASCII base letter, punctuation is dropped
// and runs of separators collapse into a single hyphen. The result may be
// empty when the input holds no letters or digits.
func Generate(s string) string {
	result := strings.Map(spaceToASCII, s)
	result = ligatures.Replace(result)
	result = foldASCII(result)
	result = strings.ToLower(strings.TrimSpace(result))
	result = nonWord.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// spaceToASCII maps every Unicode space to ' ' so it separates words.
func spaceToASCII(r rune) rune {
	if unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) {
		return ' '
	}
	return r
}

// foldASCII strips combining marks after canonical decomposition, so "é"
// becomes "e". Input that fails to transform is returned unchanged.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ExistsFunc reports whether candidate is already taken in the collection
// being probed. Update paths bind the id of the record being edited so the
// record never collides with itself.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Generator assigns unique slugs within one collection.
type Generator struct {
	// Fallback replaces an empty base slug, e.g. for all-punctuation titles.
	Fallback string
}

// Unique derives the base slug from source and probes base, base-1, base-2, …
// until exists reports a free candidate. The result depends only on source
// and the occupied set seen through exists.
func (g Generator) Unique(ctx context.Context, source string, exists ExistsFunc) (string, error) {
	base := Generate(source)
	if base == "" {
		base = g.fallback()
	}

	candidate := base
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug probe %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

func (g Generator) fallback() string {
	if fb := Generate(g.Fallback); fb != "" {
		return fb
	}
	return DefaultFallback
}
