// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts post content from Markdown into sanitized HTML.
// Rendering uses goldmark; the output is passed through a bluemonday policy
// so raw HTML in post bodies can never inject scripts or event handlers.
package markdown

import (
	"bytes"
	"regexp"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // raw HTML is cleaned afterwards by the policy
	),
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once

	classNames = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
	headingIDs = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// sanitizer returns the policy applied to rendered output: user-generated
// content rules plus the class names emitted by the syntax highlighter and
// the generated heading anchors.
func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Matching(classNames).OnElements("pre", "code", "span")
		policy.AllowAttrs("id").Matching(headingIDs).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		policy.RequireNoFollowOnLinks(true)
	})
	return policy
}

// ToHTML converts Markdown source into sanitized HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return sanitizer().Sanitize(buf.String()), nil
}
