package slug

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/quick"
)

// TestGenerate exercises the slug generator with a broad range of inputs
// covering typical titles, special characters, unicode, edge cases, and
// boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Hello World 2026", want: "hello-world-2026"},
		{name: "already lowercase", input: "already lowercase", want: "already-lowercase"},
		{name: "single word", input: "GoLang", want: "golang"},

		// --- Special characters ---
		{name: "punctuation marks", input: "Hello, World! How's it going?", want: "hello-world-hows-it-going"},
		{name: "ampersand dropped, at sign spelled out", input: "Rock & Roll @ the Arena", want: "rock-roll-at-the-arena"},
		{name: "parentheses and brackets", input: "Version (2.0) [Beta]", want: "version-20-beta"},
		{name: "slashes and pipes", input: "Frontend/Backend | Full Stack", want: "frontendbackend-full-stack"},
		{name: "hash and dollar", input: "Issue #42 costs $100", want: "issue-42-costs-100"},
		{name: "plus and equals", input: "1 + 1 = 2", want: "1-1-2"},
		{name: "underscores become hyphens", input: "snake_case_title", want: "snake-case-title"},

		// --- Unicode and accented characters ---
		{name: "french accents folded", input: "Café résumé naïve", want: "cafe-resume-naive"},
		{name: "german umlauts folded", input: "Über die Brücke", want: "uber-die-brucke"},
		{name: "sharp s expanded", input: "Größe", want: "grosse"},
		{name: "nordic letters", input: "Smørrebrød", want: "smorrebrod"},
		{name: "polish letters", input: "Łódź", want: "lodz"},
		{name: "emoji stripped", input: "Hello 🌍 World", want: "hello-world"},
		{name: "cjk stripped", input: "Hello 世界", want: "hello"},

		// --- Whitespace handling ---
		{name: "leading and trailing spaces", input: "  hello world  ", want: "hello-world"},
		{name: "multiple consecutive spaces collapsed", input: "hello    world", want: "hello-world"},
		{name: "tabs collapsed", input: "hello\tworld", want: "hello-world"},
		{name: "newlines collapsed", input: "hello\nworld", want: "hello-world"},
		{name: "no-break space separates", input: "Hello\u00a0World", want: "hello-world"},
		{name: "ideographic space separates", input: "Hello\u3000World", want: "hello-world"},
		{name: "thin space separates", input: "Hello\u2009World", want: "hello-world"},
		{name: "mixed unicode spaces collapsed", input: "Hello \u00a0\u2003 World", want: "hello-world"},

		// --- Hyphen handling ---
		{name: "leading hyphens", input: "---hello world", want: "hello-world"},
		{name: "trailing hyphens", input: "hello world---", want: "hello-world"},
		{name: "multiple hyphens between words", input: "hello---world", want: "hello-world"},
		{name: "single hyphen preserved", input: "well-known fact", want: "well-known-fact"},
		{name: "hyphens and spaces mixed", input: "  --hello -- world--  ", want: "hello-world"},

		// --- Edge cases ---
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
		{name: "only hyphens", input: "-----", want: ""},
		{name: "only special characters", input: "!#$%^&*()", want: ""},
		{name: "lone at sign", input: "@", want: "at"},
		{name: "single character", input: "A", want: "a"},

		// --- Numbers ---
		{name: "version number", input: "Version 2.0.1", want: "version-201"},
		{name: "date-like string", input: "2026-02-25", want: "2026-02-25"},

		// --- Realistic blog titles ---
		{name: "tech blog title", input: "How to Deploy Go Apps on Kubernetes (2026 Edition)", want: "how-to-deploy-go-apps-on-kubernetes-2026-edition"},
		{name: "question title", input: "What is HTMX? A Complete Guide", want: "what-is-htmx-a-complete-guide"},
		{name: "colon separated title", input: "Go: The Complete Developer Guide", want: "go-the-complete-developer-guide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "my-blog-post-2026", "a", "123"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

// occupied returns an ExistsFunc backed by a fixed set of taken slugs.
func occupied(taken ...string) ExistsFunc {
	set := make(map[string]bool, len(taken))
	for _, s := range taken {
		set[s] = true
	}
	return func(_ context.Context, candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestUnique(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		source   string
		taken    []string
		want     string
	}{
		{name: "free base", source: "Hello World", want: "hello-world"},
		{name: "base taken", source: "Hello World", taken: []string{"hello-world"}, want: "hello-world-1"},
		{
			name:   "several suffixes taken",
			source: "Hello World",
			taken:  []string{"hello-world", "hello-world-1", "hello-world-2"},
			want:   "hello-world-3",
		},
		{
			name:   "gap is filled",
			source: "Hello World",
			taken:  []string{"hello-world", "hello-world-2"},
			want:   "hello-world-1",
		},
		{name: "unrelated slugs ignored", source: "Go", taken: []string{"golang", "go-1"}, want: "go"},
		{name: "empty base uses fallback", fallback: "post", source: "?!?", want: "post"},
		{name: "fallback also probes", fallback: "post", source: "", taken: []string{"post"}, want: "post-1"},
		{name: "default fallback", source: "...", want: DefaultFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Generator{Fallback: tt.fallback}
			got, err := g.Unique(context.Background(), tt.source, occupied(tt.taken...))
			if err != nil {
				t.Fatalf("Unique: %v", err)
			}
			if got != tt.want {
				t.Errorf("Unique(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

// TestUnique_Sequence verifies that repeated assignment of the same title
// yields base, base-1, base-2, … in order.
func TestUnique_Sequence(t *testing.T) {
	set := map[string]bool{}
	exists := func(_ context.Context, candidate string) (bool, error) {
		return set[candidate], nil
	}

	want := []string{"hello-world", "hello-world-1", "hello-world-2", "hello-world-3", "hello-world-4"}
	g := Generator{Fallback: "post"}
	for i, w := range want {
		got, err := g.Unique(context.Background(), "Hello World", exists)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if got != w {
			t.Errorf("create %d: got %q, want %q", i, got, w)
		}
		set[got] = true
	}
}

// TestUnique_ExcludesOwner verifies that a record being renamed does not
// collide with its own current slug.
func TestUnique_ExcludesOwner(t *testing.T) {
	owners := map[string]int{"hello-world": 1, "hello-world-1": 2}
	existsExcluding := func(id int) ExistsFunc {
		return func(_ context.Context, candidate string) (bool, error) {
			owner, ok := owners[candidate]
			return ok && owner != id, nil
		}
	}

	g := Generator{}
	got, err := g.Unique(context.Background(), "Hello World", existsExcluding(2))
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if got != "hello-world-1" {
		t.Errorf("record 2 keeps its slug: got %q, want %q", got, "hello-world-1")
	}

	got, _ = g.Unique(context.Background(), "Hello World", existsExcluding(1))
	if got != "hello-world" {
		t.Errorf("record 1 keeps its slug: got %q, want %q", got, "hello-world")
	}
}

func TestUnique_ProbeError(t *testing.T) {
	boom := errors.New("connection reset")
	g := Generator{}
	_, err := g.Unique(context.Background(), "Hello", func(context.Context, string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected probe error to propagate, got %v", err)
	}
}

func TestUnique_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := Generator{}
	_, err := g.Unique(ctx, "Hello", occupied())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

var validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// TestUnique_AlwaysValid checks that any input yields a non-empty, lowercase,
// hyphen-normalized token.
func TestUnique_AlwaysValid(t *testing.T) {
	g := Generator{Fallback: "post"}
	check := func(s string) bool {
		got, err := g.Unique(context.Background(), s, occupied("post"))
		return err == nil && validSlug.MatchString(got)
	}
	if err := quick.Check(check, nil); err != nil {
		t.Error(err)
	}
}
