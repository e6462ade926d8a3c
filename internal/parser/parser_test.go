package parser

import (
	"errors"
	"testing"

	"github.com/starford/patterns-sync/internal/apperr"
	"github.com/starford/patterns-sync/internal/models"
)

func TestParse_FrontmatterAndSections(t *testing.T) {
	input := []byte("---\ntitle: Service Mesh\nstatus: Completed\ntags:\n  - networking\n---\n\n# Service Mesh\n\n## What it is\nA dedicated layer.\n\n## Problem it addresses\nTraffic.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKeys := []string{"title", "status", "tags", "markdown", "what_it_is", "problem_it_addresses"}
	keys := r.Keys()
	if len(keys) != len(wantKeys) {
		t.Fatalf("keys = %v, want %v", keys, wantKeys)
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], wantKeys[i])
		}
	}
	if r.String("what_it_is") != "A dedicated layer." {
		t.Errorf("what_it_is = %q", r.String("what_it_is"))
	}
	if r.String("problem_it_addresses") != "Traffic." {
		t.Errorf("problem_it_addresses = %q", r.String("problem_it_addresses"))
	}
	if md := r.String("markdown"); md[:14] != "# Service Mesh" {
		t.Errorf("markdown should start at the heading, got %q", md)
	}
}

func TestParse_SectionSplitting(t *testing.T) {
	r, err := Parse([]byte("# Title\n\n## What It Is\nFoo.\n\n## Example\nBar.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.String("title") != "Title" {
		t.Errorf("title = %q", r.String("title"))
	}
	if r.String("what_it_is") != "Foo." {
		t.Errorf("what_it_is = %q", r.String("what_it_is"))
	}
	if r.String("example") != "Bar." {
		t.Errorf("example = %q", r.String("example"))
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := "\n# Just a heading\nSome text.\n"
	fm, body, err := SplitFrontMatter([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Len() != 0 {
		t.Errorf("expected empty front matter, got %v", fm.Keys())
	}
	if RemoveFirstLine(body) != "# Just a heading\nSome text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_InvalidYAMLIsFatal(t *testing.T) {
	_, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if err == nil {
		t.Fatal("expected error for invalid front matter")
	}
	if !errors.Is(err, apperr.ErrParse) {
		t.Errorf("error should wrap ErrParse: %v", err)
	}
}

func TestParse_SectionOverridesFrontmatter(t *testing.T) {
	r, err := Parse([]byte("---\nTitle: \"A\"\n---\n# Heading\n\n## Title\nFrom section.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.String("title") != "From section." {
		t.Errorf("title = %q, want section value", r.String("title"))
	}
	if _, ok := r.Get("Title"); ok {
		t.Error("uppercase key should not survive")
	}
}

func TestParse_FrontmatterOverridesComputedTitle(t *testing.T) {
	r, err := Parse([]byte("---\nTitle: FM\n---\n# Heading\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.String("title") != "FM" {
		t.Errorf("title = %q, want %q", r.String("title"), "FM")
	}
	if r.Keys()[0] != "title" {
		t.Errorf("title should stay first, keys = %v", r.Keys())
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"first line", "# Hello\ntext", "Hello"},
		{"later line", "intro\n# Later\n# Second", "Later"},
		{"second level only", "## Not a title\n", ""},
		{"no heading", "plain text", ""},
		{"crlf", "# Windows\r\nbody", "Windows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.body); got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractSections_KeepsSubheadings(t *testing.T) {
	body := "## How  It\tWorks\nStep one.\n### Detail\nMore.\n## Related\n- x\n"
	got := ExtractSections(body)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Key != "how_it_works" {
		t.Errorf("key = %q", got[0].Key)
	}
	if got[0].Body != "Step one.\n### Detail\nMore." {
		t.Errorf("body = %q", got[0].Body)
	}
	if got[1].Key != "related" || got[1].Body != "- x" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestExtractSections_HeadingAtEnd(t *testing.T) {
	got := ExtractSections("text\n## Empty")
	if len(got) != 1 || got[0].Key != "empty" || got[0].Body != "" {
		t.Errorf("sections = %+v", got)
	}
}

func TestFilterTags(t *testing.T) {
	fm := models.NewRecord()
	fm.Set("tags", models.Strings("a", "", "  ", "b"))
	FilterTags(fm)

	tags, _ := fm.Get("tags")
	items := tags.Items()
	if len(items) != 2 {
		t.Fatalf("tags = %v, want [a b]", items)
	}
	if s, _ := items[0].Str(); s != "a" {
		t.Errorf("tags[0] = %q", s)
	}
	if s, _ := items[1].Str(); s != "b" {
		t.Errorf("tags[1] = %q", s)
	}
}

func TestFilterTags_NonListUntouched(t *testing.T) {
	fm := models.NewRecord()
	fm.Set("tags", models.String("  "))
	FilterTags(fm)

	tags, _ := fm.Get("tags")
	if s, ok := tags.Str(); !ok || s != "  " {
		t.Errorf("tags = %+v, want untouched string", tags)
	}
}

func TestRewriteLinks(t *testing.T) {
	base := "https://glossary.cncf.io/en/widget.md"
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative with title", `see [x](./foo.md "t")`, `see [x](https://glossary.cncf.io/en/foo.md "t")`},
		{"absolute", `[x](https://example.com/y)`, `[x](https://example.com/y)`},
		{"parent dir", `[x](../contribute/)`, `[x](https://glossary.cncf.io/contribute/)`},
		{"root relative", `[x](/service-mesh/)`, `[x](https://glossary.cncf.io/service-mesh/)`},
		{"fragment", `[x](#top)`, `[x](https://glossary.cncf.io/en/widget.md#top)`},
		{"no links", `plain (text)`, `plain (text)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RewriteLinks(tt.in, base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RewriteLinks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteLinks_LenientTargets(t *testing.T) {
	const base = "https://glossary.cncf.io/en/widget.md"
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"stray percent", `[x](./100%.md)`, `[x](https://glossary.cncf.io/en/100%.md)`},
		{"format verb", "`[%s](%s)`", "`[%s](https://glossary.cncf.io/en/%s)`"},
		{"trailing percent", `[x](50%)`, `[x](https://glossary.cncf.io/en/50%)`},
		{"angle brackets", `[x](<https://example.com/y>)`, `[x](https://glossary.cncf.io/en/%3Chttps://example.com/y%3E)`},
		{"percent in fragment", `[x](#50%)`, `[x](https://glossary.cncf.io/en/widget.md#50%)`},
		{"valid escape kept", `[x](./a%20b.md)`, `[x](https://glossary.cncf.io/en/a%20b.md)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RewriteLinks(tt.in, base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RewriteLinks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteLinks_MalformedHost(t *testing.T) {
	_, err := RewriteLinks("[x](http://[::1)", "https://glossary.cncf.io/en/a.md")
	if !errors.Is(err, apperr.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  What It   Is "); got != "what_it_is" {
		t.Errorf("NormalizeKey() = %q", got)
	}
}
