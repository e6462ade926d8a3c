// Package parser turns the raw text of a glossary document into a record:
// front matter, first-level title, second-level sections, and the body with
// relative links made absolute.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/starford/patterns-sync/internal/apperr"
	"github.com/starford/patterns-sync/internal/models"
)

var (
	// First line of the form "# Title"; [^\r\n] keeps CRLF files clean.
	titleRe = regexp.MustCompile(`(?m)^# ([^\r\n]*)`)
	// Every line of the form "## Heading".
	sectionRe = regexp.MustCompile(`(?m)^## ([^\r\n]*)(?:\r?\n|$)`)
	// Markdown link target with an optional quoted title: ](target "title")
	linkRe = regexp.MustCompile(`\]\(([^ )]+)(?: "([^"]*)")?\)`)
	// Leading blank run, up to and including its last line break.
	leadingBlankRe = regexp.MustCompile(`^\s*[\r\n]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	// "%" not starting a two-digit hex escape.
	strayPercentRe = regexp.MustCompile(`%([^0-9A-Fa-f]|[0-9A-Fa-f][^0-9A-Fa-f]|[0-9A-Fa-f]?$)`)
	schemeRe       = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)
)

// yamlFormats restricts front matter detection to "---" delimited YAML and
// decodes it with yaml.v3 so mapping order survives.
var yamlFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
}

// Section is one second-level heading and the text under it.
type Section struct {
	Key  string
	Body string
}

// Parse builds the record fields for a document whose links have already
// been rewritten. Field order is title, front matter, markdown, then one
// field per section. Front matter may replace the computed title; sections
// are merged last and replace any front matter field with the same
// lowercased key.
func Parse(data []byte) (*models.Record, error) {
	fm, body, err := SplitFrontMatter(data)
	if err != nil {
		return nil, err
	}
	FilterTags(fm)

	rec := models.NewRecord()
	rec.Set("title", models.String(ExtractTitle(body)))
	rec.Merge(fm)
	rec.Set("markdown", models.String(RemoveFirstLine(body)))

	out := rec.Lowercased()
	for _, s := range ExtractSections(body) {
		out.Set(s.Key, models.String(s.Body))
	}
	return out, nil
}

// SplitFrontMatter separates the leading YAML block from the body. Without
// a front matter block the mapping is empty and the body is the whole input.
func SplitFrontMatter(data []byte) (*models.Record, string, error) {
	var node yaml.Node
	body, err := frontmatter.Parse(bytes.NewReader(data), &node, yamlFormats...)
	if err != nil {
		return nil, "", fmt.Errorf("%w: front matter: %w", apperr.ErrParse, err)
	}

	v, err := models.FromYAML(&node)
	if err != nil {
		return nil, "", fmt.Errorf("%w: front matter: %w", apperr.ErrParse, err)
	}
	fm := v.Fields()
	if fm == nil {
		// Scalar or list front matter carries no fields.
		fm = models.NewRecord()
	}
	return fm, string(body), nil
}

// RemoveFirstLine drops the blank lines that usually separate front matter
// from content.
func RemoveFirstLine(s string) string {
	return leadingBlankRe.ReplaceAllString(s, "")
}

// ExtractTitle returns the text of the first "# " heading, or "".
func ExtractTitle(body string) string {
	m := titleRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractSections returns one Section per "## " heading, in document order.
// A section runs from the line after its heading to the next "## " heading
// or the end of the body.
func ExtractSections(body string) []Section {
	locs := sectionRe.FindAllStringSubmatchIndex(body, -1)
	out := make([]Section, 0, len(locs))
	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, Section{
			Key:  NormalizeKey(body[loc[2]:loc[3]]),
			Body: strings.TrimSpace(body[loc[1]:end]),
		})
	}
	return out
}

// NormalizeKey lowercases a heading and joins its words with underscores.
func NormalizeKey(heading string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(heading)), "_")
}

// FilterTags drops blank entries from a "tags" list. Any other shape of
// "tags" is left as is.
func FilterTags(fm *models.Record) {
	tags, ok := fm.Get("tags")
	if !ok || tags.Kind() != models.KindList {
		return
	}
	kept := make([]models.Value, 0, len(tags.Items()))
	for _, t := range tags.Items() {
		if s, ok := t.Str(); ok && strings.TrimSpace(s) == "" {
			continue
		}
		kept = append(kept, t)
	}
	fm.Set("tags", models.List(kept...))
}

// RewriteLinks resolves every markdown link target in text against base.
// Targets that already carry a scheme resolve to themselves; link titles
// are kept verbatim. A stray "%" in a target is kept literally and angle
// brackets are percent-encoded, as browsers do. Only a target that cannot
// be read as a URL at all (e.g. a malformed host) is an error.
func RewriteLinks(text, base string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base url %q: %w", apperr.ErrParse, base, err)
	}

	var firstErr error
	out := linkRe.ReplaceAllStringFunc(text, func(match string) string {
		if firstErr != nil {
			return match
		}
		m := linkRe.FindStringSubmatch(match)
		abs, err := resolveTarget(baseURL, m[1])
		if err != nil {
			firstErr = fmt.Errorf("%w: link target %q: %w", apperr.ErrParse, m[1], err)
			return match
		}
		if m[2] != "" {
			return fmt.Sprintf(`](%s "%s")`, abs, m[2])
		}
		return "](" + abs + ")"
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// resolveTarget resolves target against base. When target is not a valid
// RFC 3986 reference it retries with stray "%" and "<", ">" escaped and,
// for scheme-less targets, a colon in the first segment made relative.
func resolveTarget(base *url.URL, target string) (string, error) {
	ref, err := url.Parse(target)
	if err == nil {
		return base.ResolveReference(ref).String(), nil
	}

	escaped := strayPercentRe.ReplaceAllStringFunc(target, func(s string) string {
		return "%25" + s[1:]
	})
	// A second pass catches "%%" runs the first one consumed.
	escaped = strayPercentRe.ReplaceAllStringFunc(escaped, func(s string) string {
		return "%25" + s[1:]
	})
	escaped = strings.NewReplacer("<", "%3C", ">", "%3E").Replace(escaped)
	if first, _, _ := strings.Cut(escaped, "/"); strings.Contains(first, ":") &&
		!strings.ContainsAny(first, "?#") && !schemeRe.MatchString(escaped) {
		escaped = "./" + escaped
	}

	ref, retryErr := url.Parse(escaped)
	if retryErr != nil {
		return "", err
	}
	abs := base.ResolveReference(ref).String()
	if escaped != target && !strings.Contains(target, "%25") {
		// Stray percent signs stay literal.
		abs = strings.ReplaceAll(abs, "%25", "%")
	}
	return abs, nil
}
