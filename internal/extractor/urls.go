package extractor

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	slugRe          = regexp.MustCompile(`/([^/]+)\.[^./]+$`)
	leadingParentRe = regexp.MustCompile(`^(\.\./)+`)
)

// Rule rewrites a content-relative path into a URL. A path the pattern does
// not match passes through unchanged.
type Rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// NewRule compiles pattern. replacement may reference capture groups as ${1}.
func NewRule(pattern, replacement string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("extractor: compile rule %q: %w", pattern, err)
	}
	return Rule{pattern: re, replacement: replacement}, nil
}

// Apply rewrites rel.
func (r Rule) Apply(rel string) string {
	if r.pattern == nil {
		return rel
	}
	return r.pattern.ReplaceAllString(rel, r.replacement)
}

// Slug returns the file name stem of rel, or "" when the name has no
// extension.
func Slug(rel string) string {
	m := slugRe.FindStringSubmatch("/" + rel)
	if m == nil {
		return ""
	}
	return m[1]
}

// LinkBase is the URL relative links in the document at rel resolve against.
func LinkBase(baseURL, rel string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + leadingParentRe.ReplaceAllString(rel, "")
}

// Excluded reports whether rel is a partial (any path segment starting
// with "_") that must not become a record.
func Excluded(rel string) bool {
	for _, seg := range strings.Split(path.Clean(rel), "/") {
		if strings.HasPrefix(seg, "_") {
			return true
		}
	}
	return false
}
