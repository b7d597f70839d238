package school

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`\W+`)

// SourceKey is the natural key of a school within a source, stable across
// re-imports: "<source>:<brin or no-brin>:<slugified name>".
func SourceKey(source, brin, name string) string {
	b := strings.TrimSpace(brin)
	if b == "" {
		b = "no-brin"
	}
	slug := nonWord.ReplaceAllString(strings.TrimSpace(strings.ToLower(name)), "-")
	return source + ":" + b + ":" + slug
}

// SourceKey returns the natural key of s within its source.
func (s *School) SourceKey() string {
	return SourceKey(s.f.Source, s.f.BRIN, s.f.Name)
}
