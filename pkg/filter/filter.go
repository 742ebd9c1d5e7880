// Package filter provides ordered, composable per-field text transforms used
// to normalize extracted metadata before it is reported downstream.
package filter

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field names one metadata field a transform chain can target. Consumers
// define their field vocabulary as constants of (or aliases to) this type.
type Field string

// Transform rewrites a single field value. Transforms must be pure.
type Transform func(string) string

// Filter holds an ordered chain of transforms per field plus a chain applied
// to every field. Application order for one field is: per-field transforms in
// registration order, then the all-fields transforms.
type Filter struct {
	perField map[Field][]Transform
	all      []Transform
}

// New returns an empty filter that leaves values untouched.
func New() *Filter {
	return &Filter{perField: make(map[Field][]Transform)}
}

// NewBase returns the generic normalization filter applied to every field:
// non-breaking spaces become plain spaces, the string is NFKC-normalized,
// internal whitespace collapses to single spaces and the result is trimmed.
func NewBase() *Filter {
	f := New()
	f.ForAll(
		ReplaceNonBreakingSpaces,
		NormalizeUnicode,
		CollapseWhitespace,
		strings.TrimSpace,
	)
	return f
}

// Append registers transforms for one field, after any already present.
func (f *Filter) Append(field Field, transforms ...Transform) *Filter {
	f.perField[field] = append(f.perField[field], transforms...)
	return f
}

// ForAll registers transforms applied to every field, after the per-field
// chain.
func (f *Filter) ForAll(transforms ...Transform) *Filter {
	f.all = append(f.all, transforms...)
	return f
}

// Extend combines the receiver with another filter into a new one. The other
// filter's transforms take precedence: for each field they run before the
// receiver's, and both all-fields chains (other's first) run last. Neither
// input filter is modified. Extend is associative.
func (f *Filter) Extend(other *Filter) *Filter {
	merged := New()

	for field, chain := range other.perField {
		merged.perField[field] = append(merged.perField[field], chain...)
	}
	for field, chain := range f.perField {
		merged.perField[field] = append(merged.perField[field], chain...)
	}

	merged.all = append(merged.all, other.all...)
	merged.all = append(merged.all, f.all...)

	return merged
}

// Apply runs the field's transform chain over a value. An unknown input stays
// unknown, and a value that filters down to the empty string becomes unknown
// as well, so downstream equality checks never compare "" against nil.
func (f *Filter) Apply(field Field, value *string) *string {
	if value == nil {
		return nil
	}

	v := *value
	for _, t := range f.perField[field] {
		v = t(v)
	}
	for _, t := range f.all {
		v = t(v)
	}

	if v == "" {
		return nil
	}
	return &v
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseWhitespace folds runs of whitespace into a single space.
func CollapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// ReplaceNonBreakingSpaces turns U+00A0 into a regular space so that the
// whitespace collapse sees it.
func ReplaceNonBreakingSpaces(s string) string {
	return strings.ReplaceAll(s, "\u00a0", " ")
}

// NormalizeUnicode applies NFKC so visually identical strings from different
// sources compare equal.
func NormalizeUnicode(s string) string {
	return norm.NFKC.String(s)
}

// StripPatterns returns a transform that removes every match of the given
// patterns. Callers supply their own cleanup patterns; VideoSuffixes covers
// the common video-platform title noise.
func StripPatterns(patterns ...*regexp.Regexp) Transform {
	return func(s string) string {
		for _, p := range patterns {
			s = p.ReplaceAllString(s, "")
		}
		return s
	}
}

// VideoSuffixes matches bracketed title suffixes like "(Official Video)" or
// "[Official Audio]" that carry no track information.
var VideoSuffixes = regexp.MustCompile(`(?i)\s*[(\[](?:official\s+)?(?:music\s+)?(?:video|audio|visualizer|lyric(?:s)?(?:\s+video)?|hd|hq|4k)[)\]]\s*`)
