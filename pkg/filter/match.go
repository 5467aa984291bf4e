// Package filter evaluates free-form filter expressions such as
// `entity:hospital AND year:>=2020 AND NOT commercial` against records.
//
// Expressions combine clauses with AND, OR, NOT and parentheses. A clause is
// either field:value, where value may start with >=, <=, > or <, or a bare
// term matched against every searchable attribute. Field semantics are left
// to a Resolver supplied per record. Evaluation never fails: incomplete input
// such as a half-typed expression degrades to the closest sensible filter.
package filter

import "strings"

// Normalize lowercases and trims filter text.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Matches reports whether the record behind r satisfies filterText.
// Empty or whitespace-only text matches every record.
func Matches(filterText string, r Resolver, opts ...Option) bool {
	text := Normalize(filterText)
	if text == "" {
		return true
	}
	return Parse(text, opts...).Match(r)
}

// Apply returns the records matching filterText in their original order.
// The text is normalized and parsed once for the whole collection. Empty text
// returns records itself.
func Apply[T any](records []T, filterText string, resolve func(T) Resolver, opts ...Option) []T {
	text := Normalize(filterText)
	if text == "" {
		return records
	}

	f := Parse(text, opts...)
	matched := make([]T, 0, len(records))
	for _, rec := range records {
		if f.Match(resolve(rec)) {
			matched = append(matched, rec)
		}
	}
	return matched
}
