// Package names folds person names to a comparison key and indexes values by it.
// Matching is insensitive to case, diacritics and repeated whitespace.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key returns the canonical comparison key of name. Transformers and casers are
// stateful, so each call builds its own.
func Key(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}

// Index groups values under the key of their name.
type Index[T any] struct {
	byKey map[string][]T
}

func NewIndex[T any]() *Index[T] {
	return &Index[T]{byKey: make(map[string][]T)}
}

func (i *Index[T]) Add(name string, v T) {
	k := Key(name)
	if k == "" {
		return
	}
	i.byKey[k] = append(i.byKey[k], v)
}

func (i *Index[T]) Has(name string) bool {
	return len(i.byKey[Key(name)]) > 0
}

func (i *Index[T]) Lookup(name string) []T {
	return i.byKey[Key(name)]
}

// Unique returns the only value stored under name. It reports the number of matches
// so callers can tell "missing" from "ambiguous".
func (i *Index[T]) Unique(name string) (T, int) {
	var zero T
	matches := i.byKey[Key(name)]
	if len(matches) != 1 {
		return zero, len(matches)
	}
	return matches[0], 1
}
