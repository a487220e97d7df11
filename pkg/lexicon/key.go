package lexicon

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// KeyFunc is a single step turning a spelling into an index key.
type KeyFunc func(string) string

// Keyer applies a pipeline of key steps. The same Keyer is used to build an
// Index and to look live token text up in it, so both sides always agree.
type Keyer struct {
	steps []KeyFunc
}

// NewKeyer creates a keyer with a custom pipeline.
func NewKeyer(steps ...KeyFunc) *Keyer {
	return &Keyer{steps: steps}
}

// KeyerFor returns the key pipeline of a category.
//
// Word categories are canonicalized, folded and lowercased; types also lose
// one trailing "s" so singular and plural share a key. Operators are only
// canonicalized.
func KeyerFor(c Category) *Keyer {
	switch c {
	case Operator:
		return NewKeyer(Canonical)
	case Type:
		return NewKeyer(Canonical, Fold, Lowercase, TrimPlural)
	default:
		return NewKeyer(Canonical, Fold, Lowercase)
	}
}

// Key applies all configured steps in order.
func (k *Keyer) Key(s string) string {
	for _, step := range k.steps {
		s = step(s)
	}
	return s
}

// Canonical composes s to NFC, so "e" followed by a combining acute accent
// folds like a precomposed "é".
func Canonical(s string) string {
	return norm.NFC.String(s)
}

// Lowercase converts to lowercase.
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// TrimPlural strips a single trailing "s".
func TrimPlural(s string) string {
	return strings.TrimSuffix(s, "s")
}
