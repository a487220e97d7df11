package lexicon

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrNoVocabulary is returned when every category is empty and there is
// nothing to classify.
var ErrNoVocabulary = errors.Base("no vocabulary loaded")

// Registry holds the vocabulary of each category as an ordered list of
// canonical spellings. It is filled once by a loader and then only read.
type Registry struct {
	entries map[Category][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Category][]string, len(Categories))}
}

// Set replaces the vocabulary of c. Verbatim duplicates are dropped, keeping
// the first occurrence; spellings that only differ by accents or case are
// kept so the compiled pattern still matches each of them.
func (r *Registry) Set(c Category, entries []string) error {
	if !c.Valid() {
		return errors.Errorf("%w: %q", ErrUnknownCategory, c)
	}

	seen := make(map[string]struct{}, len(entries))
	kept := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		kept = append(kept, entry)
	}

	r.entries[c] = kept
	return nil
}

// Add appends entries to the vocabulary of c, with the same rules as Set.
func (r *Registry) Add(c Category, entries ...string) error {
	merged := append(append([]string{}, r.entries[c]...), entries...)
	return r.Set(c, merged)
}

// Entries returns a copy of the vocabulary of c in input order.
func (r *Registry) Entries(c Category) []string {
	return append([]string(nil), r.entries[c]...)
}

// Len returns the number of entries of c.
func (r *Registry) Len(c Category) int {
	return len(r.entries[c])
}

// Total returns the number of entries across all categories.
func (r *Registry) Total() int {
	total := 0
	for _, entries := range r.entries {
		total += len(entries)
	}
	return total
}

// Collisions returns, for c, the groups of distinct spellings that share an
// index key. They are legal; the index keeps one membership per group.
func (r *Registry) Collisions(c Category) [][]string {
	keyer := KeyerFor(c)
	groups := make(map[string][]string)
	var order []string
	for _, entry := range r.entries[c] {
		key := keyer.Key(entry)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry)
	}

	var out [][]string
	for _, key := range order {
		if len(groups[key]) > 1 {
			out = append(out, groups[key])
		}
	}
	return out
}

// Validate fails with ErrNoVocabulary when every category is empty, and logs
// empty categories, whose patterns will never match.
func (r *Registry) Validate(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	if r.Total() == 0 {
		return errors.WithStack(ErrNoVocabulary)
	}

	for _, c := range Categories {
		n := r.Len(c)
		if n == 0 {
			logger.Warn().Str("category", string(c)).Msg("empty vocabulary, category will never match")
			continue
		}
		logger.Debug().Str("category", string(c)).Int("entries", n).Int("collisions", len(r.Collisions(c))).Msg("vocabulary ready")
	}

	return nil
}
