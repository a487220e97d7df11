package lexicon

import (
	"bytes"
	"context"
	"sort"

	"github.com/blevesearch/vellum"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Index holds the keys of one vocabulary in an FST for O(1)-per-rune lookups.
// It is never modified after construction and is safe for concurrent readers.
type Index struct {
	fst   *vellum.FST
	keyer *Keyer
	size  int
}

// NewIndex builds an index over entries. Each key maps to the position of the
// first entry producing it; later entries with the same key collapse silently.
func NewIndex(entries []string, keyer *Keyer) (*Index, error) {
	first := make(map[string]uint64, len(entries))
	for i, entry := range entries {
		key := keyer.Key(entry)
		if _, ok := first[key]; !ok {
			first[key] = uint64(i)
		}
	}

	idx := &Index{keyer: keyer, size: len(first)}
	if len(first) == 0 {
		return idx, nil
	}

	keys := make([]string, 0, len(first))
	for key := range first {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, errors.Errorf("creating fst builder: %w", err)
	}

	for _, key := range keys {
		if err := builder.Insert([]byte(key), first[key]); err != nil {
			builder.Close()
			return nil, errors.Errorf("inserting %q: %w", key, err)
		}
	}

	if err := builder.Close(); err != nil {
		return nil, errors.Errorf("closing fst builder: %w", err)
	}

	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, errors.Errorf("loading fst: %w", err)
	}
	idx.fst = fst

	return idx, nil
}

// Contains reports whether key, already passed through the index keyer, is present.
func (x *Index) Contains(key string) bool {
	_, ok := x.Lookup(key)
	return ok
}

// Lookup returns the position of the first vocabulary entry whose key is key.
func (x *Index) Lookup(key string) (int, bool) {
	if x == nil || x.fst == nil {
		return 0, false
	}
	val, exists, err := x.fst.Get([]byte(key))
	if err != nil || !exists {
		return 0, false
	}
	return int(val), true
}

// Match derives the key of text and checks it.
func (x *Index) Match(text string) bool {
	if x == nil {
		return false
	}
	return x.Contains(x.keyer.Key(text))
}

// Len returns the number of distinct keys.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return x.size
}

// Keys returns every key in byte order.
func (x *Index) Keys() []string {
	if x == nil || x.fst == nil {
		return nil
	}

	keys := make([]string, 0, x.size)
	itr, err := x.fst.Iterator(nil, nil)
	for err == nil {
		key, _ := itr.Current()
		keys = append(keys, string(key))
		err = itr.Next()
	}
	return keys
}

// Indices is the set of per-category indices consulted during reclassification.
type Indices struct {
	byCategory map[Category]*Index
}

// NewIndices builds one index per category of reg, concurrently.
func NewIndices(ctx context.Context, reg *Registry) (*Indices, error) {
	built := make([]*Index, len(Categories))

	var g errgroup.Group
	for i, c := range Categories {
		i, c := i, c // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			idx, err := NewIndex(reg.Entries(c), KeyerFor(c))
			if err != nil {
				return errors.Errorf("building %s index: %w", c, err)
			}
			built[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Indices{byCategory: make(map[Category]*Index, len(Categories))}
	logger := zerolog.Ctx(ctx)
	for i, c := range Categories {
		out.byCategory[c] = built[i]
		logger.Debug().Str("category", string(c)).Int("keys", built[i].Len()).Msg("built classification index")
	}

	return out, nil
}

// Of returns the index of c. A category without vocabulary has an empty index.
func (s *Indices) Of(c Category) *Index {
	if s == nil {
		return nil
	}
	return s.byCategory[c]
}
