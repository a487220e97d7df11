package highlight

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

// CacheSize is the maximum number of memoized (kind, text) decisions.
const CacheSize = 50_000

// Reclassifier corrects the provisional kinds left by the engine using the
// classification indices, which are the source of truth for every vocabulary
// category.
type Reclassifier struct {
	indices *lexicon.Indices
	cache   *lru.Cache[string, grammar.Kind]
}

// NewReclassifier creates a reclassifier with an LRU cache of decisions.
func NewReclassifier(indices *lexicon.Indices) *Reclassifier {
	cache, _ := lru.New[string, grammar.Kind](CacheSize)
	return &Reclassifier{
		indices: indices,
		cache:   cache,
	}
}

// NewReclassifierNoCache creates a reclassifier without caching.
func NewReclassifierNoCache(indices *lexicon.Indices) *Reclassifier {
	return &Reclassifier{
		indices: indices,
		cache:   nil,
	}
}

// Reclassify corrects tokens with a throwaway uncached reclassifier.
func Reclassify(tokens []Token, indices *lexicon.Indices) []Token {
	return NewReclassifierNoCache(indices).Reclassify(tokens)
}

// Reclassify returns a corrected copy of the token tree; tokens is not
// modified. Each token is corrected before its children, and children are
// corrected independently of what happened to their parent.
func (r *Reclassifier) Reclassify(tokens []Token) []Token {
	if tokens == nil {
		return nil
	}

	out := make([]Token, len(tokens))
	for i, t := range tokens {
		out[i] = Token{
			Kind:     r.Correct(t.Kind, t.Text),
			Text:     t.Text,
			Children: r.Reclassify(t.Children),
		}
	}
	return out
}

// Correct returns the final kind of a token of the given provisional kind and text.
func (r *Reclassifier) Correct(kind grammar.Kind, text string) grammar.Kind {
	switch kind {
	case grammar.KindKeyword, grammar.KindConstant, grammar.KindType, grammar.KindCallable:
	case grammar.KindLoneLetter:
		return grammar.KindKeyword
	default:
		return kind
	}

	if r.cache == nil {
		return r.correctUncached(kind, text)
	}

	key := string(kind) + "\x00" + text
	if corrected, ok := r.cache.Get(key); ok {
		return corrected
	}

	corrected := r.correctUncached(kind, text)
	r.cache.Add(key, corrected)

	return corrected
}

func (r *Reclassifier) correctUncached(kind grammar.Kind, text string) grammar.Kind {
	switch kind {
	case grammar.KindCallable:
		if r.indices.Of(lexicon.Function).Match(calleeName(text)) {
			return grammar.KindFunction
		}
		return grammar.KindPlain
	default:
		if r.indices.Of(lexicon.Category(kind)).Match(text) {
			return kind
		}
		return grammar.KindPlain
	}
}

// calleeName drops the call parenthesis and spaces a callable may carry.
func calleeName(text string) string {
	return strings.TrimRightFunc(text, func(r rune) bool {
		return r == '(' || unicode.IsSpace(r)
	})
}

// CacheSize returns the number of cached decisions (0 if cache is disabled).
func (r *Reclassifier) CacheSize() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}

// ClearCache clears the decision cache.
func (r *Reclassifier) ClearCache() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// CacheEnabled returns true if caching is enabled.
func (r *Reclassifier) CacheEnabled() bool {
	return r.cache != nil
}
