package highlight

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

// Config controls how a Highlighter is assembled.
type Config struct {
	// Cache enables the LRU cache of reclassification decisions.
	Cache bool

	Options grammar.Options
}

// DefaultConfig returns the WLangage options with caching enabled.
func DefaultConfig() Config {
	return Config{Cache: true, Options: grammar.DefaultOptions()}
}

// Highlighter is the main WLangage highlighter: the engine produces the
// initial tokens and the reclassifier corrects them.
type Highlighter struct {
	def          *grammar.Definition
	indices      *lexicon.Indices
	engine       *Engine
	reclassifier *Reclassifier
}

// NewHighlighter builds the indices, the definition and the engine for reg.
func NewHighlighter(ctx context.Context, reg *lexicon.Registry, cfg Config) (*Highlighter, error) {
	indices, err := lexicon.NewIndices(ctx, reg)
	if err != nil {
		return nil, errors.Errorf("building indices: %w", err)
	}

	def, err := grammar.Build(ctx, reg, indices, cfg.Options)
	if err != nil {
		return nil, errors.Errorf("building definition: %w", err)
	}

	engine, err := NewEngine(def)
	if err != nil {
		return nil, errors.Errorf("compiling definition: %w", err)
	}

	h := &Highlighter{
		def:     def,
		indices: indices,
		engine:  engine,
	}

	// The light variant has no lookup tables to correct with.
	if !cfg.Options.Light {
		if cfg.Cache {
			h.reclassifier = NewReclassifier(indices)
		} else {
			h.reclassifier = NewReclassifierNoCache(indices)
		}
	}

	zerolog.Ctx(ctx).Debug().Bool("cache", cfg.Cache).Bool("light", cfg.Options.Light).Msg("highlighter ready")

	return h, nil
}

// Highlight tokenizes text and corrects the resulting tree.
func (h *Highlighter) Highlight(text string) []Token {
	tokens := h.engine.Tokenize(text)
	if h.reclassifier == nil {
		return tokens
	}
	return h.reclassifier.Reclassify(tokens)
}

// Definition returns the syntax definition the highlighter was built from.
func (h *Highlighter) Definition() *grammar.Definition {
	return h.def
}

// Indices returns the classification indices.
func (h *Highlighter) Indices() *lexicon.Indices {
	return h.indices
}

// Reclassifier returns the correction pass, nil in light mode.
func (h *Highlighter) Reclassifier() *Reclassifier {
	return h.reclassifier
}
