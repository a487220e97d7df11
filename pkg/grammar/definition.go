package grammar

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

// wordChars is the class of runes that make up identifiers.
const wordChars = `[\p{L}\p{N}_]`

// Rule is one tokenizing rule. Pattern is written in the syntax shared by
// RE2 and ECMAScript; the boundary flags are rendered by each consumer in its
// own dialect (lookarounds for ECMAScript and TextMate, explicit checks for
// the Go engine).
type Rule struct {
	Kind    Kind
	Pattern string

	IgnoreCase bool
	Multiline  bool
	Greedy     bool

	// WordStart requires the match not to be preceded by a word rune.
	WordStart bool
	// WordEnd requires the match not to be followed by a word rune.
	WordEnd bool
	// CallSuffix requires the match to be followed by optional spaces and "(".
	CallSuffix bool
	// AfterDot requires the match to be preceded by ".".
	AfterDot bool

	// Begin and End replace Pattern for line-oriented consumers when the
	// rule spans lines.
	Begin string
	End   string

	// Inside rules tokenize the text of each match.
	Inside []Rule
}

// Options selects the language identity and the variant of the definition.
type Options struct {
	Language  string
	Title     string
	Aliases   []string
	Scope     string
	FileTypes []string

	// Light drops the function, constant and type vocabularies: every
	// callable is a function and types are only recognised after an
	// assignment ("est un", "sont des"). No correction pass is attached.
	Light bool
}

// DefaultOptions returns the WLangage identity.
func DefaultOptions() Options {
	return Options{
		Language:  "wlangage",
		Title:     "WLangage",
		Aliases:   []string{"wl"},
		Scope:     "source.wlangage",
		FileTypes: []string{"wl", "wdw", "wdg"},
	}
}

// Definition is the complete syntax definition of the language: ordered
// rules, the alternation compiled for each category and the lookup tables
// embedded for the correction pass.
type Definition struct {
	Options

	Rules        []Rule
	Alternations map[lexicon.Category]lexicon.Alternation
	Tables       map[lexicon.Category][]string
	Counts       map[lexicon.Category]int
}

// correctedCategories are the categories whose tokens the correction pass checks.
var correctedCategories = []lexicon.Category{lexicon.Keyword, lexicon.Constant, lexicon.Type, lexicon.Function}

// Build compiles reg into a definition. Categories are compiled
// concurrently; indices supplies the lookup tables and may be nil in light mode.
func Build(ctx context.Context, reg *lexicon.Registry, indices *lexicon.Indices, opts Options) (*Definition, error) {
	logger := zerolog.Ctx(ctx)

	if err := reg.Validate(ctx); err != nil {
		return nil, errors.Errorf("validating vocabulary: %w", err)
	}

	compiled := make([]lexicon.Alternation, len(lexicon.Categories))
	var g errgroup.Group
	for i, c := range lexicon.Categories {
		i, c := i, c // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			compiled[i] = lexicon.Compile(c, reg.Entries(c))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	def := &Definition{
		Options:      opts,
		Alternations: make(map[lexicon.Category]lexicon.Alternation, len(compiled)),
		Tables:       make(map[lexicon.Category][]string),
		Counts:       make(map[lexicon.Category]int, len(compiled)),
	}
	for i, c := range lexicon.Categories {
		def.Alternations[c] = compiled[i]
		def.Counts[c] = reg.Len(c)
		logger.Debug().Str("category", string(c)).Int("alternatives", len(compiled[i].Alternatives)).Msg("compiled category pattern")
	}

	if !opts.Light {
		if indices == nil {
			return nil, errors.New("indices are required outside light mode")
		}
		for _, c := range correctedCategories {
			def.Tables[c] = indices.Of(c).Keys()
		}
	}

	def.Rules = def.rules()

	logger.Info().Str("language", opts.Language).Bool("light", opts.Light).Int("rules", len(def.Rules)).Msg("built syntax definition")

	return def, nil
}

// rules lays out the rules in matching order. Earlier rules win: comments
// and strings first so nothing inside them is classified, the composite
// procedure declaration before keywords so its own keywords stay nested.
func (d *Definition) rules() []Rule {
	alt := func(c lexicon.Category) string {
		return d.Alternations[c].String()
	}

	rules := []Rule{
		{Kind: KindComment, Pattern: `//.*$`, Multiline: true, Greedy: true},
		{Kind: KindComment, Pattern: `/\*[\s\S]*?\*/`, Greedy: true, Begin: `/\*`, End: `\*/`},
		{Kind: KindString, Pattern: `"(?:[^"\\]|\\.)*"`, Greedy: true},
	}

	if d.Light {
		rules = append(rules, Rule{
			Kind:       KindAssignment,
			Pattern:    `(?:est une|est un|sont des)\s+` + wordChars + `+`,
			IgnoreCase: true,
			WordStart:  true,
			Inside: []Rule{
				{Kind: KindType, Pattern: wordChars + `+$`},
				{Kind: KindKeyword, Pattern: `est une|est un|sont des`, IgnoreCase: true, WordStart: true, WordEnd: true},
			},
		})
	} else {
		rules = append(rules, Rule{
			Kind:       KindAssignment,
			Pattern:    `est une|est un|sont des`,
			IgnoreCase: true,
			WordStart:  true,
			WordEnd:    true,
		})
	}

	// Light output has no correction pass to resolve provisional kinds.
	lone := KindLoneLetter
	if d.Light {
		lone = KindKeyword
	}

	rules = append(rules,
		Rule{
			Kind:       KindVisibility,
			Pattern:    `public|priv[eé]|prot[eé]g[eé]|h[eé]rite de`,
			IgnoreCase: true,
			WordStart:  true,
			WordEnd:    true,
		},
		Rule{
			Kind:       KindProcedure,
			Pattern:    `proc[eé]dure(?:\s+(?:interne|constructeur|destructeur|virtuelle))?\s+` + wordChars + `+`,
			IgnoreCase: true,
			WordStart:  true,
			WordEnd:    true,
			Inside: []Rule{
				{Kind: KindProcedureName, Pattern: wordChars + `+$`},
				{Kind: KindProcedureKeyword, Pattern: `proc[eé]dure|interne|constructeur|destructeur|virtuelle`, IgnoreCase: true, WordStart: true, WordEnd: true},
			},
		},
		Rule{Kind: KindKeyword, Pattern: alt(lexicon.Keyword), IgnoreCase: true, WordStart: true, WordEnd: true},
		Rule{Kind: lone, Pattern: `[àÀ]`, WordStart: true, WordEnd: true},
	)

	if !d.Light {
		rules = append(rules,
			Rule{Kind: KindType, Pattern: alt(lexicon.Type), IgnoreCase: true, WordStart: true, WordEnd: true},
			Rule{Kind: KindConstant, Pattern: alt(lexicon.Constant), IgnoreCase: true, WordStart: true, WordEnd: true},
			Rule{Kind: KindFunction, Pattern: alt(lexicon.Function), IgnoreCase: true, WordStart: true, CallSuffix: true},
		)
	}

	callable := KindCallable
	if d.Light {
		callable = KindFunction
	}
	rules = append(rules, Rule{Kind: callable, Pattern: wordChars + `+`, WordStart: true, CallSuffix: true})

	property := wordChars + `+`
	if !d.Alternations[lexicon.Property].Empty() {
		property = alt(lexicon.Property)
	}

	rules = append(rules,
		Rule{Kind: KindProperty, Pattern: property, IgnoreCase: true, AfterDot: true, WordEnd: true},
		Rule{Kind: KindNumber, Pattern: `-?\b\d+(?:\.\d+)?\b`},
		Rule{Kind: KindOperator, Pattern: alt(lexicon.Operator)},
		Rule{Kind: KindPunctuation, Pattern: `[(){}\[\],;:.]`},
	)

	return rules
}
