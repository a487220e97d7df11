package highlight

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
)

// ErrInvariant marks a rule that failed to compile. Vocabulary entries are
// escaped before they reach a pattern, so this is a bug, not bad input.
var ErrInvariant = errors.Base("rule pattern does not compile")

// wordEnd consumes the rune after a whole-word match, or the end of text.
// The token itself is capture group 1, so the consumed rune stays in the text.
const wordEnd = `(?:[^\p{L}\p{N}_]|$)`

type rule struct {
	kind      grammar.Kind
	re        *regexp.Regexp
	wordStart bool
	afterDot  bool
	inside    []*rule
}

// Engine splits text into tokens with the rules of a definition. Each rule,
// in order, is applied to every segment still unclassified: the first match
// splits the segment into before / token / after, and matching continues
// after the token. Tokens of composite rules are split again with their
// inside rules.
type Engine struct {
	rules []*rule
}

// NewEngine compiles the rules of def.
func NewEngine(def *grammar.Definition) (*Engine, error) {
	rules, err := compileRules(def.Rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: rules}, nil
}

func compileRules(defs []grammar.Rule) ([]*rule, error) {
	rules := make([]*rule, 0, len(defs))
	for _, def := range defs {
		r, err := compileRule(def)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func compileRule(def grammar.Rule) (*rule, error) {
	var b strings.Builder
	switch {
	case def.IgnoreCase && def.Multiline:
		b.WriteString("(?im)")
	case def.IgnoreCase:
		b.WriteString("(?i)")
	case def.Multiline:
		b.WriteString("(?m)")
	}
	b.WriteString("(" + def.Pattern + ")")
	if def.CallSuffix {
		b.WriteString(`\s*\(`)
	}
	if def.WordEnd {
		b.WriteString(wordEnd)
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrInvariant, def.Kind, err.Error())
	}

	inside, err := compileRules(def.Inside)
	if err != nil {
		return nil, err
	}

	return &rule{
		kind:      def.Kind,
		re:        re,
		wordStart: def.WordStart,
		afterDot:  def.AfterDot,
		inside:    inside,
	}, nil
}

// Tokenize splits text into a token tree. Joining the tokens gives back text.
func (e *Engine) Tokenize(text string) []Token {
	return tokenizeWith(e.rules, text)
}

func tokenizeWith(rules []*rule, text string) []Token {
	if text == "" {
		return nil
	}
	tokens := []Token{{Text: text}}
	for _, r := range rules {
		tokens = r.apply(tokens)
	}
	return tokens
}

func (r *rule) apply(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.Plain() {
			out = append(out, t)
			continue
		}

		rest := t.Text
		for rest != "" {
			start, end, ok := r.find(rest)
			if !ok {
				out = append(out, Token{Text: rest})
				break
			}
			if start > 0 {
				out = append(out, Token{Text: rest[:start]})
			}
			match := Token{Kind: r.kind, Text: rest[start:end]}
			if len(r.inside) > 0 {
				match.Children = tokenizeWith(r.inside, match.Text)
			}
			out = append(out, match)
			rest = rest[end:]
		}
	}
	return out
}

// find returns the span of the first non-empty match of r in s whose
// preceding text satisfies the rule's boundary requirements.
func (r *rule) find(s string) (int, int, bool) {
	for offset := 0; offset <= len(s); {
		loc := r.re.FindStringSubmatchIndex(s[offset:])
		if loc == nil {
			return 0, 0, false
		}

		start, end := offset+loc[2], offset+loc[3]
		if end > start && r.accepts(s[:start]) {
			return start, end, true
		}

		_, size := utf8.DecodeRuneInString(s[offset+loc[0]:])
		if size == 0 {
			size = 1
		}
		offset += loc[0] + size
	}
	return 0, 0, false
}

func (r *rule) accepts(before string) bool {
	if r.afterDot && !strings.HasSuffix(before, ".") {
		return false
	}
	if r.wordStart {
		last, _ := utf8.DecodeLastRuneInString(before)
		if before != "" && isWordRune(last) {
			return false
		}
	}
	return true
}

// isWordRune reports whether r belongs to an identifier.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}
