package highlight

import (
	"strings"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
)

// Token is a classified piece of source text. Composite tokens carry
// Children whose texts concatenate to Text.
type Token struct {
	Kind     grammar.Kind `json:"kind,omitempty"`
	Text     string       `json:"text"`
	Children []Token      `json:"children,omitempty"`
}

// Plain reports whether t carries no category.
func (t Token) Plain() bool {
	return t.Kind == grammar.KindPlain
}

// Join concatenates the text of tokens. Joining the output of Tokenize
// always gives back the input.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Classified returns the non-plain tokens of a tree in pre-order.
func Classified(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if !t.Plain() {
			out = append(out, t)
		}
		out = append(out, Classified(t.Children)...)
	}
	return out
}
