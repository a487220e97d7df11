package grammar

import (
	"encoding/json"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// TextMateGrammar is the subset of the tmLanguage schema the generator emits.
type TextMateGrammar struct {
	Name       string                     `json:"name"`
	ScopeName  string                     `json:"scopeName"`
	FileTypes  []string                   `json:"fileTypes,omitempty"`
	UUID       string                     `json:"uuid"`
	Patterns   []TextMatePattern          `json:"patterns"`
	Repository map[string]TextMatePattern `json:"repository"`
}

// TextMatePattern is a match, begin/end or include rule.
type TextMatePattern struct {
	Include  string            `json:"include,omitempty"`
	Name     string            `json:"name,omitempty"`
	Match    string            `json:"match,omitempty"`
	Begin    string            `json:"begin,omitempty"`
	End      string            `json:"end,omitempty"`
	Patterns []TextMatePattern `json:"patterns,omitempty"`
}

// TextMate converts d into a TextMate grammar. Each kind becomes a
// repository entry included in rule order. TextMate cannot correct tokens
// after matching, so callables keep a neutral function-call scope and
// composite rules are emitted without their nested rules.
func TextMate(d *Definition) *TextMateGrammar {
	g := &TextMateGrammar{
		Name:       d.Title,
		ScopeName:  d.Scope,
		FileTypes:  d.FileTypes,
		UUID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://"+d.Scope)).String(),
		Repository: make(map[string]TextMatePattern),
	}

	for _, group := range groupByKind(d.Rules) {
		kind := group[0].Kind
		entry := TextMatePattern{}
		for _, r := range group {
			entry.Patterns = append(entry.Patterns, textMateRule(r, d.Language))
		}
		g.Repository[string(kind)] = entry
		g.Patterns = append(g.Patterns, TextMatePattern{Include: "#" + string(kind)})
	}

	return g
}

func textMateRule(r Rule, language string) TextMatePattern {
	name := r.Kind.Scope(language)
	if r.Begin != "" {
		return TextMatePattern{Name: name, Begin: r.Begin, End: r.End}
	}

	source := LookaroundSource(r)
	if r.IgnoreCase {
		source = "(?i)" + source
	}
	return TextMatePattern{Name: name, Match: source}
}

// RenderTextMate renders d as an indented tmLanguage JSON document.
func RenderTextMate(d *Definition) ([]byte, error) {
	out, err := json.MarshalIndent(TextMate(d), "", "  ")
	if err != nil {
		return nil, errors.Errorf("encoding textmate grammar: %w", err)
	}
	return append(out, '\n'), nil
}
