package grammar_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

func testContext() context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func testRegistry(t *testing.T) *lexicon.Registry {
	t.Helper()

	reg := lexicon.NewRegistry()
	require.NoError(t, reg.Set(lexicon.Keyword, []string{"SI", "SINON", "ALORS", "FIN"}))
	require.NoError(t, reg.Set(lexicon.Function, []string{"Trace", "Info"}))
	require.NoError(t, reg.Set(lexicon.Constant, []string{"Vrai", "Faux"}))
	require.NoError(t, reg.Set(lexicon.Type, []string{"entier", "classe", "classes"}))
	require.NoError(t, reg.Set(lexicon.Operator, []string{"+", "/", "<>", "="}))
	return reg
}

func buildDefinition(t *testing.T, opts grammar.Options) *grammar.Definition {
	t.Helper()

	ctx := testContext()
	reg := testRegistry(t)
	indices, err := lexicon.NewIndices(ctx, reg)
	require.NoError(t, err)

	def, err := grammar.Build(ctx, reg, indices, opts)
	require.NoError(t, err)
	return def
}

func kindsOf(rules []grammar.Rule) []grammar.Kind {
	kinds := make([]grammar.Kind, 0, len(rules))
	for _, r := range rules {
		kinds = append(kinds, r.Kind)
	}
	return kinds
}

func TestBuild(t *testing.T) {
	def := buildDefinition(t, grammar.DefaultOptions())

	t.Run("test_rule_order", func(t *testing.T) {
		assert.Equal(t, []grammar.Kind{
			grammar.KindComment,
			grammar.KindComment,
			grammar.KindString,
			grammar.KindAssignment,
			grammar.KindVisibility,
			grammar.KindProcedure,
			grammar.KindKeyword,
			grammar.KindLoneLetter,
			grammar.KindType,
			grammar.KindConstant,
			grammar.KindFunction,
			grammar.KindCallable,
			grammar.KindProperty,
			grammar.KindNumber,
			grammar.KindOperator,
			grammar.KindPunctuation,
		}, kindsOf(def.Rules))
	})

	t.Run("test_alternations", func(t *testing.T) {
		assert.Equal(t, "SINON|ALORS|FIN|SI", def.Alternations[lexicon.Keyword].String())
		assert.Equal(t, "classes?|entiers?", def.Alternations[lexicon.Type].String())
		assert.Equal(t, `<>|\+|\/|=`, def.Alternations[lexicon.Operator].String())
		assert.Equal(t, lexicon.NeverMatch, def.Alternations[lexicon.Property].String())
	})

	t.Run("test_tables", func(t *testing.T) {
		assert.Equal(t, []string{"alors", "fin", "si", "sinon"}, def.Tables[lexicon.Keyword])
		assert.Equal(t, []string{"classe", "entier"}, def.Tables[lexicon.Type])
		assert.NotContains(t, def.Tables, lexicon.Operator)
	})

	t.Run("test_counts", func(t *testing.T) {
		assert.Equal(t, 4, def.Counts[lexicon.Keyword])
		assert.Equal(t, 3, def.Counts[lexicon.Type])
		assert.Equal(t, 0, def.Counts[lexicon.Property])
	})
}

func TestBuild_EmptyVocabulary(t *testing.T) {
	ctx := testContext()
	reg := lexicon.NewRegistry()
	indices, err := lexicon.NewIndices(ctx, reg)
	require.NoError(t, err)

	_, err = grammar.Build(ctx, reg, indices, grammar.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, lexicon.ErrNoVocabulary))
}

func TestBuild_RequiresIndices(t *testing.T) {
	_, err := grammar.Build(testContext(), testRegistry(t), nil, grammar.DefaultOptions())
	require.Error(t, err)
}

func TestBuild_Light(t *testing.T) {
	opts := grammar.DefaultOptions()
	opts.Light = true

	def, err := grammar.Build(testContext(), testRegistry(t), nil, opts)
	require.NoError(t, err)

	kinds := kindsOf(def.Rules)
	assert.NotContains(t, kinds, grammar.KindCallable)
	assert.NotContains(t, kinds, grammar.KindLoneLetter)
	assert.NotContains(t, kinds, grammar.KindConstant)
	assert.NotContains(t, kinds, grammar.KindType, "types are only nested inside assignments")
	assert.Contains(t, kinds, grammar.KindFunction)
	assert.Empty(t, def.Tables)

	for _, r := range def.Rules {
		if r.Kind == grammar.KindAssignment {
			require.Len(t, r.Inside, 2)
			assert.Equal(t, grammar.KindType, r.Inside[0].Kind)
		}
	}
}

func TestRegexLiteral(t *testing.T) {
	tests := []struct {
		name     string
		rule     grammar.Rule
		expected string
	}{
		{
			name:     "test_line_comment",
			rule:     grammar.Rule{Pattern: `//.*$`, Multiline: true},
			expected: `/\/\/.*$/m`,
		},
		{
			name:     "test_already_escaped_slash",
			rule:     grammar.Rule{Pattern: `<>|\/`},
			expected: `/<>|\//`,
		},
		{
			name:     "test_whole_word",
			rule:     grammar.Rule{Pattern: `SINON|SI`, IgnoreCase: true, WordStart: true, WordEnd: true},
			expected: `/(?<![\p{L}\p{N}_])(?:SINON|SI)(?![\p{L}\p{N}_])/iu`,
		},
		{
			name:     "test_call_suffix",
			rule:     grammar.Rule{Pattern: `Trace`, IgnoreCase: true, WordStart: true, CallSuffix: true},
			expected: `/(?<![\p{L}\p{N}_])(?:Trace)(?=\s*\()/iu`,
		},
		{
			name:     "test_after_dot",
			rule:     grammar.Rule{Pattern: `Libellé`, AfterDot: true, WordEnd: true},
			expected: `/(?<=\.)(?:Libellé)(?![\p{L}\p{N}_])/u`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, grammar.RegexLiteral(tt.rule))
		})
	}
}

func TestRenderPrism(t *testing.T) {
	out, err := grammar.RenderPrism(buildDefinition(t, grammar.DefaultOptions()))
	require.NoError(t, err)
	js := string(out)

	assert.Contains(t, js, "Prism.languages.wlangage = {")
	assert.Contains(t, js, "Prism.languages.wl = Prism.languages.wlangage;")
	assert.Contains(t, js, `'keyword': /(?<![\p{L}\p{N}_])(?:SINON|ALORS|FIN|SI)(?![\p{L}\p{N}_])/iu`)
	assert.Contains(t, js, `pattern: /\/\/.*$/m`)
	assert.Contains(t, js, `'string': {`)
	assert.Contains(t, js, "greedy: true")
	assert.Contains(t, js, `'procedure-name': /[\p{L}\p{N}_]+$/u`)
	assert.Contains(t, js, `'procedure-keyword': /`)
	assert.Contains(t, js, "tokens.splice.apply(tokens, [i, 1].concat(token.content))", "demoted composites keep their children")
	assert.Contains(t, js, "Prism.hooks.add('after-tokenize'")
	assert.Contains(t, js, `"sinon":1`)
	assert.Contains(t, js, `"é":"e"`)
	assert.Contains(t, js, `["wlangage","wl"]`)
	assert.Contains(t, js, "keyword: 4 | type: 3 | constant: 2 | function: 2 | property: 0 | operator: 4")
	assert.NotContains(t, js, "<%")
}

func TestRenderPrism_Light(t *testing.T) {
	opts := grammar.DefaultOptions()
	opts.Light = true
	def, err := grammar.Build(testContext(), testRegistry(t), nil, opts)
	require.NoError(t, err)

	out, err := grammar.RenderPrism(def)
	require.NoError(t, err)
	js := string(out)

	assert.Contains(t, js, "Version Light")
	assert.Contains(t, js, "keyword: 4 | operator: 4")
	assert.NotContains(t, js, "after-tokenize")
	assert.NotContains(t, js, `'lone-letter'`)
	assert.Contains(t, js, `'variable-assignment': {`)
}

func TestRenderTextMate(t *testing.T) {
	def := buildDefinition(t, grammar.DefaultOptions())

	out, err := grammar.RenderTextMate(def)
	require.NoError(t, err)

	var decoded grammar.TextMateGrammar
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "source.wlangage", decoded.ScopeName)
	assert.Equal(t, "#comment", decoded.Patterns[0].Include)

	_, err = uuid.Parse(decoded.UUID)
	require.NoError(t, err)
	assert.Equal(t, grammar.TextMate(def).UUID, decoded.UUID, "uuid should be stable across runs")

	comments := decoded.Repository["comment"].Patterns
	require.Len(t, comments, 2)
	assert.Equal(t, "comment.wlangage", comments[0].Name)
	assert.Equal(t, `/\*`, comments[1].Begin)
	assert.Equal(t, `\*/`, comments[1].End)

	keyword := decoded.Repository["keyword"].Patterns
	require.Len(t, keyword, 1)
	assert.Equal(t, "keyword.control.wlangage", keyword[0].Name)
	assert.Equal(t, `(?i)(?<![\p{L}\p{N}_])(?:SINON|ALORS|FIN|SI)(?![\p{L}\p{N}_])`, keyword[0].Match)
}
