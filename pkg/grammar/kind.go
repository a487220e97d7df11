package grammar

import "github.com/wlangage/prism-wlangage/pkg/lexicon"

// Kind is the semantic class attached to a token. The empty Kind is plain text.
type Kind string

const (
	KindPlain Kind = ""

	KindComment     Kind = "comment"
	KindString      Kind = "string"
	KindNumber      Kind = "number"
	KindPunctuation Kind = "punctuation"

	KindKeyword  Kind = Kind(lexicon.Keyword)
	KindConstant Kind = Kind(lexicon.Constant)
	KindType     Kind = Kind(lexicon.Type)
	KindFunction Kind = Kind(lexicon.Function)
	KindOperator Kind = Kind(lexicon.Operator)
	KindProperty Kind = Kind(lexicon.Property)

	KindAssignment    Kind = "variable-assignment"
	KindVisibility    Kind = "visibility"
	KindProcedure     Kind = "procedure"
	KindProcedureName Kind = "procedure-name"

	// KindProcedureKeyword marks "PROCÉDURE" and its modifiers inside a
	// declaration. It is final, whatever the keyword vocabulary holds.
	KindProcedureKeyword Kind = "procedure-keyword"

	// KindCallable is provisional: an identifier followed by "(". It becomes
	// KindFunction or plain text during reclassification.
	KindCallable Kind = "callable"

	// KindLoneLetter is provisional: a lone "à", which whole-word keyword
	// matching misses. It always becomes KindKeyword.
	KindLoneLetter Kind = "lone-letter"
)

// scopes maps kinds to TextMate scope prefixes.
var scopes = map[Kind]string{
	KindComment:       "comment",
	KindString:        "string.quoted.double",
	KindNumber:        "constant.numeric",
	KindPunctuation:   "punctuation.separator",
	KindKeyword:       "keyword.control",
	KindConstant:      "constant.language",
	KindType:          "storage.type",
	KindFunction:      "support.function",
	KindOperator:      "keyword.operator",
	KindProperty:      "variable.other.property",
	KindAssignment:    "keyword.other.assignment",
	KindVisibility:    "storage.modifier",
	KindProcedure:     "meta.procedure",
	KindProcedureName: "entity.name.function",
	KindCallable:      "meta.function-call",
	KindLoneLetter:    "keyword.control",

	KindProcedureKeyword: "keyword.other.procedure",
}

// Scope returns the TextMate scope name of k for the given language.
func (k Kind) Scope(language string) string {
	prefix, ok := scopes[k]
	if !ok {
		prefix = "source"
	}
	return prefix + "." + language
}
