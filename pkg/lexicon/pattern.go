package lexicon

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// NeverMatch is a pattern valid in both RE2 and ECMAScript that matches nothing.
const NeverMatch = `[^\s\S]`

// specialChars are escaped in every literal entry.
const specialChars = `\.^$*+?{}[]()|`

// Alternation is the compiled OR-pattern of one vocabulary.
type Alternation struct {
	Category     Category
	Alternatives []string
}

// Compile turns the vocabulary of c into an alternation. Entries are ordered
// longest first, so a short entry never wins over a longer one sharing its
// prefix; ties keep input order. Types additionally collapse singular and
// plural into a single "base s?" alternative.
func Compile(c Category, entries []string) Alternation {
	sorted := append([]string(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	escape := EscapeLiteral
	if c == Operator {
		escape = EscapeOperator
	}

	alts := make([]string, 0, len(sorted))
	if c == Type {
		processed := make(map[string]struct{}, len(sorted))
		for _, t := range sorted {
			base := pluralBase(t)
			if _, done := processed[Lowercase(base)]; done {
				continue
			}
			processed[Lowercase(base)] = struct{}{}
			alts = append(alts, escape(base)+"s?")
		}
	} else {
		for _, e := range sorted {
			alts = append(alts, escape(e))
		}
	}

	return Alternation{Category: c, Alternatives: alts}
}

// pluralBase strips one trailing "s" in either case, the way the type key
// strips it after lowercasing.
func pluralBase(t string) string {
	if strings.HasSuffix(t, "s") || strings.HasSuffix(t, "S") {
		return t[:len(t)-1]
	}
	return t
}

// Empty reports whether the alternation has no alternative.
func (a Alternation) Empty() bool {
	return len(a.Alternatives) == 0
}

// String joins the alternatives with "|". An empty alternation renders as
// NeverMatch instead of an empty group, which would match everywhere.
func (a Alternation) String() string {
	if a.Empty() {
		return NeverMatch
	}
	return strings.Join(a.Alternatives, "|")
}

// EscapeLiteral backslash-escapes every regex metacharacter of s.
func EscapeLiteral(s string) string {
	return escapeSet(s, specialChars)
}

// EscapeOperator is EscapeLiteral plus "/", which delimits ECMAScript regex literals.
func EscapeOperator(s string) string {
	return escapeSet(s, specialChars+"/")
}

func escapeSet(s, set string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if strings.ContainsRune(set, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
