package lexicon

import (
	"strings"

	"github.com/kljensen/snowball"
)

// PluralWarning flags a type entry whose trailing "s" the plural rule strips
// although the French stemmer suggests it belongs to the word itself.
type PluralWarning struct {
	Entry string
	Base  string
	Stem  string
}

// LintPlurals reports type entries ending in "s" whose base is not a
// vocabulary entry and whose stem differs from the stem of the base. The
// plural rule itself is unchanged; this only gives data to review it with.
func LintPlurals(types []string) []PluralWarning {
	present := make(map[string]struct{}, len(types))
	for _, t := range types {
		present[Lowercase(Fold(t))] = struct{}{}
	}

	var warnings []PluralWarning
	for _, t := range types {
		base := pluralBase(t)
		if base == t {
			continue
		}
		if _, ok := present[Lowercase(Fold(base))]; ok {
			continue
		}

		stem := stemFrench(t)
		if stem == stemFrench(base) {
			continue
		}
		warnings = append(warnings, PluralWarning{Entry: t, Base: base, Stem: stem})
	}

	return warnings
}

// stemFrench applies the French Snowball stemmer, falling back to the input.
func stemFrench(s string) string {
	stemmed, err := snowball.Stem(strings.ToLower(s), "french", true)
	if err != nil {
		return s
	}
	return stemmed
}
