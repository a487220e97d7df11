package lexicon

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// foldSources maps each unaccented target to the accented runes folding onto it.
var foldSources = map[rune]string{
	'a': "àáâãäå",
	'A': "ÀÁÂÃÄÅ",
	'e': "èéêë",
	'E': "ÈÉÊË",
	'i': "ìíîï",
	'I': "ÌÍÎÏ",
	'o': "òóôõö",
	'O': "ÒÓÔÕÖ",
	'u': "ùúûü",
	'U': "ÙÚÛÜ",
	'y': "ýÿ",
	'Y': "ÝŸ",
	'c': "ç",
	'C': "Ç",
}

// foldTable is the inverted form of foldSources.
var foldTable = func() map[rune]rune {
	table := make(map[rune]rune, 64)
	for target, sources := range foldSources {
		for _, r := range sources {
			table[r] = target
		}
	}
	return table
}()

// FoldRune returns the unaccented form of r, or r itself when r carries no
// diacritic known to the fold table.
func FoldRune(r rune) rune {
	if folded, ok := foldTable[r]; ok {
		return folded
	}
	return r
}

// Folder returns a transformer applying FoldRune to every rune.
func Folder() transform.Transformer {
	return runes.Map(FoldRune)
}

// Fold removes diacritics from s. The result has exactly as many runes as s
// and folding twice is the same as folding once.
func Fold(s string) string {
	for _, r := range s {
		if _, ok := foldTable[r]; ok {
			folded, _, _ := transform.String(Folder(), s)
			return folded
		}
	}
	return s
}

// FoldTable returns a copy of the accented → unaccented rune table.
// The generated artifact embeds it so the browser-side pass folds the same way.
func FoldTable() map[rune]rune {
	out := make(map[rune]rune, len(foldTable))
	for k, v := range foldTable {
		out[k] = v
	}
	return out
}
