package lexicon

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Category identifies one vocabulary-driven lexical class.
type Category string

const (
	Keyword  Category = "keyword"
	Constant Category = "constant"
	Type     Category = "type"
	Function Category = "function"
	Operator Category = "operator"
	Property Category = "property"
)

// Categories lists every category in the order the generated grammar tries them.
var Categories = []Category{Keyword, Type, Constant, Function, Property, Operator}

// ErrUnknownCategory is returned when a category name is not one of Categories.
var ErrUnknownCategory = errors.Base("unknown category")

// ParseCategory accepts a category name, case-insensitively. The plural forms
// used by the vocabulary file names ("keywords", "variable-types") are accepted too.
func ParseCategory(name string) (Category, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "keyword", "keywords":
		return Keyword, nil
	case "constant", "constants":
		return Constant, nil
	case "type", "types", "variable-types":
		return Type, nil
	case "function", "functions":
		return Function, nil
	case "operator", "operators":
		return Operator, nil
	case "property", "properties":
		return Property, nil
	default:
		return "", errors.Errorf("%w: %q", ErrUnknownCategory, name)
	}
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsWord reports whether entries of c are words, as opposed to operator symbols.
func (c Category) IsWord() bool {
	return c != Operator
}
