package grammar

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gitlab.com/tozd/go/errors"

	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

//go:embed prism.js.tmpl
var prismSource string

var prismTemplate = template.Must(template.New("prism").Delims("<%", "%>").Parse(prismSource))

type prismEntry struct {
	Key   string
	Value string
}

type prismCount struct {
	Label string
	Count int
}

type prismData struct {
	*Definition
	Entries   []prismEntry
	Counts    []prismCount
	FoldTable string
	Tables    string
	Languages string
}

// RenderPrism renders d as a Prism.js language definition. Outside light
// mode the output also registers an after-tokenize hook that corrects
// token categories with the embedded lookup tables.
func RenderPrism(d *Definition) ([]byte, error) {
	data := prismData{Definition: d}

	for _, group := range groupByKind(d.Rules) {
		data.Entries = append(data.Entries, prismEntry{
			Key:   quoteJS(string(group[0].Kind)),
			Value: prismGroup(group, "\t"),
		})
	}

	for _, c := range lexicon.Categories {
		if d.Light && !(c == lexicon.Keyword || c == lexicon.Operator) {
			continue
		}
		data.Counts = append(data.Counts, prismCount{Label: string(c), Count: d.Counts[c]})
	}

	if !d.Light {
		fold := make(map[string]string)
		for accented, plain := range lexicon.FoldTable() {
			fold[string(accented)] = string(plain)
		}
		foldJSON, err := json.Marshal(fold)
		if err != nil {
			return nil, errors.Errorf("encoding fold table: %w", err)
		}
		data.FoldTable = string(foldJSON)

		tables := make(map[string]map[string]int, len(d.Tables))
		for c, keys := range d.Tables {
			table := make(map[string]int, len(keys))
			for _, key := range keys {
				table[key] = 1
			}
			tables[string(c)] = table
		}
		tablesJSON, err := json.Marshal(tables)
		if err != nil {
			return nil, errors.Errorf("encoding lookup tables: %w", err)
		}
		data.Tables = string(tablesJSON)

		langs, err := json.Marshal(append([]string{d.Language}, d.Aliases...))
		if err != nil {
			return nil, errors.Errorf("encoding language names: %w", err)
		}
		data.Languages = string(langs)
	}

	var buf bytes.Buffer
	if err := prismTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Errorf("executing prism template: %w", err)
	}

	return buf.Bytes(), nil
}

// groupByKind groups rules sharing a kind, in order of first appearance.
// Prism stores alternatives for one token name as an array.
func groupByKind(rules []Rule) [][]Rule {
	var order []Kind
	groups := make(map[Kind][]Rule)
	for _, r := range rules {
		if _, ok := groups[r.Kind]; !ok {
			order = append(order, r.Kind)
		}
		groups[r.Kind] = append(groups[r.Kind], r)
	}

	out := make([][]Rule, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k])
	}
	return out
}

func prismGroup(group []Rule, indent string) string {
	if len(group) == 1 {
		return prismRule(group[0], indent)
	}

	var b strings.Builder
	b.WriteString("[\n")
	for i, r := range group {
		b.WriteString(indent + "\t" + prismRule(r, indent+"\t"))
		if i < len(group)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + "]")
	return b.String()
}

func prismRule(r Rule, indent string) string {
	literal := RegexLiteral(r)
	if !r.Greedy && len(r.Inside) == 0 {
		return literal
	}

	var fields []string
	fields = append(fields, "pattern: "+literal)
	if r.Greedy {
		fields = append(fields, "greedy: true")
	}
	if len(r.Inside) > 0 {
		var b strings.Builder
		b.WriteString("inside: {\n")
		inner := groupByKind(r.Inside)
		for i, group := range inner {
			fmt.Fprintf(&b, "%s\t\t%s: %s", indent, quoteJS(string(group[0].Kind)), prismGroup(group, indent+"\t\t"))
			if i < len(inner)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(indent + "\t}")
		fields = append(fields, b.String())
	}

	return "{\n" + indent + "\t" + strings.Join(fields, ",\n"+indent+"\t") + "\n" + indent + "}"
}

// RegexLiteral renders r as an ECMAScript regex literal, boundaries included.
func RegexLiteral(r Rule) string {
	source := LookaroundSource(r)

	var flags []string
	if r.IgnoreCase {
		flags = append(flags, "i")
	}
	if r.Multiline {
		flags = append(flags, "m")
	}
	if strings.Contains(source, `\p{`) || containsNonASCII(source) {
		flags = append(flags, "u")
	}
	sort.Strings(flags)

	return "/" + escapeSlashes(source) + "/" + strings.Join(flags, "")
}

// LookaroundSource renders the pattern of r with its boundary requirements
// expressed as lookarounds, the way ECMAScript and Oniguruma both accept.
func LookaroundSource(r Rule) string {
	if !r.WordStart && !r.WordEnd && !r.CallSuffix && !r.AfterDot {
		return r.Pattern
	}

	var b strings.Builder
	if r.AfterDot {
		b.WriteString(`(?<=\.)`)
	}
	if r.WordStart {
		b.WriteString(`(?<!` + wordChars + `)`)
	}
	b.WriteString("(?:" + r.Pattern + ")")
	if r.CallSuffix {
		b.WriteString(`(?=\s*\()`)
	}
	if r.WordEnd {
		b.WriteString(`(?!` + wordChars + `)`)
	}
	return b.String()
}

// escapeSlashes escapes every "/" not already escaped.
func escapeSlashes(source string) string {
	var b strings.Builder
	escaped := false
	for _, r := range source {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '/':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func containsNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}

func quoteJS(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
