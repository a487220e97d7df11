package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
	"github.com/wlangage/prism-wlangage/pkg/highlight"
	"github.com/wlangage/prism-wlangage/pkg/lexicon"
	"github.com/wlangage/prism-wlangage/pkg/vocab"
)

const (
	iterations = 100000
	warmup     = 1000
	boxWidth   = 62

	// ANSI color codes
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

var line = strings.Repeat("─", boxWidth)

// sample is used when no vocabulary file is found.
var sample = map[lexicon.Category][]string{
	lexicon.Keyword:  {"SI", "SINON", "ALORS", "FIN", "POUR TOUT", "TANTQUE", "PROCÉDURE", "RENVOYER"},
	lexicon.Function: {"Trace", "Info", "Erreur", "fSauveTexte", "ChaîneVersUTF8"},
	lexicon.Constant: {"Vrai", "Faux", "Null"},
	lexicon.Type:     {"entier", "entiers", "chaîne", "chaînes", "booléen", "tableau"},
	lexicon.Operator: {"=", "<>", "+", "-", "*", "/", "ET", "OU"},
}

func main() {
	ctx := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).WithContext(context.Background())

	fmt.Print("Loading WLangage vocabularies... ")
	start := time.Now()
	reg, err := loadRegistry(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	h, err := highlight.NewHighlighter(ctx, reg, highlight.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("done (%d entries in %v)\n", reg.Total(), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Iterations: %d (warmup: %d)\n", iterations, warmup)
	fmt.Println("Reference: 1 second = 1,000,000,000 ns")
	fmt.Println()

	lightCfg := highlight.DefaultConfig()
	lightCfg.Options.Light = true
	light, err := highlight.NewHighlighter(ctx, reg, lightCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Test data
	shortLine := "Si x Sinon y"
	call := `Trace("résultat : " + x)`
	block := `PROCÉDURE interne Calcul(x est un entier)
SI x <> 0 ALORS Trace(x) SINON MaFonction(x.Libellé) FIN // fin`

	printHeader("FULL PIPELINE THROUGHPUT")
	bench("Short line", iterations, func() { h.Highlight(shortLine) })
	bench("Builtin call", iterations, func() { h.Highlight(call) })
	bench("Block (2 lines)", iterations, func() { h.Highlight(block) })
	bench("Block (light)", iterations, func() { light.Highlight(block) })
	printFooter()
	fmt.Println()

	printHeader("COMPONENT BREAKDOWN")
	engine, err := highlight.NewEngine(h.Definition())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	bench("Engine tokenize", iterations, func() {
		engine.Tokenize(block)
	})

	tokens := engine.Tokenize(block)
	r := h.Reclassifier()
	r.ClearCache()
	r.Reclassify(tokens)
	bench("Reclassify (cache hit)", iterations, func() {
		r.Reclassify(tokens)
	})

	uncached := highlight.NewReclassifierNoCache(h.Indices())
	bench("Reclassify (no cache)", iterations, func() {
		uncached.Reclassify(tokens)
	})

	functions := h.Indices().Of(lexicon.Function)
	bench("Index match", iterations, func() {
		functions.Match("CHAINEVERSUTF8")
	})
	printFooter()
	fmt.Println()

	printHeader("KEY STEPS BREAKDOWN")
	bench("NFC canonical", iterations, func() {
		lexicon.Canonical("Chaîne")
	})
	bench("Accent fold", iterations, func() {
		lexicon.Fold("Procédure")
	})
	bench("Accent fold (ASCII)", iterations, func() {
		lexicon.Fold("Procedure")
	})
	bench("Lowercase", iterations, func() {
		lexicon.Lowercase("PROCÉDURE")
	})
	typeKeyer := lexicon.KeyerFor(lexicon.Type)
	bench("Type key (full)", iterations, func() {
		typeKeyer.Key("Chaînes")
	})
	printFooter()
	fmt.Println()

	printHeader("GENERATION")
	bench("Compile keywords", iterations/100, func() {
		lexicon.Compile(lexicon.Keyword, reg.Entries(lexicon.Keyword))
	})
	bench("Build indices", iterations/100, func() {
		_, _ = lexicon.NewIndices(ctx, reg)
	})
	bench("Render Prism.js", iterations/100, func() {
		_, _ = grammar.RenderPrism(h.Definition())
	})
	printFooter()
}

// loadRegistry reads the vocabularies named by the optional config argument,
// falling back to the built-in sample when nothing is found.
func loadRegistry(ctx context.Context) (*lexicon.Registry, error) {
	fs := afero.NewOsFs()

	cfg := vocab.DefaultConfig()
	if len(os.Args) > 1 {
		var err error
		cfg, err = vocab.LoadConfig(fs, os.Args[1])
		if err != nil {
			return nil, err
		}
	}

	sources, err := cfg.Sources()
	if err != nil {
		return nil, err
	}

	reg, _ := vocab.Load(ctx, fs, sources)
	if reg != nil && reg.Total() > 0 {
		return reg, nil
	}

	reg = lexicon.NewRegistry()
	for c, entries := range sample {
		if err := reg.Set(c, entries); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func bench(name string, n int, fn func()) {
	for i := 0; i < warmup; i++ {
		fn()
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		fn()
	}
	elapsed := time.Since(start)

	opsPerSec := float64(n) / elapsed.Seconds()
	nsPerOp := float64(elapsed.Nanoseconds()) / float64(n)

	displayName := name
	if len(displayName) > 26 {
		displayName = displayName[:26]
	}

	// Pad the plain string, then colorize
	plain := fmt.Sprintf("  %-26s %10.0f ops/sec %8.0f ns", displayName, opsPerSec, nsPerOp)
	colored := fmt.Sprintf("  %-26s %s%10.0f%s ops/sec %s%8.0f%s ns",
		displayName,
		colorGreen, opsPerSec, colorReset,
		colorYellow, nsPerOp, colorReset)
	if extra := boxWidth - len(plain); extra > 0 {
		colored += strings.Repeat(" ", extra)
	}

	fmt.Println(colorDim + "│" + colorReset + colored + colorDim + "│" + colorReset)
}

func padLine(content string) string {
	if len(content) >= boxWidth {
		return content[:boxWidth]
	}
	return content + strings.Repeat(" ", boxWidth-len(content))
}

func printHeader(title string) {
	fmt.Println(colorDim + "┌" + line + "┐" + colorReset)
	fmt.Println(colorDim + "│" + colorReset + colorCyan + padLine("  "+title) + colorReset + colorDim + "│" + colorReset)
	fmt.Println(colorDim + "├" + line + "┤" + colorReset)
}

func printFooter() {
	fmt.Println(colorDim + "└" + line + "┘" + colorReset)
}
