package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

var errNotInVocabulary = errors.Base("not in vocabulary")

func newVocabCommand(fs afero.Fs, root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect the loaded vocabularies",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "contains <category> <word>",
			Short: "Check whether a word is recognised by a category, ignoring accents and case",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runContains(cmd.Context(), fs, root, args[0], args[1], cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show per-category entry and key counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStats(cmd.Context(), fs, root, cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "lint",
			Short: "Report accent collisions and suspicious plural merges",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runLint(cmd.Context(), fs, root, cmd.OutOrStdout())
			},
		},
	)

	return cmd
}

func runContains(ctx context.Context, fs afero.Fs, root *rootOptions, category, word string, out io.Writer) error {
	c, err := lexicon.ParseCategory(category)
	if err != nil {
		return err
	}

	_, reg, err := root.load(ctx, fs)
	if err != nil {
		return err
	}

	idx, err := lexicon.NewIndex(reg.Entries(c), lexicon.KeyerFor(c))
	if err != nil {
		return errors.Errorf("building %s index: %w", c, err)
	}

	key := lexicon.KeyerFor(c).Key(word)
	pos, ok := idx.Lookup(key)
	if !ok {
		fmt.Fprintf(out, "'%s' NOT in %s vocabulary (key %q)\n", word, c, key)
		return errors.Errorf("%w: %s %q", errNotInVocabulary, c, word)
	}

	fmt.Fprintf(out, "'%s' exists in %s vocabulary as '%s' (key %q)\n", word, c, reg.Entries(c)[pos], key)
	return nil
}

func runStats(ctx context.Context, fs afero.Fs, root *rootOptions, out io.Writer) error {
	cfg, reg, err := root.load(ctx, fs)
	if err != nil {
		return err
	}

	indices, err := lexicon.NewIndices(ctx, reg)
	if err != nil {
		return errors.Errorf("building indices: %w", err)
	}

	fmt.Fprintf(out, "Language: %s (%s)\n", cfg.Title, cfg.Language)
	fmt.Fprintf(out, "%-9s %8s %8s %11s\n", "category", "entries", "keys", "collisions")
	for _, c := range lexicon.Categories {
		fmt.Fprintf(out, "%-9s %8d %8d %11d\n", c, reg.Len(c), indices.Of(c).Len(), len(reg.Collisions(c)))
	}
	fmt.Fprintf(out, "Total entries: %d\n", reg.Total())

	return nil
}

func runLint(ctx context.Context, fs afero.Fs, root *rootOptions, out io.Writer) error {
	_, reg, err := root.load(ctx, fs)
	if err != nil {
		return err
	}

	findings := 0
	for _, c := range lexicon.Categories {
		for _, group := range reg.Collisions(c) {
			fmt.Fprintf(out, "%s: spellings share one key: %s\n", c, strings.Join(group, ", "))
			findings++
		}
		for _, entry := range reg.Entries(c) {
			if strings.TrimSpace(entry) == "" {
				fmt.Fprintf(out, "%s: blank entry\n", c)
				findings++
			}
		}
	}

	for _, w := range lexicon.LintPlurals(reg.Entries(lexicon.Type)) {
		fmt.Fprintf(out, "type: %q is merged with %q but stems to %q\n", w.Entry, w.Base, w.Stem)
		findings++
	}

	fmt.Fprintf(out, "%d finding(s)\n", findings)
	return nil
}
