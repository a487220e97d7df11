package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/wlangage/prism-wlangage/pkg/highlight"
	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

type highlightHandler struct {
	root    *rootOptions
	fs      afero.Fs
	noCache bool
	classes bool
}

func newHighlightCommand(fs afero.Fs, root *rootOptions) *cobra.Command {
	me := &highlightHandler{root: root, fs: fs}

	cmd := &cobra.Command{
		Use:   "highlight [text...]",
		Short: "Print the corrected token tree of WLangage source as JSON",
		Long:  "Print the corrected token tree of WLangage source as JSON. Without text, read lines interactively.",
	}

	cmd.Flags().BoolVar(&me.noCache, "no-cache", false, "disable the reclassification cache")
	cmd.Flags().BoolVar(&me.classes, "classified", false, "print only the classified tokens")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), args, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *highlightHandler) Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cfg, reg, err := me.root.load(ctx, me.fs)
	if err != nil {
		return err
	}

	h, err := highlight.NewHighlighter(ctx, reg, highlight.Config{Cache: !me.noCache, Options: cfg.Options()})
	if err != nil {
		return err
	}

	if len(args) > 0 {
		output, err := me.render(h, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "%s highlighter (interactive mode)\n", cfg.Title)
	for _, c := range lexicon.Categories {
		fmt.Fprintf(out, "  %-9s %d entries\n", c, reg.Len(c))
	}
	fmt.Fprintln(out, "Type a line of source, press Enter to highlight. Ctrl+D to exit.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		text := scanner.Text()
		if text == "" {
			continue
		}

		output, err := me.render(h, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s\n\n", output)
	}

	return scanner.Err()
}

func (me *highlightHandler) render(h *highlight.Highlighter, text string) ([]byte, error) {
	tokens := h.Highlight(text)
	if me.classes {
		tokens = highlight.Classified(tokens)
	}

	output, err := json.Marshal(tokens)
	if err != nil {
		return nil, errors.Errorf("encoding tokens: %w", err)
	}
	return output, nil
}
