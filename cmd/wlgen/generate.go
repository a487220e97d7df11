package main

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
	"github.com/wlangage/prism-wlangage/pkg/highlight"
	"github.com/wlangage/prism-wlangage/pkg/lexicon"
	"github.com/wlangage/prism-wlangage/pkg/vocab"
)

type generateHandler struct {
	root   *rootOptions
	fs     afero.Fs
	outDir string
}

func newGenerateCommand(fs afero.Fs, root *rootOptions) *cobra.Command {
	me := &generateHandler{root: root, fs: fs}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the Prism.js language definition and the TextMate grammar",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().StringVarP(&me.outDir, "out", "o", "", "output directory, overriding the config")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *generateHandler) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	cfg, reg, err := me.root.load(ctx, me.fs)
	if err != nil {
		return err
	}
	if me.outDir != "" {
		abs, err := filepath.Abs(me.outDir)
		if err != nil {
			return errors.Errorf("resolving output directory: %w", err)
		}
		cfg.Output.Dir = abs
	}

	opts := cfg.Options()

	var indices *lexicon.Indices
	if !opts.Light {
		indices, err = lexicon.NewIndices(ctx, reg)
		if err != nil {
			return errors.Errorf("building indices: %w", err)
		}
	}

	def, err := grammar.Build(ctx, reg, indices, opts)
	if err != nil {
		return errors.Errorf("building definition: %w", err)
	}

	// Every rule must also compile for the Go engine before anything is written.
	if _, err := highlight.NewEngine(def); err != nil {
		return err
	}

	if cfg.Wants(vocab.FormatPrism) {
		data, err := grammar.RenderPrism(def)
		if err != nil {
			return errors.Errorf("rendering prism definition: %w", err)
		}
		if err := me.write(ctx, cfg.OutputPath("prism-"+opts.Language+".js"), data); err != nil {
			return err
		}
	}

	if cfg.Wants(vocab.FormatTextMate) {
		data, err := grammar.RenderTextMate(def)
		if err != nil {
			return errors.Errorf("rendering textmate grammar: %w", err)
		}
		if err := me.write(ctx, cfg.OutputPath(opts.Language+".tmLanguage.json"), data); err != nil {
			return err
		}
	}

	for _, c := range lexicon.Categories {
		logger.Info().Str("category", string(c)).Int("entries", def.Counts[c]).Msg("generated category")
	}

	return nil
}

func (me *generateHandler) write(ctx context.Context, path string, data []byte) error {
	if err := me.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("creating output directory: %w", err)
	}
	if err := afero.WriteFile(me.fs, path, data, 0o644); err != nil {
		return errors.Errorf("writing %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Info().Str("path", path).Int("bytes", len(data)).Msg("wrote artifact")
	return nil
}
