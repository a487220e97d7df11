package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/wlangage/prism-wlangage/pkg/lexicon"
	"github.com/wlangage/prism-wlangage/pkg/vocab"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	debug      bool
	configPath string
	strict     bool
}

func run() error {
	opts := &rootOptions{}
	fs := afero.NewOsFs()

	rootCmd := &cobra.Command{
		Use:          "wlgen",
		Short:        "Generate WLangage syntax highlighting from vocabulary files",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if opts.debug {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config (defaults to the JSON vocabularies of the working directory)")
	rootCmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "fail when a vocabulary source is missing or unreadable")

	rootCmd.AddCommand(
		newGenerateCommand(fs, opts),
		newHighlightCommand(fs, opts),
		newVocabCommand(fs, opts),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}

// load reads the configuration and every vocabulary it names. Skipped
// sources are already logged by the loader; they only fail in strict mode.
func (o *rootOptions) load(ctx context.Context, fs afero.Fs) (*vocab.Config, *lexicon.Registry, error) {
	cfg := vocab.DefaultConfig()
	if o.configPath != "" {
		var err error
		cfg, err = vocab.LoadConfig(fs, o.configPath)
		if err != nil {
			return nil, nil, errors.Errorf("loading config: %w", err)
		}
	}

	sources, err := cfg.Sources()
	if err != nil {
		return nil, nil, err
	}

	reg, err := vocab.Load(ctx, fs, sources)
	if reg == nil || (err != nil && o.strict) {
		return nil, nil, errors.Errorf("loading vocabularies: %w", err)
	}

	return cfg, reg, nil
}
