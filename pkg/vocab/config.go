package vocab

import (
	"bytes"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/wlangage/prism-wlangage/pkg/grammar"
	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

// Artifact formats the generator can write.
const (
	FormatPrism    = "prism"
	FormatTextMate = "textmate"
)

// Config describes one generation run: the language identity, where each
// vocabulary comes from and what to write.
type Config struct {
	Language  string   `yaml:"language,omitempty"`
	Title     string   `yaml:"title,omitempty"`
	Aliases   []string `yaml:"aliases,omitempty"`
	Scope     string   `yaml:"scope,omitempty"`
	FileTypes []string `yaml:"file_types,omitempty"`
	Light     bool     `yaml:"light,omitempty"`

	// Vocabularies maps a category name to glob patterns of vocabulary
	// files. Relative patterns are resolved against the config directory.
	Vocabularies map[string][]string `yaml:"vocabularies,omitempty"`

	Output Output `yaml:"output,omitempty"`

	// BaseDir is the directory of the config file.
	BaseDir string `yaml:"-"`
}

// Output selects the artifacts and where they go.
type Output struct {
	Dir     string   `yaml:"dir,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
}

// DefaultVocabularies are the file names the generator has always read from
// its working directory.
func DefaultVocabularies() map[string][]string {
	return map[string][]string{
		"keywords":       {"keywords.json"},
		"functions":      {"functions.json"},
		"constants":      {"constants.json"},
		"operators":      {"operators.json"},
		"variable-types": {"variable-types.json"},
	}
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{BaseDir: "."}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a YAML config from fs. Unknown fields are rejected and an
// empty file yields the defaults.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	cfg.BaseDir = filepath.Dir(path)
	cfg.applyDefaults()

	if _, err := cfg.Sources(); err != nil {
		return nil, err
	}
	for _, format := range cfg.Output.Formats {
		if format != FormatPrism && format != FormatTextMate {
			return nil, errors.Errorf("unknown output format %q", format)
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := grammar.DefaultOptions()
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Aliases == nil {
		c.Aliases = def.Aliases
	}
	if c.Scope == "" {
		c.Scope = "source." + c.Language
	}
	if c.FileTypes == nil {
		c.FileTypes = def.FileTypes
	}
	if len(c.Vocabularies) == 0 {
		c.Vocabularies = DefaultVocabularies()
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "dist"
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{FormatPrism, FormatTextMate}
	}
}

// Options returns the grammar options described by c.
func (c *Config) Options() grammar.Options {
	return grammar.Options{
		Language:  c.Language,
		Title:     c.Title,
		Aliases:   c.Aliases,
		Scope:     c.Scope,
		FileTypes: c.FileTypes,
		Light:     c.Light,
	}
}

// Sources resolves the vocabulary patterns of c by category. In light mode
// the function, constant and type vocabularies are not used and are left out.
func (c *Config) Sources() (map[lexicon.Category][]string, error) {
	out := make(map[lexicon.Category][]string, len(c.Vocabularies))

	names := make([]string, 0, len(c.Vocabularies))
	for name := range c.Vocabularies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cat, err := lexicon.ParseCategory(name)
		if err != nil {
			return nil, errors.Errorf("vocabularies: %w", err)
		}
		if c.Light && (cat == lexicon.Function || cat == lexicon.Constant || cat == lexicon.Type) {
			continue
		}
		for _, pattern := range c.Vocabularies[name] {
			out[cat] = append(out[cat], c.resolve(pattern))
		}
	}

	return out, nil
}

// OutputPath returns the path of an artifact file inside the output directory.
func (c *Config) OutputPath(name string) string {
	return c.resolve(filepath.Join(c.Output.Dir, name))
}

// Wants reports whether format is among the configured outputs.
func (c *Config) Wants(format string) bool {
	for _, f := range c.Output.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.BaseDir == "" {
		return path
	}
	return filepath.Join(c.BaseDir, path)
}
