package vocab

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

func testContext() context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func testFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestReadFile(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/v/keywords.json":    `["SI", "SINON", "POUR TOUT"]`,
		"/v/types.yaml":       "- entier\n- chaîne\n",
		"/v/functions.txt":    "# built-ins\nTrace\n\n  Info  \n#Obsolète\n",
		"/v/broken.json":      `["SI",`,
		"/v/empty-entry.json": `["", "FIN"]`,
	})

	tests := []struct {
		name     string
		path     string
		expected []string
		wantErr  bool
	}{
		{"test_json_array", "/v/keywords.json", []string{"SI", "SINON", "POUR TOUT"}, false},
		{"test_yaml_sequence", "/v/types.yaml", []string{"entier", "chaîne"}, false},
		{"test_text_lines", "/v/functions.txt", []string{"Trace", "Info"}, false},
		{"test_empty_entries_kept", "/v/empty-entry.json", []string{"", "FIN"}, false},
		{"test_invalid_json", "/v/broken.json", nil, true},
		{"test_missing_file", "/v/missing.json", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(fs, tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGlob(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/v/b.txt":         "",
		"/v/a.txt":         "",
		"/v/nested/c.txt":  "",
		"/v/nested/d.json": "",
		"/other/e.txt":     "",
	})

	tests := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{"test_single_level", "/v/*.txt", []string{"/v/a.txt", "/v/b.txt"}},
		{"test_recursive", "/v/**/*.txt", []string{"/v/a.txt", "/v/b.txt", "/v/nested/c.txt"}},
		{"test_alternatives", "/v/nested/*.{txt,json}", []string{"/v/nested/c.txt", "/v/nested/d.json"}},
		{"test_literal", "/other/e.txt", []string{"/other/e.txt"}},
		{"test_literal_missing", "/other/f.txt", nil},
		{"test_literal_directory", "/v/nested", nil},
		{"test_missing_base", "/nowhere/**/*.txt", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Glob(fs, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := Glob(fs, "/v/[.txt")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/v/keywords.json":       `["SI", "SINON"]`,
		"/v/extra/keywords.txt":  "FIN\nSI\n",
		"/v/operators.json":      `["=", "<>"]`,
		"/v/variable-types.json": `["entier",`,
	})

	reg, err := Load(testContext(), fs, map[lexicon.Category][]string{
		lexicon.Keyword:  {"/v/keywords.json", "/v/extra/*.txt"},
		lexicon.Operator: {"/v/operators.json"},
		lexicon.Type:     {"/v/variable-types.json"},
		lexicon.Function: {"/v/functions.json"},
	})

	require.NotNil(t, reg, "the registry is returned even when sources are skipped")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.Len(t, multierr.Errors(err), 2)

	assert.Equal(t, []string{"SI", "SINON", "FIN"}, reg.Entries(lexicon.Keyword))
	assert.Equal(t, []string{"=", "<>"}, reg.Entries(lexicon.Operator))
	assert.Equal(t, 0, reg.Len(lexicon.Type))
	assert.Equal(t, 0, reg.Len(lexicon.Function))
	assert.Equal(t, 0, reg.Len(lexicon.Property))
}

func TestLoad_NothingFound(t *testing.T) {
	reg, err := Load(testContext(), afero.NewMemMapFs(), defaultSources(t))
	require.Error(t, err)
	assert.Equal(t, 0, reg.Total())
	assert.True(t, errors.Is(reg.Validate(testContext()), lexicon.ErrNoVocabulary))
}

func defaultSources(t *testing.T) map[lexicon.Category][]string {
	t.Helper()

	sources, err := DefaultConfig().Sources()
	require.NoError(t, err)
	return sources
}

func TestLoadConfig(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/project/wlgen.yaml": `
language: wlangage
aliases: [wl, windev]
vocabularies:
  keywords: [data/keywords.json, data/extra/*.txt]
  variable-types: [/shared/types.json]
output:
  dir: out
  formats: [prism]
`,
	})

	cfg, err := LoadConfig(fs, "/project/wlgen.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/project", cfg.BaseDir)
	assert.Equal(t, "WLangage", cfg.Title)
	assert.Equal(t, "source.wlangage", cfg.Scope)
	assert.Equal(t, []string{"wl", "windev"}, cfg.Aliases)
	assert.Equal(t, []string{"wl", "wdw", "wdg"}, cfg.FileTypes)
	assert.True(t, cfg.Wants(FormatPrism))
	assert.False(t, cfg.Wants(FormatTextMate))
	assert.Equal(t, "/project/out/prism-wlangage.js", cfg.OutputPath("prism-wlangage.js"))

	sources, err := cfg.Sources()
	require.NoError(t, err)
	assert.Equal(t, map[lexicon.Category][]string{
		lexicon.Keyword: {"/project/data/keywords.json", "/project/data/extra/*.txt"},
		lexicon.Type:    {"/shared/types.json"},
	}, sources)

	opts := cfg.Options()
	assert.Equal(t, "wlangage", opts.Language)
	assert.False(t, opts.Light)
}

func TestLoadConfig_Light(t *testing.T) {
	fs := testFs(t, map[string]string{
		"/p/wlgen.yaml": "language: wlangage-light\nlight: true\n",
	})

	cfg, err := LoadConfig(fs, "/p/wlgen.yaml")
	require.NoError(t, err)
	assert.Equal(t, "source.wlangage-light", cfg.Scope)
	assert.True(t, cfg.Options().Light)

	sources, err := cfg.Sources()
	require.NoError(t, err)
	assert.Contains(t, sources, lexicon.Keyword)
	assert.Contains(t, sources, lexicon.Operator)
	assert.NotContains(t, sources, lexicon.Function)
	assert.NotContains(t, sources, lexicon.Constant)
	assert.NotContains(t, sources, lexicon.Type)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"test_unknown_field", "langage: wlangage\n", nil},
		{"test_unknown_category", "vocabularies:\n  widgets: [w.json]\n", lexicon.ErrUnknownCategory},
		{"test_unknown_format", "output:\n  formats: [vim]\n", nil},
		{"test_invalid_yaml", "vocabularies: [\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := testFs(t, map[string]string{"/p/wlgen.yaml": tt.content})

			_, err := LoadConfig(fs, "/p/wlgen.yaml")
			require.Error(t, err)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target))
			}
		})
	}

	_, err := LoadConfig(afero.NewMemMapFs(), "/missing.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_Empty(t *testing.T) {
	fs := testFs(t, map[string]string{"/p/wlgen.yaml": ""})

	cfg, err := LoadConfig(fs, "/p/wlgen.yaml")
	require.NoError(t, err)
	assert.Equal(t, "wlangage", cfg.Language)
	assert.Equal(t, "/p/dist/wlangage.tmLanguage.json", cfg.OutputPath("wlangage.tmLanguage.json"))
	assert.Len(t, cfg.Vocabularies, 5)
}
