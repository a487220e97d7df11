package vocab

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/wlangage/prism-wlangage/pkg/lexicon"
)

// ErrNoMatch is reported for a vocabulary pattern that matched no file.
var ErrNoMatch = errors.Base("pattern matched no file")

// Load reads the vocabulary files of every category into a registry, in
// the order of the patterns and, within a pattern, in path order.
//
// A pattern that matches nothing or a file that cannot be read leaves its
// category short and is logged. The registry is returned in every case;
// the error aggregates what was skipped so callers can decide whether a
// partial vocabulary is acceptable.
func Load(ctx context.Context, fs afero.Fs, sources map[lexicon.Category][]string) (*lexicon.Registry, error) {
	logger := zerolog.Ctx(ctx)
	reg := lexicon.NewRegistry()

	var problems error
	skip := func(c lexicon.Category, err error) {
		logger.Warn().Err(err).Str("category", string(c)).Msg("skipping vocabulary source")
		problems = multierr.Append(problems, err)
	}

	for _, c := range lexicon.Categories {
		patterns, ok := sources[c]
		if !ok {
			continue
		}

		var entries []string
		for _, pattern := range patterns {
			files, err := Glob(fs, pattern)
			if err != nil {
				skip(c, err)
				continue
			}
			if len(files) == 0 {
				skip(c, errors.Errorf("%w: %s", ErrNoMatch, pattern))
				continue
			}

			for _, file := range files {
				read, err := ReadFile(fs, file)
				if err != nil {
					skip(c, err)
					continue
				}
				logger.Debug().Str("category", string(c)).Str("file", file).Int("entries", len(read)).Msg("loaded vocabulary file")
				entries = append(entries, read...)
			}
		}

		if err := reg.Set(c, entries); err != nil {
			return nil, err
		}
		logger.Info().Str("category", string(c)).Int("entries", reg.Len(c)).Msg("loaded vocabulary")
	}

	return reg, problems
}

// Glob returns the regular files of fs matching pattern, sorted. Patterns
// use doublestar syntax, so "**" crosses directories.
func Glob(fs afero.Fs, pattern string) ([]string, error) {
	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return nil, errors.Errorf("invalid vocabulary pattern %q", pattern)
	}

	if !strings.ContainsAny(slashed, "*?[{") {
		info, err := fs.Stat(pattern)
		if err != nil || info.IsDir() {
			return nil, nil
		}
		return []string{pattern}, nil
	}

	base, _ := doublestar.SplitPattern(slashed)

	var matches []string
	err := afero.Walk(fs, filepath.FromSlash(base), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ok, _ := doublestar.Match(slashed, filepath.ToSlash(path)); ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", base, err)
	}

	sort.Strings(matches)
	return matches, nil
}

// ReadFile parses one vocabulary file. ".json" files hold an array of
// strings, ".yaml" and ".yml" files a sequence of strings; anything else is
// read as one entry per line, skipping blank lines and "#" comments.
func ReadFile(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	var entries []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, errors.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, errors.Errorf("parsing %s: %w", path, err)
		}
	default:
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			entries = append(entries, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Errorf("scanning %s: %w", path, err)
		}
	}

	return entries, nil
}
