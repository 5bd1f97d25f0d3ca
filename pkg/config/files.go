package config

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📂 ExpandFiles resolves the Files globs against Root and returns the
// matching regular files, sorted and without duplicates. A pattern that
// matches nothing is an error so a typo never silently edits zero files.
func (cfg *RuleSet) ExpandFiles(ctx context.Context) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	root := cfg.Root()
	fsys := os.DirFS(root)

	seen := map[string]bool{}
	var out []string
	for _, pattern := range cfg.Files {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid pattern %q", pattern)
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files match %q in %s", pattern, root)
		}

		logger.Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("expanded file pattern")
		for _, m := range matches {
			p := filepath.Join(root, filepath.FromSlash(m))
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	sort.Strings(out)
	return out, nil
}
