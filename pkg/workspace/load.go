package workspace

import (
	"context"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// LoadFiles opens every file under root matching one of include and none of
// exclude. Patterns use doublestar syntax and are relative to root. Files
// that fail to load are skipped and reported together.
func (p *Project) LoadFiles(ctx context.Context, root string, include, exclude []string) ([]string, error) {
	fsys := afero.NewIOFS(p.fs)

	seen := map[string]struct{}{}
	var (
		loaded []string
		errs   error
	)
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, path.Join(root, pattern), doublestar.WithFilesOnly())
		if err != nil {
			errs = multierr.Append(errs, errors.Errorf("expanding %q: %w", pattern, err))
			continue
		}
		for _, name := range matches {
			if err := ctx.Err(); err != nil {
				return loaded, errors.Errorf("loading files: %w", err)
			}
			if _, dup := seen[name]; dup || excluded(root, name, exclude) {
				continue
			}
			seen[name] = struct{}{}

			b, err := afero.ReadFile(p.fs, name)
			if err != nil {
				errs = multierr.Append(errs, errors.Errorf("reading %s: %w", name, err))
				continue
			}
			p.AddFile(ctx, name, string(b))
			loaded = append(loaded, name)
		}
	}

	p.logger(ctx).Debug().Int("files", len(loaded)).Str("root", root).Msg("loaded project files")
	return loaded, errs
}

func excluded(root, name string, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(path.Join(root, pattern), name); ok {
			return true
		}
	}
	return false
}
