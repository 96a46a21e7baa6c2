// Package session opens a directory as an embedls project: configuration,
// documents, the reference engine and the decorator in front of it.
package session

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/config"
	"github.com/walteh/embedls/pkg/langsvc"
	"github.com/walteh/embedls/pkg/lexical"
	"github.com/walteh/embedls/pkg/workspace"
)

type Options struct {
	// Dir is the project root on disk. When Fs is set it only serves the
	// .editorconfig lookup, and an empty Dir disables that lookup.
	Dir string
	// Fs is rooted at the project. Defaults to Dir on the local disk.
	Fs afero.Fs
	// ConfigPath is relative to the project root. When empty the
	// config.FileNames are tried.
	ConfigPath string
}

type Session struct {
	// Dir is the absolute project root on disk, empty when the project has
	// none.
	Dir        string
	Fs         afero.Fs
	Config     *config.Config
	ConfigPath string
	Project    *workspace.Project
	Engine     *lexical.Engine
	Decorator  *langsvc.Decorator
	Files      []string
}

func Open(ctx context.Context, opts Options) (*Session, error) {
	fs, dir := opts.Fs, opts.Dir
	if fs == nil {
		if dir == "" {
			dir = "."
		}
		fs = afero.NewBasePathFs(afero.NewOsFs(), dir)
	}
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Errorf("resolving project root %s: %w", dir, err)
		}
		dir = abs
	}

	var (
		cfg  *config.Config
		path = opts.ConfigPath
		err  error
	)
	if path != "" {
		cfg, err = config.LoadConfig(fs, path)
	} else {
		cfg, path, err = config.Discover(fs, ".")
	}
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	project := workspace.NewProject(workspace.Options{
		Fs:              fs,
		Composers:       cfg.BuildComposers(),
		ScriptLanguages: cfg.ScriptLanguages,
	})
	files, err := project.LoadFiles(ctx, ".", cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, errors.Errorf("loading project files: %w", err)
	}

	engine := lexical.New(project)
	s := &Session{
		Dir:        dir,
		Fs:         fs,
		Config:     cfg,
		ConfigPath: path,
		Project:    project,
		Engine:     engine,
		Decorator:  langsvc.NewDecorator(engine, project, langsvc.NewServices()),
		Files:      files,
	}

	zerolog.Ctx(ctx).Debug().
		Str("config", path).
		Str("project_id", project.ID()).
		Int("files", len(files)).
		Int("embedded", project.Registry().Len()).
		Msg("session opened")

	return s, nil
}

// Text returns the current text of an open document. It is a
// diagnostic.TextSource.
func (s *Session) Text(name string) (string, bool) {
	doc, ok := s.Project.Document(name)
	if !ok {
		return "", false
	}
	return doc.Text, true
}

// Document returns the open document name, or an error naming the file.
func (s *Session) Document(name string) (string, error) {
	text, ok := s.Text(name)
	if !ok {
		return "", errors.Errorf("%s: %w", name, workspace.ErrFileNotFound)
	}
	return text, nil
}

// FormatOptions resolves the .editorconfig sections that apply to the
// document name. Without a project root on disk the defaults apply.
func (s *Session) FormatOptions(name string) (langsvc.FormatOptions, error) {
	if s.Dir == "" {
		return langsvc.DefaultFormatOptions(), nil
	}
	return langsvc.FormatOptionsForFile(filepath.Join(s.Dir, filepath.FromSlash(name)))
}
