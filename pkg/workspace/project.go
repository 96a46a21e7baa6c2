// Package workspace keeps the documents of one project, their embedded
// forests and the registry in step with edits, and exposes the project to a
// language engine with generated files in place of the sources they came
// from.
package workspace

import (
	"context"
	"maps"
	"slices"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/embedded"
)

var ErrFileNotFound = errors.Base("file not found")

// Options configures a Project.
type Options struct {
	// Fs backs files that were never opened. Defaults to an empty in-memory
	// file system.
	Fs        afero.Fs
	Composers []embedded.Composer
	// ScriptLanguages lists the embed languages handed to the engine as
	// scripts. Defaults to typescript.
	ScriptLanguages []string
}

// Project is not safe for concurrent use. Edits and queries are expected to
// be serialized by the caller.
type Project struct {
	id              xid.ID
	fs              afero.Fs
	composers       []embedded.Composer
	scriptLanguages map[string]struct{}

	docs     map[string]*embedded.Document
	registry *embedded.Registry
	version  int
}

func NewProject(opts Options) *Project {
	if opts.Fs == nil {
		opts.Fs = afero.NewMemMapFs()
	}
	if len(opts.ScriptLanguages) == 0 {
		opts.ScriptLanguages = []string{"typescript"}
	}
	langs := make(map[string]struct{}, len(opts.ScriptLanguages))
	for _, l := range opts.ScriptLanguages {
		langs[l] = struct{}{}
	}
	return &Project{
		id:              xid.New(),
		fs:              opts.Fs,
		composers:       opts.Composers,
		scriptLanguages: langs,
		docs:            map[string]*embedded.Document{},
		registry:        embedded.NewRegistry(),
	}
}

func (p *Project) ID() string {
	return p.id.String()
}

func (p *Project) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("project_id", p.id.String()).Logger()
	return &l
}

// AddFile opens name with text. Adding a file that is already open updates
// it instead.
func (p *Project) AddFile(ctx context.Context, name, text string) *embedded.Document {
	if _, ok := p.docs[name]; ok {
		doc, _ := p.UpdateFile(ctx, name, text)
		return doc
	}
	doc := embedded.BuildForest(ctx, p.composers, name, text)
	p.docs[name] = doc
	p.registry.Replace(name, doc.Root)
	p.bump(ctx, "add", name)
	return doc
}

// UpdateFile replaces the text of an open file and rebuilds its forest.
// Identical text is a no-op: the same document is returned and the version
// does not move.
func (p *Project) UpdateFile(ctx context.Context, name, text string) (*embedded.Document, error) {
	old, ok := p.docs[name]
	if !ok {
		return nil, errors.Errorf("updating %s: %w", name, ErrFileNotFound)
	}
	if old.Text == text {
		return old, nil
	}
	doc := embedded.Rebuild(ctx, p.composers, old, text)
	p.docs[name] = doc
	p.registry.Replace(name, doc.Root)
	p.bump(ctx, "update", name)
	return doc, nil
}

func (p *Project) DeleteFile(ctx context.Context, name string) error {
	if _, ok := p.docs[name]; !ok {
		return errors.Errorf("deleting %s: %w", name, ErrFileNotFound)
	}
	delete(p.docs, name)
	p.registry.Remove(name)
	p.bump(ctx, "delete", name)
	return nil
}

func (p *Project) bump(ctx context.Context, op, name string) {
	p.version++
	p.logger(ctx).Debug().
		Str("op", op).
		Str("file", name).
		Int("project_version", p.version).
		Int("registry_size", p.registry.Len()).
		Msg("project changed")
}

// Version is bumped by every real change to the document set.
func (p *Project) Version() int {
	return p.version
}

func (p *Project) Document(name string) (*embedded.Document, bool) {
	doc, ok := p.docs[name]
	return doc, ok
}

// Documents returns the open documents sorted by name.
func (p *Project) Documents() []*embedded.Document {
	out := make([]*embedded.Document, 0, len(p.docs))
	for _, name := range slices.Sorted(maps.Keys(p.docs)) {
		out = append(out, p.docs[name])
	}
	return out
}

func (p *Project) Lookup(generated string) (embedded.Entry, bool) {
	return p.registry.Lookup(generated)
}

func (p *Project) Registry() *embedded.Registry {
	return p.registry
}

// HasSourceFile reports whether name is an open document of the project.
func (p *Project) HasSourceFile(name string) bool {
	_, ok := p.docs[name]
	return ok
}

func (p *Project) IsScriptLanguage(languageID string) bool {
	_, ok := p.scriptLanguages[languageID]
	return ok
}
