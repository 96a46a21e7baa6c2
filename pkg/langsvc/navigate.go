package langsvc

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/casing"
	"github.com/walteh/embedls/pkg/mapping"
	"github.com/walteh/embedls/pkg/position"
	"github.com/walteh/embedls/pkg/teleport"
)

type locationsCall func(Engine, context.Context, string, int) ([]Location, error)

// navigation describes one position query that follows teleports.
type navigation struct {
	name       string
	call       locationsCall
	capability mapping.Capabilities
	teleport   teleport.Flags
}

var (
	navDefinition = navigation{
		name:       "definition",
		call:       Engine.Definition,
		capability: mapping.Definition,
		teleport:   teleport.Definition,
	}
	navTypeDefinition = navigation{
		name:       "type definition",
		call:       Engine.TypeDefinition,
		capability: mapping.Definition,
		teleport:   teleport.Definition,
	}
	navImplementation = navigation{
		name:       "implementation",
		call:       Engine.Implementation,
		capability: mapping.Definition,
		teleport:   teleport.Definition,
	}
	navReferences = navigation{
		name:       "references",
		call:       Engine.References,
		capability: mapping.References,
		teleport:   teleport.Reference,
	}
	navRename = navigation{
		name:       "rename",
		call:       Engine.RenameLocations,
		capability: mapping.Rename,
		teleport:   teleport.Rename,
	}
)

type visitKey struct {
	file   string
	offset int
}

// traversal holds the state of one teleport walk. Every (file, offset) pair
// is queried at most once, so cyclic links terminate.
type traversal struct {
	nav     navigation
	engine  Engine
	visited map[visitKey]struct{}
	pending []visitKey
	hits    []Location
}

func (d *Decorator) walk(ctx context.Context, tr *traversal) error {
	for len(tr.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		at := tr.pending[len(tr.pending)-1]
		tr.pending = tr.pending[:len(tr.pending)-1]

		hits, err := tr.nav.call(tr.engine, ctx, at.file, at.offset)
		if err != nil {
			return errors.Errorf("querying %s at %s:%d: %w", tr.nav.name, at.file, at.offset, err)
		}
		tr.hits = append(tr.hits, hits...)

		for _, hit := range hits {
			entry, ok := d.ws.Lookup(hit.File)
			if !ok {
				continue
			}
			for alt := range entry.File.Teleports.Find(hit.Span.Start, tr.nav.teleport) {
				tr.push(hit.File, alt)
			}
		}
	}
	return nil
}

func (tr *traversal) push(file string, offset int) {
	k := visitKey{file: file, offset: offset}
	if _, seen := tr.visited[k]; seen {
		return
	}
	tr.visited[k] = struct{}{}
	tr.pending = append(tr.pending, k)
}

// sourceHit is a traversal result mapped back to a source file, together
// with the entry it went through.
type sourceHit struct {
	Location
	mapping mapping.Mapping
}

// navigate runs nav from a source position and returns the de-duplicated
// source locations it reaches, in discovery order.
func (d *Decorator) navigate(ctx context.Context, nav navigation, file string, offset int) ([]sourceHit, error) {
	filter := mapping.Require(nav.capability)
	targets, managed := d.targets(file, nav.capability)

	// one traversal per engine, since each engine resolves its own files
	var walks []*traversal
	walkFor := func(eng Engine) *traversal {
		for _, w := range walks {
			if w.engine == eng {
				return w
			}
		}
		w := &traversal{nav: nav, engine: eng, visited: map[visitKey]struct{}{}}
		walks = append(walks, w)
		return w
	}

	if !managed {
		walkFor(d.Engine).push(file, offset)
	}
	for _, t := range targets {
		for genOffset := range t.file.Map.ToGeneratedOffsets(offset, filter) {
			walkFor(t.engine).push(t.file.ID, genOffset)
		}
	}

	var hits []Location
	for _, w := range walks {
		if err := d.walk(ctx, w); err != nil {
			return nil, errors.Errorf("running %s from %s:%d: %w", nav.name, file, offset, err)
		}
		hits = append(hits, w.hits...)
	}

	type dedupKey struct {
		file string
		span position.Span
	}
	seen := map[dedupKey]struct{}{}
	out := make([]sourceHit, 0, len(hits))
	for _, hit := range hits {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("running %s from %s:%d: %w", nav.name, file, offset, err)
		}
		loc, m, ok := d.toSourceWithMapping(hit, filter)
		if !ok {
			continue
		}
		k := dedupKey{file: loc.File, span: loc.Span}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, sourceHit{Location: loc, mapping: m})
	}

	zerolog.Ctx(ctx).Debug().
		Str("query", nav.name).
		Str("file", file).
		Int("offset", offset).
		Int("raw", len(hits)).
		Int("translated", len(out)).
		Msg("navigation complete")

	return out, nil
}

func (d *Decorator) locations(ctx context.Context, nav navigation, file string, offset int) ([]Location, error) {
	hits, err := d.navigate(ctx, nav, file, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Location, len(hits))
	for i, h := range hits {
		out[i] = h.Location
	}
	return out, nil
}

func (d *Decorator) Definition(ctx context.Context, file string, offset int) ([]Location, error) {
	return d.locations(ctx, navDefinition, file, offset)
}

func (d *Decorator) TypeDefinition(ctx context.Context, file string, offset int) ([]Location, error) {
	return d.locations(ctx, navTypeDefinition, file, offset)
}

func (d *Decorator) Implementation(ctx context.Context, file string, offset int) ([]Location, error) {
	return d.locations(ctx, navImplementation, file, offset)
}

func (d *Decorator) References(ctx context.Context, file string, offset int) ([]Location, error) {
	return d.locations(ctx, navReferences, file, offset)
}

func (d *Decorator) RenameLocations(ctx context.Context, file string, offset int) ([]Location, error) {
	return d.locations(ctx, navRename, file, offset)
}

// Rename returns the edits renaming the symbol at offset to newName, grouped
// by file in discovery order. Hits reached through an entry with a rename
// style are respelled, so a kebab-case usage of a camelCase declaration stays
// kebab-case. A name typed at a respelled position is read back as camelCase
// first.
func (d *Decorator) Rename(ctx context.Context, file string, offset int, newName string) ([]FileEdits, error) {
	hits, err := d.navigate(ctx, navRename, file, offset)
	if err != nil {
		return nil, err
	}
	if d.respelledAt(file, offset) {
		newName = casing.Camelize(newName)
	}
	var out []FileEdits
	index := map[string]int{}
	for _, h := range hits {
		text := newName
		if h.mapping.RenameStyle != casing.Preserve {
			text = h.mapping.RenameStyle.Apply(newName)
		}
		i, ok := index[h.File]
		if !ok {
			i = len(out)
			index[h.File] = i
			out = append(out, FileEdits{File: h.File})
		}
		out[i].Edits = append(out[i].Edits, TextEdit{Span: h.Span, NewText: text})
	}
	return out, nil
}

func (d *Decorator) respelledAt(file string, offset int) bool {
	targets, _ := d.targets(file, mapping.Rename)
	for _, t := range targets {
		for _, m := range t.file.Map.ToGeneratedOffsets(offset, mapping.ForRename) {
			if m.RenameStyle != casing.Preserve {
				return true
			}
		}
	}
	return false
}
