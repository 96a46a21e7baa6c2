package langsvc

import (
	"context"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/walteh/embedls/pkg/mapping"
)

// Format formats every embedded file of file and merges the edits that map
// back to the source. Edits touching scaffolding are dropped.
func (d *Decorator) Format(ctx context.Context, file string, opts FormatOptions) ([]TextEdit, error) {
	targets, managed := d.targets(file, mapping.Format)
	if !managed {
		return d.Engine.Format(ctx, file, opts)
	}

	var (
		edits []TextEdit
		errs  error
	)
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("formatting %s: %w", file, err)
		}
		raw, err := t.engine.Format(ctx, t.file.ID, opts)
		if err != nil {
			errs = multierr.Append(errs, errors.Errorf("formatting %s: %w", t.file.ID, err))
			continue
		}
		for _, e := range raw {
			span, _, ok := t.file.Map.ToSourceSpan(e.Span, mapping.ForFormat)
			if !ok {
				continue
			}
			edits = append(edits, TextEdit{Span: span, NewText: e.NewText})
		}
	}
	if errs != nil {
		return nil, errs
	}
	return normalizeEdits(edits), nil
}

func (d *Decorator) OrganizeImports(ctx context.Context, file string) ([]FileEdits, error) {
	targets, managed := d.targets(file, mapping.CodeActions)
	if !managed {
		raw, err := d.Engine.OrganizeImports(ctx, file)
		if err != nil {
			return nil, err
		}
		return d.translateFileEdits(raw, mapping.ForCodeActions), nil
	}

	var (
		raw  []FileEdits
		errs error
	)
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("organizing imports of %s: %w", file, err)
		}
		edits, err := t.engine.OrganizeImports(ctx, t.file.ID)
		if err != nil {
			errs = multierr.Append(errs, errors.Errorf("organizing imports of %s: %w", t.file.ID, err))
			continue
		}
		raw = append(raw, edits...)
	}
	if errs != nil {
		return nil, errs
	}
	return d.translateFileEdits(raw, mapping.ForCodeActions), nil
}

// FileRenameEdits returns the edits other files need when oldName is renamed
// to newName. For a managed source file every embedded file is renamed to
// the matching generated name, so import paths pointing at any embed are
// updated.
func (d *Decorator) FileRenameEdits(ctx context.Context, oldName, newName string) ([]FileEdits, error) {
	doc, ok := d.ws.Document(oldName)
	if !ok || !doc.Managed() {
		raw, err := d.Engine.FileRenameEdits(ctx, oldName, newName)
		if err != nil {
			return nil, err
		}
		return d.translateFileEdits(raw, mapping.ForCodeActions), nil
	}

	var (
		raw  []FileEdits
		errs error
	)
	for f := range doc.Files() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("renaming %s: %w", oldName, err)
		}
		eng, ok := d.engineFor(f)
		if !ok {
			continue
		}
		if !strings.HasPrefix(f.ID, oldName) {
			continue
		}
		newID := newName + strings.TrimPrefix(f.ID, oldName)
		edits, err := eng.FileRenameEdits(ctx, f.ID, newID)
		if err != nil {
			errs = multierr.Append(errs, errors.Errorf("renaming %s: %w", f.ID, err))
			continue
		}
		raw = append(raw, edits...)
	}
	if errs != nil {
		return nil, errs
	}
	return d.translateFileEdits(raw, mapping.ForCodeActions), nil
}

// translateFileEdits maps each edit to its source file and merges the edits
// by file, keeping the order files were first seen in.
func (d *Decorator) translateFileEdits(raw []FileEdits, filter mapping.Filter) []FileEdits {
	var out []FileEdits
	index := map[string]int{}
	for _, fe := range raw {
		for _, e := range fe.Edits {
			loc, ok := d.toSource(Location{File: fe.File, Span: e.Span}, filter)
			if !ok {
				continue
			}
			i, ok := index[loc.File]
			if !ok {
				i = len(out)
				index[loc.File] = i
				out = append(out, FileEdits{File: loc.File})
			}
			out[i].Edits = append(out[i].Edits, TextEdit{Span: loc.Span, NewText: e.NewText})
		}
	}
	for i := range out {
		out[i].Edits = normalizeEdits(out[i].Edits)
	}
	return out
}

// normalizeEdits sorts edits by position and drops duplicates and edits
// overlapping an earlier one.
func normalizeEdits(edits []TextEdit) []TextEdit {
	slices.SortStableFunc(edits, func(a, b TextEdit) int {
		if a.Span.Start != b.Span.Start {
			return a.Span.Start - b.Span.Start
		}
		return a.Span.End - b.Span.End
	})
	out := edits[:0]
	for _, e := range edits {
		if n := len(out); n > 0 {
			prev := out[n-1]
			if prev == e {
				continue
			}
			if e.Span.Start < prev.Span.End {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// ApplyEdits returns text with non-overlapping edits applied.
func ApplyEdits(text string, edits []TextEdit) string {
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b TextEdit) int { return b.Span.Start - a.Span.Start })
	for _, e := range sorted {
		text = text[:e.Span.Start] + e.NewText + text[e.Span.End:]
	}
	return text
}
