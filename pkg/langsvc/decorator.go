package langsvc

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/diagnostic"
	"github.com/walteh/embedls/pkg/embedded"
	"github.com/walteh/embedls/pkg/mapping"
)

// Decorator answers Engine queries in source coordinates. Queries on managed
// source files are fanned out to the embedded files of their forest and the
// results are mapped back. Files no composer owns go straight to the engine;
// only the hits are translated.
//
// Methods the decorator does not override are served by the embedded Engine
// unchanged.
type Decorator struct {
	Engine

	ws       Workspace
	services *Services
	program  embedded.Versioned[*translatedProgram]
}

var _ Engine = (*Decorator)(nil)

func NewDecorator(engine Engine, ws Workspace, services *Services) *Decorator {
	return &Decorator{
		Engine:   engine,
		ws:       ws,
		services: services,
	}
}

// engineFor picks the engine serving f: the wrapped engine for its own
// language and for every script language of the workspace, a registered
// secondary engine otherwise.
func (d *Decorator) engineFor(f *embedded.File) (Engine, bool) {
	if f.LanguageID == d.Engine.LanguageID() || d.ws.IsScriptLanguage(f.LanguageID) {
		return d.Engine, true
	}
	return d.services.Engine(f.LanguageID)
}

type target struct {
	file   *embedded.File
	engine Engine
}

// targets lists the embedded files of source that take part in capability
// and have an engine. managed is false when no composer owns source.
func (d *Decorator) targets(source string, capability mapping.Capabilities) (out []target, managed bool) {
	doc, ok := d.ws.Document(source)
	if !ok || !doc.Managed() {
		return nil, false
	}
	for f := range doc.Files() {
		if !f.Capabilities.Has(capability) {
			continue
		}
		if eng, ok := d.engineFor(f); ok {
			out = append(out, target{file: f, engine: eng})
		}
	}
	return out, true
}

func (d *Decorator) SyntacticDiagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error) {
	return d.diagnostics(ctx, file, Engine.SyntacticDiagnostics)
}

func (d *Decorator) SemanticDiagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error) {
	return d.diagnostics(ctx, file, Engine.SemanticDiagnostics)
}

// Diagnostics returns syntactic followed by semantic diagnostics.
func (d *Decorator) Diagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error) {
	syn, err := d.SyntacticDiagnostics(ctx, file)
	if err != nil {
		return nil, err
	}
	sem, err := d.SemanticDiagnostics(ctx, file)
	if err != nil {
		return nil, err
	}
	return append(syn, sem...), nil
}

type diagnosticsCall func(Engine, context.Context, string) ([]diagnostic.Diagnostic, error)

func (d *Decorator) diagnostics(ctx context.Context, file string, call diagnosticsCall) ([]diagnostic.Diagnostic, error) {
	targets, managed := d.targets(file, mapping.Diagnostics)
	if !managed {
		raw, err := call(d.Engine, ctx, file)
		if err != nil {
			return nil, errors.Errorf("getting diagnostics for %s: %w", file, err)
		}
		return d.translateDiagnostics(ctx, raw), nil
	}

	var out []diagnostic.Diagnostic
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("getting diagnostics for %s: %w", file, err)
		}
		raw, err := call(t.engine, ctx, t.file.ID)
		if err != nil {
			return nil, errors.Errorf("getting diagnostics for %s: %w", t.file.ID, err)
		}
		out = append(out, d.translateDiagnostics(ctx, raw)...)
	}
	return out, nil
}

func (d *Decorator) translateDiagnostics(ctx context.Context, raw []diagnostic.Diagnostic) []diagnostic.Diagnostic {
	out := make([]diagnostic.Diagnostic, 0, len(raw))
	for _, diag := range raw {
		if tr, ok := d.translateDiagnostic(diag); ok {
			out = append(out, tr)
		}
	}
	if dropped := len(raw) - len(out); dropped > 0 {
		zerolog.Ctx(ctx).Trace().Int("dropped", dropped).Int("kept", len(out)).Msg("translated diagnostics")
	}
	return out
}

// translateDiagnostic maps a diagnostic and its related information to
// source coordinates. Related entries that cannot be mapped are dropped; the
// diagnostic itself is dropped when its own span cannot.
func (d *Decorator) translateDiagnostic(diag diagnostic.Diagnostic) (diagnostic.Diagnostic, bool) {
	loc, ok := d.toSource(Location{File: diag.File, Span: diag.Span}, mapping.ForDiagnostics)
	if !ok {
		return diagnostic.Diagnostic{}, false
	}
	diag.File = loc.File
	diag.Span = loc.Span

	if len(diag.Related) > 0 {
		related := make([]diagnostic.RelatedInformation, 0, len(diag.Related))
		for _, rel := range diag.Related {
			loc, ok := d.toSource(Location{File: rel.File, Span: rel.Span}, mapping.ForDiagnostics)
			if !ok {
				continue
			}
			rel.File = loc.File
			rel.Span = loc.Span
			related = append(related, rel)
		}
		diag.Related = related
	}
	return diag, true
}

// toSource maps a location reported by an engine back to the source file.
// Locations in real files are kept as they are. Either way the result must
// still belong to the project.
func (d *Decorator) toSource(loc Location, filter mapping.Filter) (Location, bool) {
	out, _, ok := d.toSourceWithMapping(loc, filter)
	return out, ok
}

func (d *Decorator) toSourceWithMapping(loc Location, filter mapping.Filter) (Location, mapping.Mapping, bool) {
	entry, managed := d.ws.Lookup(loc.File)
	if !managed {
		if !d.ws.HasSourceFile(loc.File) {
			return Location{}, mapping.Mapping{}, false
		}
		return loc, mapping.Mapping{Data: mapping.All}, true
	}
	if !d.ws.HasSourceFile(entry.SourceFile) {
		return Location{}, mapping.Mapping{}, false
	}
	span, m, ok := entry.File.Map.ToSourceSpan(loc.Span, filter)
	if !ok {
		return Location{}, mapping.Mapping{}, false
	}
	return Location{File: entry.SourceFile, Span: span}, m, true
}
