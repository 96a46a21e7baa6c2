package langsvc

import (
	"context"
	"slices"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/diagnostic"
)

// Program returns the engine's program seen through the workspace: root
// names are source names, diagnostics are translated and emitted files are
// attributed to the source they came from. The wrapper is cached per
// workspace version.
func (d *Decorator) Program(ctx context.Context) (Program, error) {
	p, err := d.program.Load(d.ws.Version(), func() (*translatedProgram, error) {
		inner, err := d.Engine.Program(ctx)
		if err != nil {
			return nil, errors.Errorf("getting program: %w", err)
		}
		if inner == nil {
			return nil, errors.WithStack(ErrNoProgram)
		}
		return &translatedProgram{inner: inner, d: d}, nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

type translatedProgram struct {
	inner Program
	d     *Decorator
}

func (p *translatedProgram) RootFileNames() []string {
	var out []string
	for _, name := range p.inner.RootFileNames() {
		if entry, ok := p.d.ws.Lookup(name); ok {
			name = entry.SourceFile
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func (p *translatedProgram) Diagnostics(ctx context.Context) ([]diagnostic.Diagnostic, error) {
	raw, err := p.inner.Diagnostics(ctx)
	if err != nil {
		return nil, errors.Errorf("getting program diagnostics: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.d.translateDiagnostics(ctx, raw), nil
}

func (p *translatedProgram) Emit(ctx context.Context) ([]EmitFile, error) {
	files, err := p.inner.Emit(ctx)
	if err != nil {
		return nil, errors.Errorf("emitting program: %w", err)
	}
	out := make([]EmitFile, 0, len(files))
	for _, f := range files {
		if entry, ok := p.d.ws.Lookup(f.SourceFile); ok {
			f.SourceFile = entry.SourceFile
		}
		out = append(out, f)
	}
	return out, nil
}
