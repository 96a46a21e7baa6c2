package lexical

import (
	"context"

	"github.com/walteh/embedls/pkg/diagnostic"
	"github.com/walteh/embedls/pkg/langsvc"
)

// Program is the engine's project view. Emit is the identity transform.
func (e *Engine) Program(ctx context.Context) (langsvc.Program, error) {
	return &program{engine: e, roots: e.host.ScriptFileNames()}, nil
}

type program struct {
	engine *Engine
	roots  []string
}

func (p *program) RootFileNames() []string {
	return p.roots
}

func (p *program) Diagnostics(ctx context.Context) ([]diagnostic.Diagnostic, error) {
	var out []diagnostic.Diagnostic
	for _, name := range p.roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		syn, err := p.engine.SyntacticDiagnostics(ctx, name)
		if err != nil {
			return nil, err
		}
		sem, err := p.engine.SemanticDiagnostics(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, syn...)
		out = append(out, sem...)
	}
	return out, nil
}

func (p *program) Emit(ctx context.Context) ([]langsvc.EmitFile, error) {
	out := make([]langsvc.EmitFile, 0, len(p.roots))
	for _, name := range p.roots {
		text, ok := p.engine.host.ScriptSnapshot(name)
		if !ok {
			continue
		}
		out = append(out, langsvc.EmitFile{
			SourceFile: name,
			Name:       trimScriptExt(name) + ".js",
			Text:       text,
		})
	}
	return out, nil
}
