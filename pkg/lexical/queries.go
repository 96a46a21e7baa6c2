package lexical

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/embedls/pkg/diagnostic"
	"github.com/walteh/embedls/pkg/langsvc"
	"github.com/walteh/embedls/pkg/position"
)

func (e *Engine) SyntacticDiagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error) {
	pf, err := e.file(ctx, file)
	if err != nil {
		return nil, err
	}
	return slices.Clone(pf.syntax), nil
}

// SemanticDiagnostics reports declarations that are never referenced in
// their own file. Exported declarations and parameters are exempt.
func (e *Engine) SemanticDiagnostics(ctx context.Context, file string) ([]diagnostic.Diagnostic, error) {
	pf, err := e.file(ctx, file)
	if err != nil {
		return nil, err
	}
	used := map[string]int{}
	for _, s := range pf.symbols {
		if !s.decl {
			used[s.name]++
		}
	}
	var out []diagnostic.Diagnostic
	for _, s := range pf.symbols {
		if !s.decl || s.exported || used[s.name] > 0 {
			continue
		}
		switch s.kind {
		case kindVariable, kindFunction, kindClass, kindImport:
		default:
			continue
		}
		out = append(out, diagnostic.Diagnostic{
			File:     file,
			Span:     s.span,
			Message:  fmt.Sprintf("'%s' is declared but its value is never read.", s.name),
			Severity: diagnostic.SeverityHint,
			Code:     "6133",
			Source:   "lexical",
		})
	}
	return out, nil
}

type match struct {
	file *parsedFile
	sym  symbol
}

// matches returns every symbol of the project spelled like the one at
// (file, offset), the file itself first.
func (e *Engine) matches(ctx context.Context, file string, offset int, keep func(symbol) bool) ([]match, error) {
	pf, err := e.file(ctx, file)
	if err != nil {
		return nil, err
	}
	at, ok := pf.symbolAt(offset)
	if !ok {
		return nil, nil
	}
	scripts, err := e.scripts(ctx)
	if err != nil {
		return nil, err
	}
	files := []*parsedFile{pf}
	for _, s := range scripts {
		if s.name != pf.name {
			files = append(files, s)
		}
	}

	var out []match
	for _, f := range files {
		for _, s := range f.symbols {
			if s.name == at.name && (keep == nil || keep(s)) {
				out = append(out, match{file: f, sym: s})
			}
		}
	}
	return out, nil
}

func locations(ms []match) []langsvc.Location {
	out := make([]langsvc.Location, len(ms))
	for i, m := range ms {
		out[i] = langsvc.Location{File: m.file.name, Span: m.sym.span}
	}
	return out
}

func isDecl(s symbol) bool { return s.decl }

// Definition returns the first declaration of the name, preferring the
// queried file.
func (e *Engine) Definition(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	ms, err := e.matches(ctx, file, offset, isDecl)
	if err != nil || len(ms) == 0 {
		return nil, err
	}
	return locations(ms[:1]), nil
}

func (e *Engine) TypeDefinition(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	ms, err := e.matches(ctx, file, offset, func(s symbol) bool {
		return s.decl && (s.kind == kindType || s.kind == kindClass)
	})
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return e.Definition(ctx, file, offset)
	}
	return locations(ms), nil
}

func (e *Engine) Implementation(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	ms, err := e.matches(ctx, file, offset, func(s symbol) bool {
		return s.decl && (s.kind == kindFunction || s.kind == kindClass || s.kind == kindMethod)
	})
	if err != nil {
		return nil, err
	}
	return locations(ms), nil
}

func (e *Engine) References(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	ms, err := e.matches(ctx, file, offset, nil)
	if err != nil {
		return nil, err
	}
	return locations(ms), nil
}

func (e *Engine) RenameLocations(ctx context.Context, file string, offset int) ([]langsvc.Location, error) {
	return e.References(ctx, file, offset)
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Completions offers every declared name of the project starting with the
// identifier typed before offset.
func (e *Engine) Completions(ctx context.Context, file string, offset int) (*langsvc.CompletionList, error) {
	pf, err := e.file(ctx, file)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset > len(pf.text) {
		return &langsvc.CompletionList{}, nil
	}
	start := offset
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(pf.text[:start])
		if !isIdentRune(r) {
			break
		}
		start -= size
	}
	prefix := pf.text[start:offset]

	var replace *position.Span
	if prefix != "" {
		s := position.NewSpan(start, offset)
		replace = &s
	}

	scripts, err := e.scripts(ctx)
	if err != nil {
		return nil, err
	}
	files := append([]*parsedFile{pf}, scripts...)

	list := &langsvc.CompletionList{}
	seen := map[string]struct{}{}
	for _, f := range files {
		for _, s := range f.symbols {
			if !s.decl || !strings.HasPrefix(s.name, prefix) || s.name == prefix {
				continue
			}
			if _, dup := seen[s.name]; dup {
				continue
			}
			seen[s.name] = struct{}{}
			list.Items = append(list.Items, langsvc.CompletionItem{
				Name:    s.name,
				Kind:    string(s.kind),
				Replace: replace,
			})
		}
	}
	slices.SortStableFunc(list.Items, func(a, b langsvc.CompletionItem) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list, nil
}

func (e *Engine) Hover(ctx context.Context, file string, offset int) (*langsvc.Hover, error) {
	pf, err := e.file(ctx, file)
	if err != nil {
		return nil, err
	}
	at, ok := pf.symbolAt(offset)
	if !ok {
		return nil, nil
	}
	ms, err := e.matches(ctx, file, offset, isDecl)
	if err != nil {
		return nil, err
	}
	contents := fmt.Sprintf("(%s) %s", at.kind, at.name)
	if len(ms) > 0 {
		d := ms[0]
		line := d.file.lines.Line(d.file.lines.Place(d.sym.span.Start).Line)
		contents = fmt.Sprintf("(%s) %s\n\n%s", d.sym.kind, d.sym.name, strings.TrimSpace(line))
	}
	return &langsvc.Hover{Span: at.span, Contents: contents}, nil
}
