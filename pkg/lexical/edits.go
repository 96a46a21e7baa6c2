package lexical

import (
	"context"
	"path"
	"slices"
	"strings"

	"github.com/walteh/embedls/pkg/langsvc"
	"github.com/walteh/embedls/pkg/position"
)

func (e *Engine) FoldingRanges(ctx context.Context, file string) ([]langsvc.FoldingRange, error) {
	pf, err := e.file(ctx, file)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(pf.folds)
	if n := len(pf.imports); n > 1 {
		span := pf.imports[0].span.Cover(pf.imports[n-1].span)
		if pf.lines.Place(span.Start).Line != pf.lines.Place(span.End).Line {
			out = append(out, langsvc.FoldingRange{Span: span, Kind: "imports"})
		}
	}
	return out, nil
}

// Format re-indents lines with the configured unit and optionally trims
// trailing whitespace and adds a final newline. Indentation depth is read
// from the existing leading whitespace, not from the syntax tree.
func (e *Engine) Format(ctx context.Context, file string, opts langsvc.FormatOptions) ([]langsvc.TextEdit, error) {
	pf, err := e.file(ctx, file)
	if err != nil {
		return nil, err
	}
	tab := opts.TabSize
	if tab <= 0 {
		tab = 4
	}

	var edits []langsvc.TextEdit
	for i := 0; i < pf.lines.LineCount(); i++ {
		start := pf.lines.LineStart(i)
		line := pf.lines.Line(i)
		body := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(body)]

		if body != "" {
			width := 0
			for _, r := range indent {
				if r == '\t' {
					width += tab - width%tab
				} else {
					width++
				}
			}
			want := strings.Repeat(" ", width)
			if !opts.InsertSpaces {
				want = strings.Repeat("\t", width/tab) + strings.Repeat(" ", width%tab)
			}
			if want != indent {
				edits = append(edits, langsvc.TextEdit{Span: position.NewSpan(start, start+len(indent)), NewText: want})
			}
		}

		if opts.TrimTrailingWhitespace {
			if body == "" && indent != "" {
				edits = append(edits, langsvc.TextEdit{Span: position.NewSpan(start, start+len(indent)), NewText: ""})
			} else if trimmed := strings.TrimRight(line, " \t"); len(trimmed) < len(line) {
				edits = append(edits, langsvc.TextEdit{Span: position.NewSpan(start+len(trimmed), start+len(line)), NewText: ""})
			}
		}
	}

	if opts.InsertFinalNewline && pf.text != "" && !strings.HasSuffix(pf.text, "\n") {
		end := len(pf.text)
		edits = append(edits, langsvc.TextEdit{Span: position.NewSpan(end, end), NewText: "\n"})
	}
	return edits, nil
}

// OrganizeImports sorts the leading run of import statements by module
// specifier.
func (e *Engine) OrganizeImports(ctx context.Context, file string) ([]langsvc.FileEdits, error) {
	pf, err := e.file(ctx, file)
	if err != nil {
		return nil, err
	}
	if len(pf.imports) < 2 {
		return nil, nil
	}

	sorted := slices.Clone(pf.imports)
	slices.SortStableFunc(sorted, func(a, b importDecl) int {
		return strings.Compare(a.spec, b.spec)
	})
	if slices.EqualFunc(sorted, pf.imports, func(a, b importDecl) bool { return a.span == b.span }) {
		return nil, nil
	}

	lines := make([]string, len(sorted))
	for i, imp := range sorted {
		lines[i] = pf.text[imp.span.Start:imp.span.End]
	}
	span := pf.imports[0].span.Cover(pf.imports[len(pf.imports)-1].span)
	return []langsvc.FileEdits{{
		File:  file,
		Edits: []langsvc.TextEdit{{Span: span, NewText: strings.Join(lines, "\n")}},
	}}, nil
}

var scriptExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

func trimScriptExt(name string) string {
	for _, ext := range scriptExtensions {
		if s, ok := strings.CutSuffix(name, ext); ok {
			return s
		}
	}
	return name
}

// FileRenameEdits rewrites relative import specifiers that resolve to
// oldName so they point at newName.
func (e *Engine) FileRenameEdits(ctx context.Context, oldName, newName string) ([]langsvc.FileEdits, error) {
	scripts, err := e.scripts(ctx)
	if err != nil {
		return nil, err
	}
	target := trimScriptExt(path.Clean(oldName))

	var out []langsvc.FileEdits
	for _, pf := range scripts {
		if pf.name == oldName {
			continue
		}
		dir := path.Dir(pf.name)
		var edits []langsvc.TextEdit
		for _, imp := range pf.imports {
			if !strings.HasPrefix(imp.spec, "./") && !strings.HasPrefix(imp.spec, "../") {
				continue
			}
			resolved := path.Join(dir, imp.spec)
			if resolved != target && resolved != path.Clean(oldName) {
				continue
			}
			spec := relativeSpec(dir, newName)
			if trimScriptExt(imp.spec) == imp.spec {
				spec = trimScriptExt(spec)
			}
			edits = append(edits, langsvc.TextEdit{Span: imp.specSpan, NewText: spec})
		}
		if len(edits) > 0 {
			out = append(out, langsvc.FileEdits{File: pf.name, Edits: edits})
		}
	}
	return out, nil
}

// relativeSpec spells target relative to dir the way import specifiers do.
func relativeSpec(dir, target string) string {
	dir = path.Clean(dir)
	target = path.Clean(target)
	from := strings.Split(dir, "/")
	to := strings.Split(target, "/")
	if dir == "." {
		from = nil
	}
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	parts := make([]string, 0, len(from)-i+len(to)-i)
	for range from[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[i:]...)
	spec := strings.Join(parts, "/")
	if !strings.HasPrefix(spec, "../") {
		spec = "./" + spec
	}
	return spec
}
