package lexical_test

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/embedls/pkg/langsvc"
	"github.com/walteh/embedls/pkg/lexical"
	"github.com/walteh/embedls/pkg/position"
)

// memoryHost serves scripts from a map. Every set bumps the version of that
// file and of the project.
type memoryHost struct {
	files    map[string]string
	versions map[string]int
	project  int
}

func newHost(files map[string]string) *memoryHost {
	h := &memoryHost{files: map[string]string{}, versions: map[string]int{}}
	for name, text := range files {
		h.set(name, text)
	}
	return h
}

func (h *memoryHost) set(name, text string) {
	h.files[name] = text
	h.versions[name]++
	h.project++
}

func (h *memoryHost) ScriptFileNames() []string {
	names := make([]string, 0, len(h.files))
	for name := range h.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (h *memoryHost) ScriptSnapshot(name string) (string, bool) {
	t, ok := h.files[name]
	return t, ok
}

func (h *memoryHost) ScriptVersion(name string) int { return h.versions[name] }

func (h *memoryHost) FileExists(name string) bool {
	_, ok := h.files[name]
	return ok
}

func (h *memoryHost) ProjectVersion() int { return h.project }

func at(t *testing.T, text, needle string, n int) int {
	t.Helper()
	off := -1
	for i := 0; i <= n; i++ {
		idx := strings.Index(text[off+1:], needle)
		require.GreaterOrEqual(t, idx, 0, "%q not found", needle)
		off += idx + 1
	}
	return off
}

func span(t *testing.T, text, needle string, n int) position.Span {
	t.Helper()
	off := at(t, text, needle, n)
	return position.NewSpan(off, off+len(needle))
}

const mainTS = `import { helper } from "./util"

const count = 1
function render() {
	return helper(count)
}
export const unusedExport = 2
`

const utilTS = `export function helper(n: number) {
	return n
}
`

func TestEngine_Navigation(t *testing.T) {
	ctx := context.Background()
	e := lexical.New(newHost(map[string]string{"main.ts": mainTS, "util.ts": utilTS}))

	defs, err := e.Definition(ctx, "main.ts", at(t, mainTS, "count", 1)+2)
	require.NoError(t, err)
	assert.Equal(t, []langsvc.Location{{File: "main.ts", Span: span(t, mainTS, "count", 0)}}, defs)

	refs, err := e.References(ctx, "main.ts", at(t, mainTS, "helper", 1))
	require.NoError(t, err)
	want := []langsvc.Location{
		{File: "main.ts", Span: span(t, mainTS, "helper", 0)},
		{File: "main.ts", Span: span(t, mainTS, "helper", 1)},
		{File: "util.ts", Span: span(t, utilTS, "helper", 0)},
	}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}

	impl, err := e.Implementation(ctx, "main.ts", at(t, mainTS, "helper", 1))
	require.NoError(t, err)
	assert.Equal(t, []langsvc.Location{{File: "util.ts", Span: span(t, utilTS, "helper", 0)}}, impl)

	none, err := e.References(ctx, "main.ts", at(t, mainTS, "=", 0)+1)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = e.Definition(ctx, "missing.ts", 0)
	require.ErrorIs(t, err, lexical.ErrUnknownFile)
}

func TestEngine_Diagnostics(t *testing.T) {
	ctx := context.Background()
	host := newHost(map[string]string{"main.ts": mainTS})
	e := lexical.New(host)

	syn, err := e.SyntacticDiagnostics(ctx, "main.ts")
	require.NoError(t, err)
	assert.Empty(t, syn)

	sem, err := e.SemanticDiagnostics(ctx, "main.ts")
	require.NoError(t, err)
	require.Len(t, sem, 1)
	assert.Equal(t, "'render' is declared but its value is never read.", sem[0].Message)
	assert.Equal(t, span(t, mainTS, "render", 0), sem[0].Span)

	host.set("main.ts", "const = 1;\n")
	syn, err = e.SyntacticDiagnostics(ctx, "main.ts")
	require.NoError(t, err)
	assert.NotEmpty(t, syn)
}

func TestEngine_Completions(t *testing.T) {
	ctx := context.Background()
	text := "const counter = 1\nconst country = 2\nconst other = 3\ncou"
	e := lexical.New(newHost(map[string]string{"main.ts": text}))

	list, err := e.Completions(ctx, "main.ts", len(text))
	require.NoError(t, err)

	var names []string
	for _, item := range list.Items {
		names = append(names, item.Name)
		require.NotNil(t, item.Replace)
		assert.Equal(t, position.NewSpan(len(text)-3, len(text)), *item.Replace)
	}
	assert.Equal(t, []string{"counter", "country"}, names)
}

func TestEngine_Hover(t *testing.T) {
	ctx := context.Background()
	e := lexical.New(newHost(map[string]string{"main.ts": mainTS, "util.ts": utilTS}))

	h, err := e.Hover(ctx, "main.ts", at(t, mainTS, "count", 1))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, span(t, mainTS, "count", 1), h.Span)
	assert.Equal(t, "(variable) count\n\nconst count = 1", h.Contents)

	h, err = e.Hover(ctx, "main.ts", at(t, mainTS, "{", 0))
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestEngine_Format(t *testing.T) {
	ctx := context.Background()
	text := "function f() {\n\treturn 1  \n   \n}"
	e := lexical.New(newHost(map[string]string{"main.ts": text}))

	edits, err := e.Format(ctx, "main.ts", langsvc.FormatOptions{
		TabSize:                2,
		InsertSpaces:           true,
		TrimTrailingWhitespace: true,
		InsertFinalNewline:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "function f() {\n  return 1\n\n}\n", apply(text, edits))
}

func apply(text string, edits []langsvc.TextEdit) string {
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b langsvc.TextEdit) int { return b.Span.Start - a.Span.Start })
	for _, e := range sorted {
		text = text[:e.Span.Start] + e.NewText + text[e.Span.End:]
	}
	return text
}

func TestEngine_OrganizeImports(t *testing.T) {
	ctx := context.Background()
	text := "import { b } from \"./b\"\nimport { a } from \"./a\"\n\nb(a)\n"
	e := lexical.New(newHost(map[string]string{"main.ts": text}))

	edits, err := e.OrganizeImports(ctx, "main.ts")
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "main.ts", edits[0].File)
	assert.Equal(t, "import { a } from \"./a\"\nimport { b } from \"./b\"\n\nb(a)\n", apply(text, edits[0].Edits))

	sorted := lexical.New(newHost(map[string]string{"main.ts": apply(text, edits[0].Edits)}))
	edits, err = sorted.OrganizeImports(ctx, "main.ts")
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestEngine_FileRenameEdits(t *testing.T) {
	ctx := context.Background()
	app := "import { x } from \"../comp/a.cmp\"\nimport { y } from \"./other\"\nx(y)\n"
	e := lexical.New(newHost(map[string]string{
		"src/app.ts":    app,
		"comp/a.cmp.ts": "export const x = 1\n",
		"src/other.ts":  "export const y = 1\n",
	}))

	edits, err := e.FileRenameEdits(ctx, "comp/a.cmp.ts", "comp/b.cmp.ts")
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "src/app.ts", edits[0].File)
	assert.Equal(t, "import { x } from \"../comp/b.cmp\"\nimport { y } from \"./other\"\nx(y)\n", apply(app, edits[0].Edits))
}

func TestEngine_FoldingRanges(t *testing.T) {
	ctx := context.Background()
	e := lexical.New(newHost(map[string]string{"main.ts": mainTS}))

	ranges, err := e.FoldingRanges(ctx, "main.ts")
	require.NoError(t, err)
	require.NotEmpty(t, ranges)
	body := at(t, mainTS, "{\n\treturn", 0)
	assert.Contains(t, ranges, langsvc.FoldingRange{Span: position.NewSpan(body, at(t, mainTS, "}", 1)+1), Kind: "region"})
}

func TestEngine_ReparsesChangedText(t *testing.T) {
	ctx := context.Background()
	host := newHost(map[string]string{"main.ts": "const a = 1\n"})
	e := lexical.New(host)

	defs, err := e.Definition(ctx, "main.ts", 6)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	// same version, different text
	host.files["main.ts"] = "const bb = 1\nbb\n"
	defs, err = e.Definition(ctx, "main.ts", len("const bb = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, []langsvc.Location{{File: "main.ts", Span: position.NewSpan(6, 8)}}, defs)
}

func TestEngine_Program(t *testing.T) {
	ctx := context.Background()
	e := lexical.New(newHost(map[string]string{"main.ts": mainTS, "util.ts": utilTS}))

	p, err := e.Program(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.ts", "util.ts"}, p.RootFileNames())

	diags, err := p.Diagnostics(ctx)
	require.NoError(t, err)
	assert.Len(t, diags, 1)

	out, err := p.Emit(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, langsvc.EmitFile{SourceFile: "util.ts", Name: "util.js", Text: utilTS}, out[1])
}
