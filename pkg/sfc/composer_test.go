package sfc_test

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/embedls/pkg/casing"
	"github.com/walteh/embedls/pkg/embedded"
	"github.com/walteh/embedls/pkg/mapping"
	"github.com/walteh/embedls/pkg/position"
	"github.com/walteh/embedls/pkg/sfc"
	"github.com/walteh/embedls/pkg/teleport"
)

const component = `<script lang="ts">
export const barFoo = 1
const count = 2
</script>

<template>
  <p>{{ count }}</p>
  <child :bar-foo="count" style="color: red" />
  {{ }}
</template>

<style>
p { color: red; }
</style>
`

// nth returns the span of the n-th (0-based) occurrence of needle at or
// after from.
func nth(t *testing.T, text, needle string, from, n int) position.Span {
	t.Helper()
	off := from
	for i := 0; ; i++ {
		idx := strings.Index(text[off:], needle)
		require.GreaterOrEqual(t, idx, 0, "%q not found", needle)
		off += idx
		if i == n {
			return position.NewSpan(off, off+len(needle))
		}
		off += len(needle)
	}
}

func compose(t *testing.T) *embedded.File {
	t.Helper()
	root, err := sfc.NewComposer().Create(context.Background(), "a.cmp", component)
	require.NoError(t, err)
	require.NotNil(t, root)
	return root
}

func TestComposer_Forest(t *testing.T) {
	root := compose(t)

	var ids []string
	for f := range embedded.All(root) {
		ids = append(ids, f.ID+" "+f.LanguageID)
	}
	assert.Equal(t, []string{
		"a.cmp.ts typescript",
		"a.cmp.template.html html",
		"a.cmp.template.html.inline_0.css css",
		"a.cmp.style_0.css css",
	}, ids)

	want := "\nexport const barFoo = 1\nconst count = 2\n" +
		"\n" +
		"// <template>\n" +
		"declare const __EMB_attrs: Record<string, unknown>;\n" +
		"function __EMB_render() {\n" +
		"\t;(count);\n" +
		"\t__EMB_attrs[\"bar-foo\"] = (count);\n" +
		"\t__EMB_attrs.barFoo;\n" +
		"\t;(undefined);\n" +
		"}\n"
	assert.Equal(t, want, root.Text)

	assert.Equal(t, "\np { color: red; }\n", root.Embeds[1].Text)
	assert.Equal(t, "* { color: red }", root.Embeds[0].Embeds[0].Text)
}

func TestComposer_Mappings(t *testing.T) {
	root := compose(t)
	tmpl := strings.Index(component, "<template>")

	tests := []struct {
		name   string
		source position.Span
		filter mapping.Filter
		want   string
		style  casing.Style
	}{
		{
			name:   "script declaration",
			source: nth(t, component, "count", 0, 0),
			filter: mapping.ForRename,
			want:   "count",
		},
		{
			name:   "interpolation",
			source: nth(t, component, "count", tmpl, 0),
			filter: mapping.ForRename,
			want:   "count",
		},
		{
			name:   "binding expression",
			source: nth(t, component, "count", tmpl, 1),
			filter: mapping.ForDiagnostics,
			want:   "count",
		},
		{
			name:   "binding key",
			source: nth(t, component, "bar-foo", tmpl, 0),
			filter: mapping.ForRename,
			want:   "bar-foo",
			style:  casing.Kebab,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, m, ok := root.Map.ToGeneratedSpan(tt.source, tt.filter)
			require.True(t, ok)
			assert.Equal(t, tt.want, root.Text[gen.Start:gen.End])
			assert.Equal(t, tt.style, m.RenameStyle)

			back, _, ok := root.Map.ToSourceSpan(gen, tt.filter)
			require.True(t, ok)
			assert.Equal(t, tt.source, back)
		})
	}

	// template expressions are never formatted
	_, _, ok := root.Map.ToGeneratedSpan(nth(t, component, "count", tmpl, 0), mapping.ForFormat)
	assert.False(t, ok)

	// scaffolding maps nowhere
	scaffold := strings.Index(root.Text, "__EMB_render")
	for off := range root.Map.ToSourceOffsets(scaffold, nil) {
		t.Errorf("scaffolding mapped to source offset %d", off)
	}
}

func TestComposer_BindingTeleport(t *testing.T) {
	root := compose(t)

	key := strings.Index(root.Text, `"bar-foo"`) + 1
	alias := strings.Index(root.Text, ".barFoo") + 1

	assert.Equal(t, []int{alias}, slices.Collect(root.Teleports.Find(key, teleport.Rename)))
	assert.Equal(t, []int{key}, slices.Collect(root.Teleports.Find(alias, teleport.Definition)))
}

func TestComposer_EmptyInterpolationAnchor(t *testing.T) {
	root := compose(t)
	at := strings.Index(component, "{{ }}") + 3

	var hits []int
	for off, m := range root.Map.ToGeneratedOffsets(at, mapping.ForCompletion) {
		assert.True(t, m.Anchor)
		hits = append(hits, off)
	}
	require.Len(t, hits, 1)
	assert.True(t, strings.HasPrefix(root.Text[hits[0]:], "undefined);"))

	for range root.Map.ToGeneratedOffsets(at, mapping.ForDiagnostics) {
		t.Fatal("anchors only serve completion")
	}
}

func TestComposer_Errors(t *testing.T) {
	ctx := context.Background()
	c := sfc.NewComposer()

	tests := []struct {
		name    string
		file    string
		text    string
		wantNil bool
		wantErr error
	}{
		{name: "not owned", file: "a.ts", text: "let a", wantNil: true},
		{name: "unclosed", file: "a.cmp", text: "<script>let a", wantErr: sfc.ErrUnclosed},
		{name: "duplicate template", file: "a.cmp", text: "<template></template><template></template>", wantErr: sfc.ErrDuplicate},
		{name: "unclosed nested template", file: "a.cmp", text: "<template><template #row></template>", wantErr: sfc.ErrUnclosed},
		{name: "unsupported script language", file: "a.cmp", text: `<script lang="coffee"></script>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := c.Create(ctx, tt.file, tt.text)
			if tt.wantNil {
				assert.NoError(t, err)
				assert.Nil(t, root)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestComposer_Update(t *testing.T) {
	ctx := context.Background()
	c := sfc.NewComposer()

	root := compose(t)
	next, err := c.Update(ctx, root, "<script>const x = 1</script>")
	require.NoError(t, err)
	assert.Equal(t, "a.cmp.ts", next.ID)
	assert.Equal(t, "const x = 1\n", next.Text)
	assert.Empty(t, next.Embeds)
}

func TestParseBlocks(t *testing.T) {
	blocks, err := sfc.ParseBlocks(component)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, "script", blocks[0].Tag)
	assert.Equal(t, map[string]string{"lang": "ts"}, blocks[0].Attrs)
	assert.Equal(t, "template", blocks[1].Tag)
	assert.Equal(t, "style", blocks[2].Tag)
	assert.Equal(t, "\np { color: red; }\n", component[blocks[2].Content.Start:blocks[2].Content.End])

	// tags that only share a prefix are not blocks
	blocks, err = sfc.ParseBlocks("<scripts></scripts><styles/>")
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestParseBlocks_NestedTemplates(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantContent string
		wantBlocks  int
	}{
		{
			name:        "slot template",
			text:        "<template><list><template #row>{{ a }}</template></list>{{ b }}</template>",
			wantContent: "<list><template #row>{{ a }}</template></list>{{ b }}",
			wantBlocks:  1,
		},
		{
			name:        "two levels",
			text:        "<template><template #a><template #b></template></template>{{ c }}</template><style></style>",
			wantContent: "<template #a><template #b></template></template>{{ c }}",
			wantBlocks:  2,
		},
		{
			name:        "self closing",
			text:        "<template><template #a /><p>{{ d }}</p></template>",
			wantContent: "<template #a /><p>{{ d }}</p>",
			wantBlocks:  1,
		},
		{
			name:        "template text inside script",
			text:        "<script>const s = \"<template>\"</script><template>{{ e }}</template>",
			wantContent: "{{ e }}",
			wantBlocks:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := sfc.ParseBlocks(tt.text)
			require.NoError(t, err)
			require.Len(t, blocks, tt.wantBlocks)

			i := slices.IndexFunc(blocks, func(b sfc.Block) bool { return b.Tag == "template" })
			require.GreaterOrEqual(t, i, 0)
			assert.Equal(t, tt.wantContent, tt.text[blocks[i].Content.Start:blocks[i].Content.End])
		})
	}
}

func TestComposer_NestedTemplateInterpolations(t *testing.T) {
	text := "<script lang=\"ts\">\nconst a = 1\nconst b = 2\n</script>\n<template>\n  <list>\n    <template #row>{{ a }}</template>\n  </list>\n  <p>{{ b }}</p>\n</template>\n"
	root, err := sfc.NewComposer().Create(context.Background(), "a.cmp", text)
	require.NoError(t, err)

	tmpl := strings.Index(text, "<template>")
	for _, name := range []string{"a", "b"} {
		source := nth(t, text, "{{ "+name, tmpl, 0)
		source = position.NewSpan(source.End-1, source.End)

		gen, _, ok := root.Map.ToGeneratedSpan(source, mapping.ForRename)
		require.True(t, ok, "interpolation of %s is compiled", name)
		assert.Equal(t, name, root.Text[gen.Start:gen.End])
	}
}
