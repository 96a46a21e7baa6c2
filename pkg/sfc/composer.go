// Package sfc composes single-file components (.cmp) into a typescript
// module with the template compiled to checkable code, plus html and css
// embeds for the markup and the styles.
//
// A file like
//
//	<script lang="ts">export const barFoo = 1</script>
//	<template><child :bar-foo="barFoo" />{{ barFoo }}</template>
//	<style>p { color: red }</style>
//
// becomes a.cmp.ts, a.cmp.template.html and a.cmp.style_0.css.
package sfc

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/embedls/pkg/casing"
	"github.com/walteh/embedls/pkg/embedded"
	"github.com/walteh/embedls/pkg/mapping"
	"github.com/walteh/embedls/pkg/position"
	"github.com/walteh/embedls/pkg/teleport"
)

const DefaultExtension = ".cmp"

const (
	attrsName  = embedded.ScaffoldPrefix + "attrs"
	renderName = embedded.ScaffoldPrefix + "render"
)

var (
	bindingPattern     = regexp.MustCompile(`\s:([A-Za-z][\w-]*)\s*=\s*"([^"]*)"`)
	inlineStylePattern = regexp.MustCompile(`\sstyle\s*=\s*"([^"]*)"`)

	// expressions cannot be formatted in place
	expressionCapabilities = mapping.All.Without(mapping.Format)
	keyCapabilities        = mapping.Navigation | mapping.Hover
	markupCapabilities     = mapping.Diagnostics | mapping.Folding | mapping.Format
)

type Composer struct {
	Extensions []string
}

var _ embedded.Composer = (*Composer)(nil)

func NewComposer(extensions ...string) *Composer {
	if len(extensions) == 0 {
		extensions = []string{DefaultExtension}
	}
	return &Composer{Extensions: extensions}
}

func (c *Composer) Name() string {
	return "sfc"
}

func (c *Composer) owns(fileName string) bool {
	for _, ext := range c.Extensions {
		if strings.HasSuffix(fileName, ext) {
			return true
		}
	}
	return false
}

func (c *Composer) Create(ctx context.Context, fileName, text string) (*embedded.File, error) {
	if !c.owns(fileName) {
		return nil, nil
	}
	return compose(fileName, text)
}

// Update always rebuilds: component files are small.
func (c *Composer) Update(ctx context.Context, existing *embedded.File, text string) (*embedded.File, error) {
	fileName, ok := strings.CutSuffix(existing.ID, ".ts")
	if !ok {
		fileName, _ = strings.CutSuffix(existing.ID, ".js")
	}
	return compose(fileName, text)
}

func compose(fileName, text string) (*embedded.File, error) {
	blocks, err := ParseBlocks(text)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", fileName, err)
	}

	var (
		script   *Block
		template *Block
		styles   []Block
	)
	for i := range blocks {
		switch blocks[i].Tag {
		case "script":
			script = &blocks[i]
		case "template":
			template = &blocks[i]
		case "style":
			styles = append(styles, blocks[i])
		}
	}

	ext, lang := ".ts", "typescript"
	if script != nil {
		switch script.Attrs["lang"] {
		case "", "ts":
		case "js":
			ext, lang = ".js", "javascript"
		default:
			return nil, errors.Errorf("%s: unsupported script language %q", fileName, script.Attrs["lang"])
		}
	}

	g := newGenerator(text)
	if script != nil {
		g.copySource(script.Content, mapping.All, casing.Preserve)
		g.scaffold("\n")
	}
	if template != nil {
		writeTemplate(g, template.Content)
	}
	root := g.file(fileName+ext, lang, mapping.All)

	if template != nil {
		root.AddEmbed(templateFile(fileName, text, template.Content))
	}
	for i, style := range styles {
		sg := newGenerator(text)
		sg.copySource(style.Content, markupCapabilities, casing.Preserve)
		styleLang := style.Attrs["lang"]
		if styleLang == "" {
			styleLang = "css"
		}
		root.AddEmbed(sg.file(fmt.Sprintf("%s.style_%d.%s", fileName, i, styleLang), styleLang, markupCapabilities))
	}
	return root, nil
}

type templateItem struct {
	start int
	emit  func(g *generator)
}

// writeTemplate compiles the template into a render function. Items are
// emitted in source order.
func writeTemplate(g *generator, content position.Span) {
	src := g.source[content.Start:content.End]
	var items []templateItem

	for _, m := range bindingPattern.FindAllStringSubmatchIndex(src, -1) {
		name := position.NewSpan(content.Start+m[2], content.Start+m[3])
		expr := position.NewSpan(content.Start+m[4], content.Start+m[5])
		items = append(items, templateItem{start: name.Start, emit: func(g *generator) { writeBinding(g, name, expr) }})
	}

	for i := 0; i < len(src); {
		open := strings.Index(src[i:], "{{")
		if open < 0 {
			break
		}
		open += i
		closing := strings.Index(src[open+2:], "}}")
		if closing < 0 {
			break
		}
		closing += open + 2
		inner := position.NewSpan(content.Start+open+2, content.Start+closing)
		items = append(items, templateItem{start: inner.Start, emit: func(g *generator) { writeInterpolation(g, inner) }})
		i = closing + 2
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].start < items[j].start })

	g.scaffold("// <template>\n")
	g.scaffold("declare const ", attrsName, ": Record<string, unknown>;\n")
	g.scaffold("function ", renderName, "() {\n")
	for _, item := range items {
		item.emit(g)
	}
	g.scaffold("}\n")
}

func writeInterpolation(g *generator, inner position.Span) {
	raw := g.source[inner.Start:inner.End]
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		// nothing to check yet, but completion must still work where the
		// cursor sits after typing "{{ "
		at := inner.Start
		if len(raw) > 0 {
			at++
		}
		g.scaffold("\t;(")
		g.anchor(at, mapping.Completion)
		g.scaffold("undefined);\n")
		return
	}
	lead := strings.Index(raw, trimmed)
	expr := position.NewSpan(inner.Start+lead, inner.Start+lead+len(trimmed))
	g.scaffold("\t;(")
	g.copySource(expr, expressionCapabilities, casing.Preserve)
	g.scaffold(");\n")
}

// writeBinding emits
//
//	__EMB_attrs["bar-foo"] = (expr);
//	__EMB_attrs.barFoo;
//
// The key maps to the attribute name and respells renames in kebab-case.
// The camelCase alias has no source counterpart; a teleport joins it to the
// key so navigation reaches script declarations named barFoo.
func writeBinding(g *generator, name, expr position.Span) {
	attr := g.source[name.Start:name.End]
	style := casing.Preserve
	if casing.IsKebab(attr) {
		style = casing.Kebab
	}

	g.scaffold("\t", attrsName, "[\"")
	key := g.copySource(name, keyCapabilities, style)
	g.scaffold("\"] = (")
	if expr.Empty() {
		g.anchor(expr.Start, mapping.Completion)
		g.scaffold("undefined")
	} else {
		g.copySource(expr, expressionCapabilities, casing.Preserve)
	}
	g.scaffold(");\n")

	g.scaffold("\t", attrsName, ".")
	aliasStart := g.offset()
	g.scaffold(casing.Camelize(attr))
	alias := position.NewSpan(aliasStart, g.offset())
	g.scaffold(";\n")

	g.link(key, alias, teleport.All)
}

func templateFile(fileName, source string, content position.Span) *embedded.File {
	g := newGenerator(source)
	g.copySource(content, markupCapabilities, casing.Preserve)
	f := g.file(fileName+".template.html", "html", markupCapabilities)

	src := source[content.Start:content.End]
	for i, m := range inlineStylePattern.FindAllStringSubmatchIndex(src, -1) {
		value := position.NewSpan(content.Start+m[2], content.Start+m[3])
		sg := newGenerator(source)
		sg.scaffold("* { ")
		sg.copySource(value, mapping.Diagnostics|mapping.Format, casing.Preserve)
		sg.scaffold(" }")
		f.AddEmbed(sg.file(fmt.Sprintf("%s.template.html.inline_%d.css", fileName, i), "css", mapping.Diagnostics|mapping.Format))
	}
	return f
}
