package sfc

import (
	"strings"

	"github.com/walteh/embedls/pkg/casing"
	"github.com/walteh/embedls/pkg/embedded"
	"github.com/walteh/embedls/pkg/mapping"
	"github.com/walteh/embedls/pkg/position"
	"github.com/walteh/embedls/pkg/teleport"
)

// generator accumulates the text, mappings and teleports of one generated
// file. It is passed explicitly through the emit helpers.
type generator struct {
	source    string
	out       strings.Builder
	mappings  []mapping.Mapping
	teleports []pendingTeleport
}

type pendingTeleport struct {
	a, b  position.Span
	flags teleport.Flags
}

func newGenerator(source string) *generator {
	return &generator{source: source}
}

func (g *generator) offset() int {
	return g.out.Len()
}

// scaffold writes text that has no source counterpart.
func (g *generator) scaffold(parts ...string) {
	for _, p := range parts {
		g.out.WriteString(p)
	}
}

// copySource writes the source text under span and maps it exactly. The
// generated span is returned.
func (g *generator) copySource(span position.Span, data mapping.Capabilities, style casing.Style) position.Span {
	start := g.offset()
	g.out.WriteString(g.source[span.Start:span.End])
	gen := position.NewSpan(start, g.offset())
	g.mappings = append(g.mappings, mapping.Mapping{
		Source:      span,
		Generated:   gen,
		Data:        data,
		RenameStyle: style,
	})
	return gen
}

// anchor maps the current generated offset to a zero-width source offset.
func (g *generator) anchor(sourceOffset int, data mapping.Capabilities) {
	g.mappings = append(g.mappings, mapping.NewAnchor(sourceOffset, g.offset(), data))
}

func (g *generator) link(a, b position.Span, flags teleport.Flags) {
	g.teleports = append(g.teleports, pendingTeleport{a: a, b: b, flags: flags})
}

func (g *generator) file(id, languageID string, capabilities mapping.Capabilities) *embedded.File {
	f := embedded.NewFile(id, languageID, g.out.String(), capabilities, g.mappings)
	for _, t := range g.teleports {
		f.Teleports.Add(t.a, t.b, t.flags)
	}
	return f
}
