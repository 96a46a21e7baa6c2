/*
Package mapping translates offsets and spans between a source document and a
generated (virtual) document.

A Map is an ordered list of Mapping entries. Each entry links a source span to
a generated span and declares which editor operations may cross it:

	source:     <template>{{ count }}</template>
	                        ^^^^^ Source{12,17}
	generated:  ;(count);
	              ^^^^^ Generated{2,7}  Data: All

Queries never approximate. An offset with no containing entry yields nothing
and a span whose ends resolve through unrelated entries yields nothing, which
is how purely synthetic scaffolding stays invisible to the editor.

Lookups use a boundary index per side (sorted start/end points, each slot
listing the entries that cover it) so a query costs a binary search plus the
number of hits.
*/
package mapping

import (
	"iter"
	"sort"

	"github.com/walteh/embedls/pkg/casing"
	"github.com/walteh/embedls/pkg/position"
)

// Mapping links one span of the source document to one span of the generated
// document.
type Mapping struct {
	Source    position.Span
	Generated position.Span
	Data      Capabilities
	// Anchor marks a zero-width insertion point: there is no source text behind
	// it, but completion and other positional requests may land on it.
	Anchor bool
	// RenameStyle is the spelling rename edits must use on the source side of
	// this entry.
	RenameStyle casing.Style
}

// NewAnchor builds a zero-width entry at the given source and generated offsets.
func NewAnchor(sourceOffset, generatedOffset int, data Capabilities) Mapping {
	return Mapping{
		Source:    position.NewSpan(sourceOffset, sourceOffset),
		Generated: position.NewSpan(generatedOffset, generatedOffset),
		Data:      data,
		Anchor:    true,
	}
}

type side uint8

const (
	sourceSide side = iota
	generatedSide
)

func (m Mapping) span(s side) position.Span {
	if s == sourceSide {
		return m.Source
	}
	return m.Generated
}

// Map is immutable once built.
type Map struct {
	mappings  []Mapping
	source    boundaryIndex
	generated boundaryIndex
}

func NewMap(mappings []Mapping) *Map {
	m := &Map{mappings: mappings}
	m.source = newBoundaryIndex(mappings, sourceSide)
	m.generated = newBoundaryIndex(mappings, generatedSide)
	return m
}

// Mappings returns the entries in declaration order. Callers must not modify
// the returned slice.
func (m *Map) Mappings() []Mapping {
	if m == nil {
		return nil
	}
	return m.mappings
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.mappings)
}

// ToGeneratedOffsets yields, in entry order, the generated offset for every
// entry whose source span contains offset and whose data passes filter.
func (m *Map) ToGeneratedOffsets(offset int, filter Filter) iter.Seq2[int, Mapping] {
	return m.publicOffsets(offset, sourceSide, filter)
}

// ToSourceOffsets is the mirror of ToGeneratedOffsets.
func (m *Map) ToSourceOffsets(offset int, filter Filter) iter.Seq2[int, Mapping] {
	return m.publicOffsets(offset, generatedSide, filter)
}

// ToGeneratedSpan returns the first congruent translation of a source span.
func (m *Map) ToGeneratedSpan(span position.Span, filter Filter) (position.Span, Mapping, bool) {
	for s, mp := range m.spans(span, sourceSide, filter) {
		return s, mp, true
	}
	return position.Span{}, Mapping{}, false
}

// ToSourceSpan returns the first congruent translation of a generated span.
func (m *Map) ToSourceSpan(span position.Span, filter Filter) (position.Span, Mapping, bool) {
	for s, mp := range m.spans(span, generatedSide, filter) {
		return s, mp, true
	}
	return position.Span{}, Mapping{}, false
}

// GeneratedSpans yields every congruent translation of a source span, one per
// distinct result, which is how one source range fans out to many generated
// ranges.
func (m *Map) GeneratedSpans(span position.Span, filter Filter) iter.Seq2[position.Span, Mapping] {
	return m.spans(span, sourceSide, filter)
}

func (m *Map) SourceSpans(span position.Span, filter Filter) iter.Seq2[position.Span, Mapping] {
	return m.spans(span, generatedSide, filter)
}

func (m *Map) publicOffsets(offset int, from side, filter Filter) iter.Seq2[int, Mapping] {
	return func(yield func(int, Mapping) bool) {
		for off, i := range m.offsets(offset, from, filter) {
			if !yield(off, m.mappings[i]) {
				return
			}
		}
	}
}

// offsets yields (translated offset, entry index) pairs.
func (m *Map) offsets(offset int, from side, filter Filter) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if m == nil {
			return
		}
		idx := &m.source
		to := generatedSide
		if from == generatedSide {
			idx = &m.generated
			to = sourceSide
		}
		for _, i := range idx.lookup(offset) {
			mp := m.mappings[i]
			if !filter.accepts(mp.Data) {
				continue
			}
			if mp.Anchor && mp.span(from).Start != offset {
				continue
			}
			if !yield(translate(offset, mp.span(from), mp.span(to)), i) {
				return
			}
		}
	}
}

// spans pairs up the translations of both ends of span. A pair is congruent
// when both ends went through the same entry, or when the translated length
// equals the original length (adjacent entries with a consistent delta).
func (m *Map) spans(span position.Span, from side, filter Filter) iter.Seq2[position.Span, Mapping] {
	return func(yield func(position.Span, Mapping) bool) {
		seen := map[position.Span]struct{}{}
		for start, si := range m.offsets(span.Start, from, filter) {
			for end, ei := range m.offsets(span.End, from, filter) {
				if end < start {
					continue
				}
				if si != ei && end-start != span.Len() {
					continue
				}
				out := position.NewSpan(start, end)
				if _, dup := seen[out]; dup {
					continue
				}
				seen[out] = struct{}{}
				if !yield(out, m.mappings[si]) {
					return
				}
			}
		}
	}
}

func translate(offset int, from, to position.Span) int {
	delta := offset - from.Start
	if delta > to.Len() {
		delta = to.Len()
	}
	return to.Start + delta
}

// boundaryIndex answers "which entries contain offset" for one side of a Map.
// points holds every distinct start/end offset in ascending order. at[i] lists
// the entries containing points[i]; between[i] lists the entries covering the
// open gap (points[i], points[i+1]). Both lists keep entry order.
type boundaryIndex struct {
	points  []int
	at      [][]int
	between [][]int
}

func newBoundaryIndex(mappings []Mapping, s side) boundaryIndex {
	seen := make(map[int]struct{}, len(mappings)*2)
	points := make([]int, 0, len(mappings)*2)
	for _, mp := range mappings {
		sp := mp.span(s)
		for _, p := range [2]int{sp.Start, sp.End} {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				points = append(points, p)
			}
		}
	}
	sort.Ints(points)

	idx := boundaryIndex{
		points:  points,
		at:      make([][]int, len(points)),
		between: make([][]int, len(points)),
	}
	for i, mp := range mappings {
		sp := mp.span(s)
		lo := sort.SearchInts(points, sp.Start)
		hi := sort.SearchInts(points, sp.End)
		for p := lo; p <= hi; p++ {
			idx.at[p] = append(idx.at[p], i)
		}
		for p := lo; p < hi; p++ {
			idx.between[p] = append(idx.between[p], i)
		}
	}
	return idx
}

func (b *boundaryIndex) lookup(offset int) []int {
	i := sort.SearchInts(b.points, offset)
	if i < len(b.points) && b.points[i] == offset {
		return b.at[i]
	}
	if i == 0 || i == len(b.points) {
		return nil
	}
	return b.between[i-1]
}
