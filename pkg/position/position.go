package position

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Place is a zero-based line and character pair. Character counts UTF-16 code
// units, which is what editor protocols expect.
type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}

// Span is a half-open byte range [Start, End) inside one text.
type Span struct {
	Start int
	End   int
}

func NewSpan(start, end int) Span {
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

// Contains reports whether offset lies inside the span. The end is inclusive so
// that a cursor sitting right after an identifier still counts as touching it.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// ContainsSpan reports whether other lies completely inside s.
func (s Span) ContainsSpan(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps follows the same rules as RawPosition.HasRangeOverlapWith: zero width
// spans overlap when they fall inside (or on the edge of) the other span.
func (s Span) Overlaps(other Span) bool {
	if s.Empty() {
		return other.Contains(s.Start)
	}
	if other.Empty() {
		return s.Contains(other.Start)
	}
	return other.Start < s.End && other.End > s.Start
}

func (s Span) Shift(n int) Span {
	return Span{Start: s.Start + n, End: s.End + n}
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// ID returns a unique identifier for this position based on offset and text
func (p RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Length returns the length of the text at this position
func (p RawPosition) Length() int {
	return len(p.Text)
}

func (p RawPosition) Span() Span {
	return Span{Start: p.Offset, End: p.Offset + p.Length()}
}

func (p RawPosition) HasRangeOverlapWith(other RawPosition) bool {
	return p.Span().Overlaps(other.Span())
}

func (p RawPosition) String() string {
	return p.ID()
}

// LineIndex converts byte offsets to line/character places and back for one text.
// It is immutable once built.
type LineIndex struct {
	text       string
	lineStarts []int
}

func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, lineStarts: starts}
}

func (li *LineIndex) LineCount() int {
	return len(li.lineStarts)
}

// LineStart returns the byte offset of the first character of line.
func (li *LineIndex) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(li.lineStarts) {
		return len(li.text)
	}
	return li.lineStarts[line]
}

// Line returns the text of a zero-based line without its newline.
func (li *LineIndex) Line(line int) string {
	if line < 0 || line >= len(li.lineStarts) {
		return ""
	}
	start := li.lineStarts[line]
	end := len(li.text)
	if line+1 < len(li.lineStarts) {
		end = li.lineStarts[line+1] - 1
	}
	return li.text[start:end]
}

// Place converts a byte offset, clamped to the text, into a line and a UTF-16
// character column.
func (li *LineIndex) Place(offset int) Place {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	line := sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] > offset }) - 1
	start := li.lineStarts[line]
	return Place{Line: line, Character: utf16Len(li.text[start:offset])}
}

func (li *LineIndex) Range(span Span) Range {
	return Range{Start: li.Place(span.Start), End: li.Place(span.End)}
}

// Offset converts a place back into a byte offset. Out of range lines clamp to
// the end of the text and out of range characters clamp to the end of the line.
func (li *LineIndex) Offset(p Place) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(li.lineStarts) {
		return len(li.text)
	}
	lineText := li.Line(p.Line)
	off := li.lineStarts[p.Line]
	units := 0
	for _, r := range lineText {
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > p.Character {
			break
		}
		units += need
		off += utf8.RuneLen(r)
	}
	return off
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// GetLineAndColumn returns the 1-based line and column of a byte offset, as
// displayed by terminals and compilers.
func GetLineAndColumn(text string, offset int) (line, col int) {
	p := NewLineIndex(text).Place(offset)
	return p.Line + 1, p.Character + 1
}
