// Package teleport links alternate spellings of one symbol inside a single
// generated document. A link carries separate direction flags so a rename may
// cross from a kebab-case key to its camelCase alias while a definition lookup
// only travels the other way.
package teleport

import (
	"iter"
	"sort"
	"strings"

	"github.com/walteh/embedls/pkg/position"
)

// Flags selects the operations allowed to travel across a link.
type Flags uint8

const (
	Definition Flags = 1 << iota
	Reference
	Rename
)

const (
	None Flags = 0
	All        = Definition | Reference | Rename
)

func (f Flags) Has(want Flags) bool {
	return want != None && f&want == want
}

func (f Flags) String() string {
	if f == None {
		return "none"
	}
	var parts []string
	if f&Definition != 0 {
		parts = append(parts, "definition")
	}
	if f&Reference != 0 {
		parts = append(parts, "reference")
	}
	if f&Rename != 0 {
		parts = append(parts, "rename")
	}
	return strings.Join(parts, "|")
}

// Entry joins two spans of the same generated text. ToB gates travel from A to
// B and ToA gates the way back.
type Entry struct {
	A   position.Span
	B   position.Span
	ToB Flags
	ToA Flags
}

// Index is the teleport table of one embedded file. It is built while the
// file is composed and treated as read-only afterwards.
type Index struct {
	entries []Entry
	// byA and byB hold entry indexes ordered by the start of that endpoint.
	byA []int
	byB []int
}

// Add links a and b with the same flags in both directions.
func (x *Index) Add(a, b position.Span, flags Flags) {
	x.AddDirected(a, b, flags, flags)
}

func (x *Index) AddDirected(a, b position.Span, toB, toA Flags) {
	i := len(x.entries)
	x.entries = append(x.entries, Entry{A: a, B: b, ToB: toB, ToA: toA})
	x.byA = insertOrdered(x.byA, x.entries, i, endpointA)
	x.byB = insertOrdered(x.byB, x.entries, i, endpointB)
}

func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

func (x *Index) Entries() []Entry {
	if x == nil {
		return nil
	}
	return x.entries
}

// Find yields the start of the opposite endpoint for every link whose
// endpoint contains offset and whose direction allows flag. Both directions
// are searched, A endpoints first.
func (x *Index) Find(offset int, flag Flags) iter.Seq[int] {
	return func(yield func(int) bool) {
		if x == nil || len(x.entries) == 0 {
			return
		}
		for _, i := range stab(x.byA, x.entries, offset, endpointA) {
			e := x.entries[i]
			if e.ToB.Has(flag) && !yield(e.B.Start) {
				return
			}
		}
		for _, i := range stab(x.byB, x.entries, offset, endpointB) {
			e := x.entries[i]
			if e.ToA.Has(flag) && !yield(e.A.Start) {
				return
			}
		}
	}
}

func endpointA(e Entry) position.Span { return e.A }

func endpointB(e Entry) position.Span { return e.B }

func insertOrdered(ordered []int, entries []Entry, i int, end func(Entry) position.Span) []int {
	start := end(entries[i]).Start
	at := sort.Search(len(ordered), func(k int) bool {
		return end(entries[ordered[k]]).Start > start
	})
	ordered = append(ordered, 0)
	copy(ordered[at+1:], ordered[at:])
	ordered[at] = i
	return ordered
}

// stab returns the entries whose endpoint contains offset, in entry order.
// Only endpoints starting at or before offset are scanned.
func stab(ordered []int, entries []Entry, offset int, end func(Entry) position.Span) []int {
	hi := sort.Search(len(ordered), func(i int) bool {
		return end(entries[ordered[i]]).Start > offset
	})
	var hits []int
	for i := 0; i < hi; i++ {
		if end(entries[ordered[i]]).Contains(offset) {
			hits = append(hits, ordered[i])
		}
	}
	sort.Ints(hits)
	return hits
}
