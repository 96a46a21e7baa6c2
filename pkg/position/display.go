package position

import (
	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/mattn/go-runewidth"
)

// DisplayColumn returns the 1-based terminal column of offset on its line.
// Grapheme clusters count once and wide clusters take two cells.
func (li *LineIndex) DisplayColumn(offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	start := li.LineStart(li.Place(offset).Line)
	prefix := []byte(li.text[start:offset])

	width := 0
	for len(prefix) > 0 {
		advance, cluster, err := textseg.ScanGraphemeClusters(prefix, true)
		if err != nil || advance == 0 {
			width += runewidth.StringWidth(string(prefix))
			break
		}
		width += runewidth.StringWidth(string(cluster))
		prefix = prefix[advance:]
	}
	return width + 1
}
