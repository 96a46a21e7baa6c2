// Package diff renders human readable differences for command output and
// test failures.
package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

// Lines returns a line diff turning before into after, or "" when they are
// equal. Added lines start with ➕ and removed lines with ➖.
func Lines(before, after string) string {
	if before == after {
		return ""
	}
	d := diff.Diff(before, after)
	if d == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(d, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			b.WriteString("➕" + line[1:])
		case strings.HasPrefix(line, "-"):
			b.WriteString("➖" + line[1:])
		default:
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Values pretty prints the exported fields of want and got and diffs them.
func Values[T any](want, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)
	d := Lines(printer.Sprint(got), printer.Sprint(want))
	if d == "" {
		return ""
	}
	return "\n\nto convert ACTUAL ⏩️ EXPECTED:\n\n" + d
}
