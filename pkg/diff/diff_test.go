package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/embedls/pkg/diff"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   []string
	}{
		{name: "equal", before: "a\nb", after: "a\nb"},
		{name: "changed line", before: "a\nb\nc", after: "a\nB\nc", want: []string{"➖b", "➕B"}},
		{name: "added line", before: "a", after: "a\nz", want: []string{"➕z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diff.Lines(tt.before, tt.after)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

type sample struct {
	Name  string
	Count int
	note  string
}

func TestValues(t *testing.T) {
	assert.Empty(t, diff.Values(sample{Name: "a", note: "x"}, sample{Name: "a", note: "y"}), "unexported fields are ignored")

	got := diff.Values(sample{Name: "a", Count: 1}, sample{Name: "a", Count: 2})
	assert.Contains(t, got, "ACTUAL")
	assert.Contains(t, got, "Count")
}
