package format_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/embedls/cmd/embedls/format"
	"github.com/walteh/embedls/pkg/session"
)

const (
	editorconfig = "root = true\n\n[*]\nindent_style = space\nindent_size = 2\n\n[*.cmp]\nindent_style = tab\n"
	component    = "<script lang=\"ts\">\nexport function f() {\n  return 1\n}\n</script>\n"
	util         = "export function g() {\n  return 2\n}\n"
)

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range map[string]string{
		".editorconfig": editorconfig,
		"a.cmp":         component,
		"util.ts":       util,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return dir
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOut  []string
		wantFile string
	}{
		{
			name:     "dry run",
			args:     nil,
			wantOut:  []string{"a.cmp: 1 edits\n"},
			wantFile: component,
		},
		{
			name:     "diff",
			args:     []string{"--diff", "a.cmp"},
			wantOut:  []string{"a.cmp: 1 edits\n", "--- a.cmp\n", "➕\treturn 1"},
			wantFile: component,
		},
		{
			name:     "write",
			args:     []string{"--write"},
			wantOut:  []string{"a.cmp: 1 edits\n"},
			wantFile: "<script lang=\"ts\">\nexport function f() {\n\treturn 1\n}\n</script>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			dir := project(t)

			cmd := format.NewFormatCommand(&session.Options{Dir: dir})
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.ExecuteContext(ctx))

			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			assert.NotContains(t, out.String(), "util.ts", "space indented scripts already match")

			got, err := os.ReadFile(filepath.Join(dir, "a.cmp"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, string(got))
		})
	}
}

func TestFormat_InMemoryUsesDefaults(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.cmp", []byte(component), 0o644))

	cmd := format.NewFormatCommand(&session.Options{Fs: fs})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--write", "a.cmp"})
	require.NoError(t, cmd.ExecuteContext(ctx))

	assert.Empty(t, out.String())
	got, err := afero.ReadFile(fs, "a.cmp")
	require.NoError(t, err)
	assert.Equal(t, component, string(got))
}
