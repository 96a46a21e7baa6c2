package rename_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/embedls/cmd/embedls/rename"
	"github.com/walteh/embedls/pkg/session"
)

const component = `<script lang="ts">
export const barFoo = 1
</script>
<template>
  <child :bar-foo="barFoo" />
</template>
`

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input    string
		wantLine int
		wantCol  int
		wantErr  bool
	}{
		{input: "2:14", wantLine: 2, wantCol: 14},
		{input: "2", wantErr: true},
		{input: "0:1", wantErr: true},
		{input: "a:b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			line, col, err := rename.ParsePosition(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestRename_Write(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.cmp", []byte(component), 0o644))

	cmd := rename.NewRenameCommand(&session.Options{Fs: fs})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--write", "a.cmp", "5:13", "baz-qux"})

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, out.String(), `a.cmp:5:11: "bar-foo" -> "baz-qux"`)
	assert.Contains(t, out.String(), `a.cmp:2:14: "barFoo" -> "bazQux"`)

	got, err := afero.ReadFile(fs, "a.cmp")
	require.NoError(t, err)
	assert.Equal(t, `<script lang="ts">
export const bazQux = 1
</script>
<template>
  <child :baz-qux="bazQux" />
</template>
`, string(got))
}

func TestRename_Diff(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.cmp", []byte(component), 0o644))

	cmd := rename.NewRenameCommand(&session.Options{Fs: fs})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--diff", "a.cmp", "2:14", "bazQux"})

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, out.String(), "--- a.cmp\n")
	assert.Contains(t, out.String(), "➖export const barFoo = 1")
	assert.Contains(t, out.String(), "➕export const bazQux = 1")
	assert.Contains(t, out.String(), "➕  <child :baz-qux=\"bazQux\" />")

	got, err := afero.ReadFile(fs, "a.cmp")
	require.NoError(t, err)
	assert.Equal(t, component, string(got), "nothing is written without --write")
}
