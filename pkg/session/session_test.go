package session_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/embedls/pkg/session"
	"github.com/walteh/embedls/pkg/workspace"
)

const component = "<script lang=\"ts\">\nconst count = 1\nconst unused = 2\n</script>\n<template>\n  <p>{{ count }}</p>\n</template>\n"

func TestOpen(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/a.cmp", []byte(component), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/util.ts", []byte("export const q = 1\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "node_modules/dep/index.ts", []byte("export {}\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "embedls.yaml", []byte("script_languages: [typescript]\n"), 0o644))

	s, err := session.Open(ctx, session.Options{Fs: fs})
	require.NoError(t, err)

	assert.Equal(t, "embedls.yaml", s.ConfigPath)
	assert.ElementsMatch(t, []string{"src/a.cmp", "src/util.ts"}, s.Files)

	_, ok := s.Project.Lookup("src/a.cmp.ts")
	assert.True(t, ok, "the component was composed")

	prog, err := s.Decorator.Program(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.cmp", "src/util.ts"}, prog.RootFileNames())

	diags, err := prog.Diagnostics(ctx)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "src/a.cmp", diags[0].File)

	text, err := s.Document("src/a.cmp")
	require.NoError(t, err)
	assert.Equal(t, component, text)

	_, err = s.Document("missing.cmp")
	require.ErrorIs(t, err, workspace.ErrFileNotFound)
}

func TestOpen_BadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "custom.yaml", []byte("nope: true\n"), 0o644))

	_, err := session.Open(context.Background(), session.Options{Fs: fs, ConfigPath: "custom.yaml"})
	require.Error(t, err)
}
