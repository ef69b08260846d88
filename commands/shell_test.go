//go:build !windows

package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subst-go/subst"
)

func TestShellProcess(t *testing.T) {
	t.Parallel()

	s := NewShell()

	out, err := s.Process(context.Background(), subst.Input{Path: "printf 1"})
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	// stdout is taken verbatim, trailing newline included.
	out, err = s.Process(context.Background(), subst.Input{Path: "echo 1"})
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestShellProcessFailure(t *testing.T) {
	t.Parallel()

	s := NewShell()
	_, err := s.Process(context.Background(), subst.Input{Path: "exit 3"})
	assert.Error(t, err)
}

func TestShellEnvAndDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := &Shell{Dir: dir, Env: []string{"GREETING=hi"}}

	out, err := s.Process(context.Background(), subst.Input{Path: "printf %s \"$GREETING\""})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	out, err = s.Process(context.Background(), subst.Input{Path: "pwd"})
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}

func TestShellThroughResolver(t *testing.T) {
	t.Parallel()

	registry := subst.NewRegistry()
	registry.Register("sh", NewShell())

	r, err := subst.NewResolver(subst.ResolverInput{Registry: registry})
	require.NoError(t, err)

	assert.Equal(t, "out=1", r.Interpolate(context.Background(), "out=${sh:printf 1}"))
	assert.Equal(t, "fallback",
		r.Interpolate(context.Background(), "${sh:exit 3:-fallback}"))
}
