package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subst-go/subst"
)

func TestEnvProcess(t *testing.T) {
	t.Setenv("SUBST_TEST_SET", "from-environ")

	e := NewEnv()

	out, err := e.Process(context.Background(), subst.Input{Path: "SUBST_TEST_SET"})
	require.NoError(t, err)
	assert.Equal(t, "from-environ", out)

	_, err = e.Process(context.Background(), subst.Input{Path: "SUBST_TEST_UNSET"})
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SUBST_TEST_SET", "from-environ")

	e := &Env{Env: []string{"SUBST_TEST_SET=pinned", "EMPTY="}}

	out, err := e.Process(context.Background(), subst.Input{Path: "SUBST_TEST_SET"})
	require.NoError(t, err)
	assert.Equal(t, "pinned", out, "override list wins over the environment")

	out, err = e.Process(context.Background(), subst.Input{Path: "EMPTY"})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestEnvThroughResolver(t *testing.T) {
	registry := subst.NewRegistry()
	registry.Register("env", &Env{Env: []string{
		"VAR_1=2",
		"VAR_2=VAL",
	}})

	r, err := subst.NewResolver(subst.ResolverInput{Registry: registry})
	require.NoError(t, err)

	cases := []struct {
		name string
		i    string
		exp  string
	}{
		{"simple", "v=${env:VAR_2}", "v=VAL"},
		{"nested", "${env:VAR_${env:VAR_1}}", "VAL"},
		{"unset_default", "${env:VAR_9:-fallback}", "fallback"},
		{"unset_empty", "x ${env:VAR_9}", "x "},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, r.Interpolate(context.Background(), tc.i))
		})
	}
}
