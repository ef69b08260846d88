package commands

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/subst-go/subst"
)

// Env resolves environment variables by name. An unset variable is an
// internal failure, so the placeholder falls back to its default value.
type Env struct {
	// Env is an optional set of "k=v" pairs consulted before the real
	// environment, mainly for pinning values in tests.
	Env []string
}

var _ subst.Command = (*Env)(nil)

// NewEnv creates an Env command reading the process environment.
func NewEnv() *Env {
	return &Env{}
}

// Process looks up the variable named by the path.
func (e *Env) Process(_ context.Context, in subst.Input) (string, error) {
	for _, kv := range e.Env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == in.Path {
			return v, nil
		}
	}
	if v, ok := os.LookupEnv(in.Path); ok {
		return v, nil
	}
	return "", errors.Errorf("env: %q is not set", in.Path)
}
