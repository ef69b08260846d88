// Package commands provides ready-made command handlers for the subst
// engine: environment variables, shell output, local files, Vault secrets,
// Consul KV entries and network addresses. Callers pick the ones they want
// and register them under the identifiers their templates use.
package commands

import (
	"context"

	"github.com/pkg/errors"

	"github.com/subst-go/subst"
)

// processEntry implements Command.Process for providers that natively
// fetch structured entries, for use outside the engine's cached path.
func processEntry(ctx context.Context, f subst.Fetcher, in subst.Input) (string, error) {
	entry, err := f.Fetch(ctx, in)
	if err != nil {
		return "", err
	}
	v, ok := entry.Project(in.Field)
	if !ok {
		if in.Field == "" {
			return "", errors.Errorf("%s: %s has no scalar value", in.Command, in.Path)
		}
		return "", errors.Errorf("%s: %s has no field %q", in.Command, in.Path, in.Field)
	}
	return v, nil
}
