package commands

import (
	"context"
	"path"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/pkg/errors"

	"github.com/subst-go/subst"
)

// Vault resolves fields of secrets held in Vault's KV store, for example
// ${vault:secret/data/db#password}. Both KV v1 and v2 mounts work; the
// mount is probed once per path and v2 data paths are shimmed the way the
// Vault CLI does it.
//
// Vault implements Fetcher: one secret referenced through several field
// selectors is read once per interpolation call, which is the point of the
// engine's per-call cache.
type Vault struct {
	clients *ClientSet

	// probed mount info per placeholder path; access is serialized by the
	// registry's per-handler lock.
	mounts map[string]mountInfo
}

type mountInfo struct {
	secretPath string
	v2         bool
}

var _ subst.Fetcher = (*Vault)(nil)

// NewVault creates a Vault command reading through the set's Vault client.
func NewVault(clients *ClientSet) *Vault {
	return &Vault{
		clients: clients,
		mounts:  make(map[string]mountInfo),
	}
}

// Fetch reads the secret at the placeholder's path.
func (v *Vault) Fetch(ctx context.Context, in subst.Input) (*subst.Entry, error) {
	client := v.clients.Vault()
	if client == nil {
		return nil, errors.New("vault: no client configured")
	}

	rawPath := strings.Trim(strings.TrimSpace(in.Path), "/")
	if rawPath == "" {
		return nil, errors.Errorf("vault: invalid path %q", in.Path)
	}

	mount, ok := v.mounts[rawPath]
	if !ok {
		mountPath, v2 := kvPreflight(ctx, client, rawPath)
		mount = mountInfo{secretPath: rawPath, v2: v2}
		if v2 {
			mount.secretPath = shimKVv2Path(rawPath, mountPath)
		}
		v.mounts[rawPath] = mount
	}

	secret, err := client.Logical().ReadWithContext(ctx, mount.secretPath)
	if err != nil {
		return nil, errors.Wrapf(err, "vault: read %s", mount.secretPath)
	}
	if secret == nil || deletedKVv2(secret) {
		return nil, errors.Errorf("vault: no secret exists at %s", mount.secretPath)
	}

	data := secret.Data
	if mount.v2 {
		// KV v2 nests the fields one level down.
		if nested, ok := data["data"].(map[string]interface{}); ok {
			data = nested
		}
	}

	return &subst.Entry{Data: data}, nil
}

// Process implements Command for use without the per-call cache.
func (v *Vault) Process(ctx context.Context, in subst.Input) (string, error) {
	return processEntry(ctx, v, in)
}

// kvPreflight probes the mount backing path to determine whether it is a
// KV v2 mount, returning the mount path and the verdict. Servers that
// predate the sys/internal/ui endpoint, and tokens that may not read it,
// are treated as KV v1.
func kvPreflight(ctx context.Context, client *api.Client, p string) (string, bool) {
	secret, err := client.Logical().ReadWithContext(ctx, "sys/internal/ui/mounts/"+p)
	if err != nil || secret == nil {
		return "", false
	}

	mountPath, _ := secret.Data["path"].(string)
	mountType, _ := secret.Data["type"].(string)
	options, _ := secret.Data["options"].(map[string]interface{})
	if options == nil {
		return mountPath, false
	}
	version, _ := options["version"].(string)

	return mountPath, version == "2" && mountType == "kv"
}

// shimKVv2Path inserts /data/ after the mount point for KV v2 reads,
// unless the path already addresses data or metadata.
func shimKVv2Path(rawPath, mountPath string) string {
	switch {
	case rawPath == mountPath, rawPath == strings.TrimSuffix(mountPath, "/"):
		return path.Join(mountPath, "data")
	default:
		p := strings.TrimPrefix(rawPath, mountPath)
		if strings.HasPrefix(p, "data/") || strings.HasPrefix(p, "metadata/") {
			return rawPath
		}
		return path.Join(mountPath, "data", p)
	}
}

// deletedKVv2 reports whether a KV v2 read came back soft-deleted.
func deletedKVv2(s *api.Secret) bool {
	switch md := s.Data["metadata"].(type) {
	case map[string]interface{}:
		return md["deletion_time"] != ""
	}
	return false
}
