package commands

import (
	"context"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"

	"github.com/subst-go/subst"
)

func TestVaultFetchNoClient(t *testing.T) {
	t.Parallel()

	v := NewVault(NewClientSet())
	_, err := v.Fetch(context.Background(), subst.Input{Path: "secret/db"})
	assert.Error(t, err)
}

func TestVaultFetchInvalidPath(t *testing.T) {
	t.Parallel()

	clients := NewClientSet()
	if err := clients.CreateVaultClient(&CreateClientInput{
		Address: "http://127.0.0.1:8200",
	}); err != nil {
		t.Fatal(err)
	}

	v := NewVault(clients)
	_, err := v.Fetch(context.Background(), subst.Input{Path: "  / "})
	assert.Error(t, err)
}

func TestShimKVv2Path(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		rawPath   string
		mountPath string
		exp       string
	}{
		{
			"full_secret_path",
			"secret/my-secret", "secret/",
			"secret/data/my-secret",
		},
		{
			"deep_secret_path",
			"secret/sub/path/my-secret", "secret/",
			"secret/data/sub/path/my-secret",
		},
		{
			"mount_only",
			"secret", "secret/",
			"secret/data",
		},
		{
			"mount_with_slash",
			"secret/", "secret/",
			"secret/data",
		},
		{
			"already_data_path",
			"secret/data/my-secret", "secret/",
			"secret/data/my-secret",
		},
		{
			"metadata_path",
			"secret/metadata/my-secret", "secret/",
			"secret/metadata/my-secret",
		},
		{
			"custom_mount",
			"kv-store/team/db", "kv-store/",
			"kv-store/data/team/db",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, shimKVv2Path(tc.rawPath, tc.mountPath))
		})
	}
}

func TestDeletedKVv2(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data map[string]interface{}
		exp  bool
	}{
		{
			"no_metadata",
			map[string]interface{}{"password": "x"},
			false,
		},
		{
			"live",
			map[string]interface{}{
				"metadata": map[string]interface{}{"deletion_time": ""},
			},
			false,
		},
		{
			"deleted",
			map[string]interface{}{
				"metadata": map[string]interface{}{
					"deletion_time": "2026-01-01T00:00:00Z",
				},
			},
			true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, deletedKVv2(&api.Secret{Data: tc.data}))
		})
	}
}
