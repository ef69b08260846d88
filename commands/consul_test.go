package commands

import (
	"context"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subst-go/subst"
)

func TestConsulKVFetchNoClient(t *testing.T) {
	t.Parallel()

	c := NewConsulKV(NewClientSet())
	_, err := c.Fetch(context.Background(), subst.Input{Path: "config/port"})
	assert.Error(t, err)
}

func TestConsulKVInvalidKey(t *testing.T) {
	t.Parallel()

	clients := NewClientSet()
	require.NoError(t, clients.CreateConsulClient(&CreateClientInput{}))

	c := NewConsulKV(clients)
	_, err := c.Fetch(context.Background(), subst.Input{Path: " / "})
	assert.Error(t, err)
}

func TestConsulKVFetch(t *testing.T) {
	if !*runIntegration {
		t.Skip("-integration flag not set")
	}

	clients := NewClientSet()
	require.NoError(t, clients.CreateConsulClient(&CreateClientInput{
		Address: consulAddr,
	}))
	defer clients.Stop()

	_, err := clients.Consul().KV().Put(&api.KVPair{
		Key:   "config/service/port",
		Value: []byte("8500"),
	}, nil)
	require.NoError(t, err)

	c := NewConsulKV(clients)

	entry, err := c.Fetch(context.Background(), subst.Input{Path: "config/service/port"})
	require.NoError(t, err)
	v, ok := entry.Project("")
	require.True(t, ok)
	assert.Equal(t, "8500", v)

	// Leading slashes are tolerated, matching what templates tend to hold.
	entry, err = c.Fetch(context.Background(), subst.Input{Path: "/config/service/port"})
	require.NoError(t, err)
	v, _ = entry.Project("")
	assert.Equal(t, "8500", v)

	_, err = c.Fetch(context.Background(), subst.Input{Path: "config/missing"})
	assert.Error(t, err)
}

func TestConsulKVThroughResolver(t *testing.T) {
	if !*runIntegration {
		t.Skip("-integration flag not set")
	}

	clients := NewClientSet()
	require.NoError(t, clients.CreateConsulClient(&CreateClientInput{
		Address: consulAddr,
	}))
	defer clients.Stop()

	_, err := clients.Consul().KV().Put(&api.KVPair{
		Key:   "greeting",
		Value: []byte("hello"),
	}, nil)
	require.NoError(t, err)

	registry := subst.NewRegistry()
	registry.Register("consul", NewConsulKV(clients))

	r, err := subst.NewResolver(subst.ResolverInput{Registry: registry})
	require.NoError(t, err)

	assert.Equal(t, "hello world",
		r.Interpolate(context.Background(), "${consul:greeting} world"))
	assert.Equal(t, "fallback",
		r.Interpolate(context.Background(), "${consul:missing:-fallback}"))
}
