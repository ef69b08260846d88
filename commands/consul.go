package commands

import (
	"context"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/pkg/errors"

	"github.com/subst-go/subst"
)

// ConsulKV resolves keys in Consul's KV store, for example
// ${consul:config/service/port}. The value is the key's contents,
// verbatim. A missing key is an internal failure, so the placeholder falls
// back to its default value.
type ConsulKV struct {
	clients *ClientSet

	// Datacenter scopes lookups to a specific datacenter when set.
	Datacenter string
}

var _ subst.Fetcher = (*ConsulKV)(nil)

// NewConsulKV creates a ConsulKV command reading through the set's Consul
// client.
func NewConsulKV(clients *ClientSet) *ConsulKV {
	return &ConsulKV{clients: clients}
}

// Fetch reads the key at the placeholder's path.
func (c *ConsulKV) Fetch(ctx context.Context, in subst.Input) (*subst.Entry, error) {
	client := c.clients.Consul()
	if client == nil {
		return nil, errors.New("consul: no client configured")
	}

	key := strings.TrimPrefix(strings.TrimSpace(in.Path), "/")
	if key == "" {
		return nil, errors.Errorf("consul: invalid key %q", in.Path)
	}

	opts := &api.QueryOptions{Datacenter: c.Datacenter}
	pair, _, err := client.KV().Get(key, opts.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "consul: %s", key)
	}
	if pair == nil {
		return nil, errors.Errorf("consul: no key exists at %s", key)
	}

	return &subst.Entry{Value: string(pair.Value), Scalar: true}, nil
}

// Process implements Command for use without the per-call cache.
func (c *ConsulKV) Process(ctx context.Context, in subst.Input) (string, error) {
	return processEntry(ctx, c, in)
}
