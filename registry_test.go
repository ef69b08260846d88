package subst

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	a := &testCommand{}
	b := &testCommand{}

	registry.Register("a", a)
	registry.Register("b", b)

	ids := registry.Commands()
	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b"}, ids)

	g, ok := registry.lookup("a")
	require.True(t, ok)
	assert.Same(t, a, g.command)

	_, ok = registry.lookup("missing")
	assert.False(t, ok)
}

func TestRegistryReplace(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	old := &testCommand{}
	repl := &testCommand{}

	registry.Register("x", old)
	registry.Register("x", repl)

	g, ok := registry.lookup("x")
	require.True(t, ok)
	assert.Same(t, repl, g.command)
	assert.Len(t, registry.Commands(), 1)
}

func TestRegistrySharedLock(t *testing.T) {
	t.Parallel()

	// One instance under two identifiers shares one guard, so its state
	// stays serialized no matter which identifier reaches it.
	registry := NewRegistry()
	c := &testCommand{}
	registry.Register("first", c)
	registry.Register("second", c)

	g1, ok := registry.lookup("first")
	require.True(t, ok)
	g2, ok := registry.lookup("second")
	require.True(t, ok)
	assert.Same(t, g1, g2)
}

func TestRegistrySerializesHandler(t *testing.T) {
	t.Parallel()

	var inflight, overlapped int32
	c := &testCommand{
		process: func(in Input) (string, error) {
			if atomic.AddInt32(&inflight, 1) > 1 {
				atomic.StoreInt32(&overlapped, 1)
			}
			defer atomic.AddInt32(&inflight, -1)
			return in.Path, nil
		},
	}

	registry := NewRegistry()
	registry.Register("slow", c)
	registry.Register("also-slow", c)

	r, err := NewResolver(ResolverInput{Registry: registry})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Interpolate(context.Background(), "${slow:a} ${also-slow:b}")
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlapped),
		"calls into one handler instance must not overlap")
	assert.Equal(t, 16, c.calls)
}
