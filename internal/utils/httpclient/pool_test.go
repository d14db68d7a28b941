package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_GetPut(t *testing.T) {
	pool := NewPool(2, time.Second)
	defer pool.Close()

	c1 := pool.Get()
	c2 := pool.Get()
	require.NotNil(t, c1)
	require.NotNil(t, c2)
	assert.Equal(t, time.Second, c1.Timeout)

	// Drained pool still hands out fresh clients.
	c3 := pool.Get()
	require.NotNil(t, c3)

	pool.Put(c1)
	pool.Put(c2)
	// Surplus clients are dropped without blocking.
	pool.Put(c3)
}

func TestPool_CloseIsSafe(t *testing.T) {
	pool := NewPool(1, time.Second)
	c := pool.Get()
	pool.Close()

	// After close Get and Put still work, just without recycling.
	pool.Put(c)
	assert.NotNil(t, pool.Get())
}

func TestGetGlobalPool(t *testing.T) {
	p1 := GetGlobalPool()
	p2 := GetGlobalPool()
	assert.Same(t, p1, p2)
}
