package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := t.Context()
	c := NewMemory()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "APIKey:abc", "secret")
	val, ok := c.Get(ctx, "APIKey:abc")
	assert.True(t, ok)
	assert.Equal(t, "secret", val)

	c.Del(ctx, "APIKey:abc")
	_, ok = c.Get(ctx, "APIKey:abc")
	assert.False(t, ok)
}

func TestMemoryFlushAll(t *testing.T) {
	ctx := t.Context()
	c := NewMemory()
	c.Set(ctx, "a", "1")
	c.Set(ctx, "b", "2")

	c.FlushAll(ctx)

	assert.Equal(t, 0, c.Len())
}
