package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "user:1", []byte(`{"id":1}`), time.Minute))

	got, err := c.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(got))

	mr.FastForward(2 * time.Minute)
	got, err = c.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	got, _ = c.Get(ctx, "k")
	assert.Nil(t, got)
}

func TestClient_FailSafe(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	mr.Close()
	ctx := context.Background()

	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestClient_Nil(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}
