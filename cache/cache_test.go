package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDisabledClientIsEmptyCache(t *testing.T) {
	ctx := context.Background()

	for _, c := range []*Client{nil, New("", "", 0)} {
		require.False(t, c.Enabled())
		require.NoError(t, c.Ping(ctx))
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Nil(t, v)

		require.NoError(t, c.Delete(ctx, "k"))
		require.NoError(t, c.Close())
	}
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.True(t, c.Enabled())
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)
}
