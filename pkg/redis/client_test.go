package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestClient_SetGet(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))

	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestClient_GetMissingKeyIsNil(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNil(err))
}

func TestClient_SetRespectsTTL(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := client.Get(ctx, "k")
	assert.True(t, IsNil(err))
}

func TestClient_SetNX(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquisition fails while the lock is held")
}

func TestClient_Delete(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, client.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, client.Delete(ctx, "a", "b"))

	_, err := client.Get(ctx, "a")
	assert.True(t, IsNil(err))
}

func TestClient_Exists(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))

	n, err := client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = client.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestClient_Health(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}
