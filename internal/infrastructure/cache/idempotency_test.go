package cache_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
)

func newIdempotency(t *testing.T) (*cache.Idempotency, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewIdempotency(client, time.Minute), mr
}

func TestIdempotency_CicloCompleto(t *testing.T) {
	store, _ := newIdempotency(t)
	ctx := context.Background()

	state, resp, err := store.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, cache.StateNew, state)
	assert.Nil(t, resp)

	state, _, err = store.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, cache.StatePending, state)

	require.NoError(t, store.Complete(ctx, "k1", cache.StoredResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"x"}`)}))

	state, resp, err = store.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, cache.StateComplete, state)
	require.NotNil(t, resp)
	assert.Equal(t, 201, resp.Status)
	assert.JSONEq(t, `{"id":"x"}`, string(resp.Body))
}

func TestIdempotency_ReleaseYExpiracion(t *testing.T) {
	store, mr := newIdempotency(t)
	ctx := context.Background()

	_, _, err := store.Begin(ctx, "k2")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k2"))

	state, _, err := store.Begin(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, cache.StateNew, state)

	mr.FastForward(2 * time.Minute)
	state, _, err = store.Begin(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, cache.StateNew, state)
}
