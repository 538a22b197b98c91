package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k", LocalOrderID: "a", GatewayOrderID: "pp-a"}))
	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k", LocalOrderID: "b", GatewayOrderID: "pp-b"}))

	rec, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "b", rec.LocalOrderID)
	assert.Equal(t, "pp-b", rec.GatewayOrderID)
}

func TestMemoryStoreGetAbsentKey(t *testing.T) {
	store := NewMemoryStore()

	rec, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k", LocalOrderID: "a", GatewayOrderID: "pp-a", CreatedAt: time.Now()}))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	rec, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, PendingCheckout{CheckoutKey: "k", LocalOrderID: "a", GatewayOrderID: "pp-a"}))

	rec, err := store.Get(ctx, "k")
	require.NoError(t, err)
	rec.LocalOrderID = "mutated"

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "a", again.LocalOrderID)
}
