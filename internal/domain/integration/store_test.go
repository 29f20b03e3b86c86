package integration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectedStore(t *testing.T) *StoreConnection {
	t.Helper()
	conn, err := NewStoreConnection(uuid.New(), ProviderShopify, "Acme.myshopify.com", "shpat_token")
	require.NoError(t, err)
	return conn
}

func TestNewStoreConnection(t *testing.T) {
	t.Run("normalizes shop domain", func(t *testing.T) {
		conn := connectedStore(t)
		assert.Equal(t, "acme.myshopify.com", conn.ShopDomain)
		assert.True(t, conn.IsConnected())
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		_, err := NewStoreConnection(uuid.New(), StoreProvider("woo"), "x.com", "tok")
		assert.Error(t, err)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		_, err := NewStoreConnection(uuid.New(), ProviderShopify, "x.myshopify.com", "")
		assert.Error(t, err)
	})
}

func TestStoreConnectionLifecycle(t *testing.T) {
	conn := connectedStore(t)

	conn.RecordSyncError("401 from store")
	assert.Equal(t, ConnectionStatusError, conn.Status)
	assert.True(t, conn.IsConnected(), "error state should still allow retry")

	require.NoError(t, conn.RotateToken("shpat_new"))
	assert.Equal(t, ConnectionStatusConnected, conn.Status)
	assert.Empty(t, conn.LastError)

	conn.RecordSync()
	assert.NotNil(t, conn.LastSyncAt)

	require.NoError(t, conn.Disconnect())
	assert.False(t, conn.IsConnected())
	assert.Empty(t, conn.AccessToken)
	assert.Error(t, conn.Disconnect())
}

func TestProductLinkSync(t *testing.T) {
	link, err := NewProductLink(uuid.New(), uuid.New(), "gid://shopify/Product/1", "Starter Kit")
	require.NoError(t, err)

	require.NoError(t, link.ApplySync("Starter Kit v2", "starter-kit", decimal.NewFromFloat(49.95), "EUR", false))
	assert.Equal(t, "Starter Kit v2", link.Title)
	assert.Equal(t, "EUR", link.Currency)
	assert.False(t, link.Available)
	assert.True(t, link.Price.Equal(decimal.NewFromFloat(49.95)))

	t.Run("empty currency keeps previous", func(t *testing.T) {
		require.NoError(t, link.ApplySync("Starter Kit v2", "starter-kit", decimal.NewFromInt(50), "", true))
		assert.Equal(t, "EUR", link.Currency)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		assert.Error(t, link.ApplySync("X", "", decimal.NewFromInt(-1), "", true))
	})
}
