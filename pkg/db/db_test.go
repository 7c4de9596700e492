package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minshop/minshop-backend/pkg/config"
	"github.com/minshop/minshop-backend/pkg/db/models"
	"github.com/minshop/minshop-backend/pkg/store"
)

func TestNewCreatesDataDirAndRegistry(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	client, err := New(context.Background(), config.DataConfig{Dir: dir}, nil)
	require.NoError(t, err)
	require.Equal(t, dir, client.Dir())
	require.NoError(t, client.Ping(context.Background()))

	// Each collection is usable immediately and persists independently.
	user := models.User{Meta: store.Meta{ID: "u1"}, Name: "amy", Cart: []models.CartLine{}}
	require.NoError(t, client.Users.Insert(context.Background(), user))

	products, err := client.Products.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, products)

	users, err := client.Users.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "amy", users[0].Name)
}

func TestPingFailsOnMissingDir(t *testing.T) {
	t.Parallel()

	client := &Client{dir: filepath.Join(t.TempDir(), "gone")}
	require.Error(t, client.Ping(context.Background()))
}
