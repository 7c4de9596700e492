package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/minshop/minshop-backend/pkg/config"
	"github.com/minshop/minshop-backend/pkg/db"
	"github.com/minshop/minshop-backend/pkg/db/models"
	"github.com/minshop/minshop-backend/pkg/enums"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/store"
)

func newFixture(t *testing.T) (Service, *db.Client) {
	t.Helper()

	client, err := db.New(context.Background(), config.DataConfig{Dir: t.TempDir()}, nil)
	require.NoError(t, err)

	svc, err := NewService(client.Users)
	require.NoError(t, err)
	return svc, client
}

func seedUser(t *testing.T, client *db.Client) models.User {
	t.Helper()

	now := time.Now().UTC()
	user := models.User{
		Meta:      store.Meta{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:      "amy",
		Email:     "amy@example.com",
		Role:      enums.RoleBuyer,
		Cart:      []models.CartLine{},
		Favorites: []string{},
	}
	require.NoError(t, client.Users.Insert(context.Background(), user))
	return user
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	t.Parallel()

	svc, client := newFixture(t)
	ctx := context.Background()
	user := seedUser(t, client)

	favorites, err := svc.ToggleFavorite(ctx, user.ID, "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, favorites)

	favorites, err = svc.ToggleFavorite(ctx, user.ID, "p2")
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2"}, favorites)

	favorites, err = svc.ToggleFavorite(ctx, user.ID, "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"p2"}, favorites, "a second toggle removes the favorite")
}

func TestToggleFavoriteUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newFixture(t)

	_, err := svc.ToggleFavorite(context.Background(), "ghost", "p1")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	svc, client := newFixture(t)
	user := seedUser(t, client)

	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	_, err = svc.Get(context.Background(), "ghost")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
