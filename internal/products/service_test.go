package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

	svc, err := NewService(client.Products)
	require.NoError(t, err)
	return svc, client
}

func seller() models.User {
	now := time.Now().UTC()
	return models.User{
		Meta:        store.Meta{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:        "sam",
		Email:       "sam@example.com",
		Role:        enums.RoleSeller,
		CompanyName: "Acme Parts",
		License:     "LIC-100",
	}
}

func TestCreateDefaultsOriginalPrice(t *testing.T) {
	t.Parallel()

	svc, _ := newFixture(t)

	product, err := svc.Create(context.Background(), seller(), CreateInput{
		Name:  "mouse",
		Price: decimal.NewFromInt(100),
		Stock: 5,
	})
	require.NoError(t, err)
	require.True(t, product.OriginalPrice.Equal(decimal.NewFromInt(130)),
		"original price defaults to the sale price plus markup")
	require.Equal(t, enums.ProductStatusPublished, product.Status)
	require.Equal(t, "Acme Parts", product.SellerName)
	require.Zero(t, product.AverageRating)
	require.Zero(t, product.ReviewCount)
	require.False(t, product.CreatedAt.IsZero())
}

func TestCreateRejectsBuyers(t *testing.T) {
	t.Parallel()

	svc, _ := newFixture(t)
	buyer := seller()
	buyer.Role = enums.RoleBuyer

	_, err := svc.Create(context.Background(), buyer, CreateInput{Name: "mouse", Price: decimal.NewFromInt(10)})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestCreateValidatesPrice(t *testing.T) {
	t.Parallel()

	svc, _ := newFixture(t)

	_, err := svc.Create(context.Background(), seller(), CreateInput{Name: "mouse", Price: decimal.Zero})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListFiltersCatalog(t *testing.T) {
	t.Parallel()

	svc, _ := newFixture(t)
	ctx := context.Background()
	owner := seller()

	published, err := svc.Create(ctx, owner, CreateInput{Name: "keyboard", Price: decimal.NewFromInt(80), Category: "peripherals"})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, owner, CreateInput{Name: "cable", Price: decimal.NewFromInt(5), Category: "cables"})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, owner.ID, hidden.ID, enums.ProductStatusUnpublished)
	require.NoError(t, err)

	catalog, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, catalog, 1, "unpublished listings stay out of the public catalog")
	require.Equal(t, published.ID, catalog[0].ID)

	byCategory, err := svc.List(ctx, ListFilter{Category: "cables"})
	require.NoError(t, err)
	require.Empty(t, byCategory)

	mine, err := svc.List(ctx, ListFilter{SellerID: owner.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2, "sellers see their unpublished listings")

	bySearch, err := svc.List(ctx, ListFilter{Search: "KEY"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
}

func TestUpdateIsOwnerOnly(t *testing.T) {
	t.Parallel()

	svc, _ := newFixture(t)
	ctx := context.Background()
	owner := seller()

	product, err := svc.Create(ctx, owner, CreateInput{Name: "keyboard", Price: decimal.NewFromInt(80)})
	require.NoError(t, err)

	name := "mechanical keyboard"
	_, err = svc.Update(ctx, "someone-else", product.ID, UpdateInput{Name: &name})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	updated, err := svc.Update(ctx, owner.ID, product.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "mechanical keyboard", updated.Name)
	require.True(t, updated.Price.Equal(decimal.NewFromInt(80)), "untouched fields are preserved")
}

func TestGetUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newFixture(t)

	_, err := svc.Get(context.Background(), "ghost")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
