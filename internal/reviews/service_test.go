package reviews

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

	svc, err := NewService(client.Reviews, client.Products)
	require.NoError(t, err)
	return svc, client
}

func seedProduct(t *testing.T, client *db.Client) models.Product {
	t.Helper()

	now := time.Now().UTC()
	product := models.Product{
		Meta:   store.Meta{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:   "keyboard",
		Price:  decimal.NewFromInt(80),
		Status: enums.ProductStatusPublished,
	}
	require.NoError(t, client.Products.Insert(context.Background(), product))
	return product
}

func reviewer() models.User {
	return models.User{
		Meta: store.Meta{ID: uuid.NewString()},
		Name: "amy",
		Role: enums.RoleBuyer,
	}
}

func TestFirstReviewSetsDerivedFields(t *testing.T) {
	t.Parallel()

	svc, client := newFixture(t)
	ctx := context.Background()
	product := seedProduct(t, client)

	review, err := svc.Add(ctx, reviewer(), AddInput{ProductID: product.ID, Rating: 4, Comment: "solid"})
	require.NoError(t, err)
	require.Equal(t, 4, review.Rating)

	after, _, err := client.Products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 4.0, after.AverageRating)
	require.Equal(t, 1, after.ReviewCount)
}

func TestAverageSpansAllReviews(t *testing.T) {
	t.Parallel()

	svc, client := newFixture(t)
	ctx := context.Background()
	product := seedProduct(t, client)

	for _, rating := range []int{5, 4, 3} {
		_, err := svc.Add(ctx, reviewer(), AddInput{ProductID: product.ID, Rating: rating})
		require.NoError(t, err)
	}

	after, _, err := client.Products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	require.InDelta(t, 4.0, after.AverageRating, 1e-9)
	require.Equal(t, 3, after.ReviewCount)

	listed, err := svc.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
}

func TestRatingBounds(t *testing.T) {
	t.Parallel()

	svc, client := newFixture(t)
	product := seedProduct(t, client)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Add(context.Background(), reviewer(), AddInput{ProductID: product.ID, Rating: rating})
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestReviewUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newFixture(t)

	_, err := svc.Add(context.Background(), reviewer(), AddInput{ProductID: "ghost", Rating: 5})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
