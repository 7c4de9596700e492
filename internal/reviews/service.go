package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minshop/minshop-backend/pkg/db/models"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/store"
)

type reviewStore interface {
	Filter(ctx context.Context, pred func(models.Review) bool) ([]models.Review, error)
	Insert(ctx context.Context, review models.Review) error
}

type productStore interface {
	FindByID(ctx context.Context, id string) (models.Product, bool, error)
	Update(ctx context.Context, id string, apply func(*models.Product)) (models.Product, error)
}

// Service appends product reviews and keeps the product's derived rating
// fields in sync. This is the only code path allowed to touch averageRating
// and reviewCount.
type Service interface {
	Add(ctx context.Context, reviewer models.User, input AddInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
}

type service struct {
	reviews  reviewStore
	products productStore
}

// NewService builds the review workflow.
func NewService(reviews reviewStore, products productStore) (Service, error) {
	if reviews == nil {
		return nil, fmt.Errorf("reviews store required")
	}
	if products == nil {
		return nil, fmt.Errorf("products store required")
	}
	return &service{reviews: reviews, products: products}, nil
}

// AddInput is one buyer rating.
type AddInput struct {
	ProductID string
	Rating    int
	Comment   string
}

// Add appends the review, then recomputes the product's average rating over
// every stored review for it.
func (s *service) Add(ctx context.Context, reviewer models.User, input AddInput) (*models.Review, error) {
	if input.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	if _, found, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	} else if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	now := time.Now().UTC()
	review := models.Review{
		Meta:      store.Meta{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		ProductID: input.ProductID,
		UserID:    reviewer.ID,
		UserName:  reviewer.Name,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}
	if err := s.reviews.Insert(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist review")
	}

	if err := s.recompute(ctx, input.ProductID); err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByProduct returns a product's reviews in storage order.
func (s *service) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	items, err := s.reviews.Filter(ctx, func(r models.Review) bool { return r.ProductID == productID })
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviews")
	}
	return items, nil
}

func (s *service) recompute(ctx context.Context, productID string) error {
	all, err := s.reviews.Filter(ctx, func(r models.Review) bool { return r.ProductID == productID })
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviews")
	}

	sum := 0
	for _, r := range all {
		sum += r.Rating
	}
	count := len(all)
	average := 0.0
	if count > 0 {
		average = float64(sum) / float64(count)
	}

	if _, err := s.products.Update(ctx, productID, func(p *models.Product) {
		p.AverageRating = average
		p.ReviewCount = count
	}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
	}
	return nil
}
