package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/minshop/minshop-backend/pkg/db/models"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/store"
	"github.com/minshop/minshop-backend/pkg/types"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (models.User, bool, error)
	Update(ctx context.Context, id string, apply func(*models.User)) (models.User, error)
}

type productStore interface {
	FindByID(ctx context.Context, id string) (models.Product, bool, error)
}

// Service merges add-to-cart requests into a user's cart and exposes the
// remaining cart operations the storefront needs.
type Service interface {
	Add(ctx context.Context, userID string, input AddInput) ([]models.CartLine, error)
	Get(ctx context.Context, userID string) ([]models.CartLine, error)
	Replace(ctx context.Context, userID string, lines []models.CartLine) error
	Clear(ctx context.Context, userID string) error
}

type service struct {
	users    userStore
	products productStore
}

// NewService builds a cart service backed by the provided collections.
func NewService(users userStore, products productStore) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("users store required")
	}
	if products == nil {
		return nil, fmt.Errorf("products store required")
	}
	return &service{users: users, products: products}, nil
}

// AddInput captures one add-to-cart request.
type AddInput struct {
	ProductID string
	Quantity  int
	Specs     types.Specs
}

// Add merges the requested (product, specs) pair into the user's cart: an
// existing structurally-equal line gains the quantity, otherwise a new line
// is appended with the product's current name, price and first image cached.
// The whole merge runs under the users collection's write lock, so two
// concurrent adds never lose an increment.
func (s *service) Add(ctx context.Context, userID string, input AddInput) ([]models.CartLine, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, found, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	updated, err := s.users.Update(ctx, userID, func(u *models.User) {
		for i := range u.Cart {
			if u.Cart[i].Matches(input.ProductID, input.Specs) {
				u.Cart[i].Quantity += quantity
				return
			}
		}
		u.Cart = append(u.Cart, models.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.FirstImageURL(),
			Specs:     input.Specs.Clone(),
			Quantity:  quantity,
		})
	})
	if err != nil {
		return nil, translateUserErr(err)
	}
	return cloneLines(updated.Cart), nil
}

// Get returns a snapshot of the user's cart.
func (s *service) Get(ctx context.Context, userID string) ([]models.CartLine, error) {
	user, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return cloneLines(user.Cart), nil
}

// Replace swaps the entire cart, which is how the storefront updates
// quantities and selection flags.
func (s *service) Replace(ctx context.Context, userID string, lines []models.CartLine) error {
	for _, line := range lines {
		if line.ProductID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart line product id is required")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart line quantity must be positive")
		}
	}

	replacement := cloneLines(lines)
	if _, err := s.users.Update(ctx, userID, func(u *models.User) {
		u.Cart = replacement
	}); err != nil {
		return translateUserErr(err)
	}
	return nil
}

// Clear empties the user's cart.
func (s *service) Clear(ctx context.Context, userID string) error {
	if _, err := s.users.Update(ctx, userID, func(u *models.User) {
		u.Cart = []models.CartLine{}
	}); err != nil {
		return translateUserErr(err)
	}
	return nil
}

func translateUserErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	for i, line := range lines {
		out[i] = line.Clone()
	}
	return out
}
