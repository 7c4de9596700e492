package users

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/minshop/minshop-backend/pkg/db/models"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/store"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (models.User, bool, error)
	Update(ctx context.Context, id string, apply func(*models.User)) (models.User, error)
}

// Service exposes account lookups and the favorites toggle.
type Service interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	ToggleFavorite(ctx context.Context, userID, productID string) ([]string, error)
}

type service struct {
	users userStore
}

// NewService builds the accounts service.
func NewService(users userStore) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("users store required")
	}
	return &service{users: users}, nil
}

// Get returns the stored account.
func (s *service) Get(ctx context.Context, userID string) (*models.User, error) {
	user, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return &user, nil
}

// ToggleFavorite adds the product to the user's favorites, or removes it when
// already present, and returns the resulting list.
func (s *service) ToggleFavorite(ctx context.Context, userID, productID string) ([]string, error) {
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	updated, err := s.users.Update(ctx, userID, func(u *models.User) {
		if idx := slices.Index(u.Favorites, productID); idx >= 0 {
			u.Favorites = slices.Delete(u.Favorites, idx, idx+1)
			return
		}
		u.Favorites = append(u.Favorites, productID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist favorites")
	}

	favorites := updated.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return favorites, nil
}
