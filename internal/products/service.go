package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minshop/minshop-backend/pkg/db/models"
	"github.com/minshop/minshop-backend/pkg/enums"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/store"
	"github.com/minshop/minshop-backend/pkg/types"
)

// markupFactor derives the displayed original price from the sale price when
// the seller does not provide one.
var markupFactor = decimal.NewFromFloat(1.3)

type productStore interface {
	FindByID(ctx context.Context, id string) (models.Product, bool, error)
	Filter(ctx context.Context, pred func(models.Product) bool) ([]models.Product, error)
	Insert(ctx context.Context, product models.Product) error
	Update(ctx context.Context, id string, apply func(*models.Product)) (models.Product, error)
}

// Service manages the product catalog.
type Service interface {
	Create(ctx context.Context, seller models.User, input CreateInput) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, sellerID, productID string, input UpdateInput) (*models.Product, error)
	SetStatus(ctx context.Context, sellerID, productID string, status enums.ProductStatus) (*models.Product, error)
}

type service struct {
	products productStore
}

// NewService builds the catalog service on the products collection.
func NewService(products productStore) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("products store required")
	}
	return &service{products: products}, nil
}

// CreateInput is a seller's new listing.
type CreateInput struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	OriginalPrice  decimal.Decimal
	Category       string
	Images         []models.Image
	Stock          int
	Specifications types.Specs
	Tags           []string
}

// ListFilter narrows the published catalog.
type ListFilter struct {
	Category string
	Featured *bool
	SellerID string
	Search   string
}

// UpdateInput carries the mutable listing fields; nil pointers leave the
// stored value alone.
type UpdateInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	OriginalPrice  *decimal.Decimal
	Category       *string
	Images         []models.Image
	Stock          *int
	Specifications types.Specs
	Tags           []string
}

// Create publishes a new listing for the seller. A missing original price
// defaults to the sale price with the standard markup applied.
func (s *service) Create(ctx context.Context, seller models.User, input CreateInput) (*models.Product, error) {
	if seller.Role != enums.RoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only sellers can create products")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	originalPrice := input.OriginalPrice
	if originalPrice.IsZero() {
		originalPrice = input.Price.Mul(markupFactor).Round(2)
	}

	sellerName := seller.CompanyName
	if sellerName == "" {
		sellerName = seller.Name
	}

	now := time.Now().UTC()
	product := models.Product{
		Meta:           store.Meta{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Price:          input.Price,
		OriginalPrice:  originalPrice,
		Category:       input.Category,
		Images:         input.Images,
		Stock:          input.Stock,
		Specifications: input.Specifications.Clone(),
		SellerID:       seller.ID,
		SellerName:     sellerName,
		Status:         enums.ProductStatusPublished,
		Tags:           input.Tags,
	}
	if product.Images == nil {
		product.Images = []models.Image{}
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist product")
	}
	return &product, nil
}

// List returns published listings matching the filter. SellerID switches to
// the seller's own view, which includes unpublished listings.
func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	items, err := s.products.Filter(ctx, func(p models.Product) bool {
		if filter.SellerID != "" {
			if p.SellerID != filter.SellerID {
				return false
			}
		} else if p.Status != enums.ProductStatusPublished {
			return false
		}
		if filter.Category != "" && p.Category != filter.Category {
			return false
		}
		if filter.Featured != nil && p.IsFeatured != *filter.Featured {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	return items, nil
}

// Get returns one listing by id.
func (s *service) Get(ctx context.Context, id string) (*models.Product, error) {
	product, found, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &product, nil
}

// Update applies the provided fields to the seller's own listing.
func (s *service) Update(ctx context.Context, sellerID, productID string, input UpdateInput) (*models.Product, error) {
	if input.Price != nil && input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	if err := s.authorize(ctx, sellerID, productID); err != nil {
		return nil, err
	}

	updated, err := s.products.Update(ctx, productID, func(p *models.Product) {
		if input.Name != nil {
			p.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			p.Description = *input.Description
		}
		if input.Price != nil {
			p.Price = *input.Price
		}
		if input.OriginalPrice != nil {
			p.OriginalPrice = *input.OriginalPrice
		}
		if input.Category != nil {
			p.Category = *input.Category
		}
		if input.Images != nil {
			p.Images = input.Images
		}
		if input.Stock != nil {
			p.Stock = *input.Stock
		}
		if input.Specifications != nil {
			p.Specifications = input.Specifications.Clone()
		}
		if input.Tags != nil {
			p.Tags = input.Tags
		}
	})
	if err != nil {
		return nil, translateProductErr(err)
	}
	return &updated, nil
}

// SetStatus publishes or unpublishes the seller's own listing.
func (s *service) SetStatus(ctx context.Context, sellerID, productID string, status enums.ProductStatus) (*models.Product, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product status %q", status))
	}

	if err := s.authorize(ctx, sellerID, productID); err != nil {
		return nil, err
	}

	updated, err := s.products.Update(ctx, productID, func(p *models.Product) {
		p.Status = status
	})
	if err != nil {
		return nil, translateProductErr(err)
	}
	return &updated, nil
}

// authorize checks the listing exists and belongs to the seller.
func (s *service) authorize(ctx context.Context, sellerID, productID string) error {
	product, found, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.SellerID != sellerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}
	return nil
}

func translateProductErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist product")
}
