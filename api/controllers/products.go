package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/minshop/minshop-backend/api/middleware"
	"github.com/minshop/minshop-backend/api/responses"
	"github.com/minshop/minshop-backend/api/validators"
	"github.com/minshop/minshop-backend/internal/products"
	"github.com/minshop/minshop-backend/pkg/db/models"
	"github.com/minshop/minshop-backend/pkg/enums"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/logger"
	"github.com/minshop/minshop-backend/pkg/types"
)

type createProductPayload struct {
	Name           string          `json:"name" validate:"required"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price" validate:"required"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	Category       string          `json:"category"`
	Images         []models.Image  `json:"images"`
	Stock          int             `json:"stock" validate:"min=0"`
	Specifications types.Specs     `json:"specifications"`
	Tags           []string        `json:"tags"`
}

type updateProductPayload struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice"`
	Category       *string          `json:"category"`
	Images         []models.Image   `json:"images"`
	Stock          *int             `json:"stock"`
	Specifications types.Specs      `json:"specifications"`
	Tags           []string         `json:"tags"`
}

type setStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=published unpublished"`
}

// ProductCreate publishes a new listing for the authenticated seller.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload createProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Create(ctx, *user, products.CreateInput{
			Name:           payload.Name,
			Description:    payload.Description,
			Price:          payload.Price,
			OriginalPrice:  payload.OriginalPrice,
			Category:       payload.Category,
			Images:         payload.Images,
			Stock:          payload.Stock,
			Specifications: payload.Specifications,
			Tags:           payload.Tags,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductList returns the published catalog, optionally filtered.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		filter := products.ListFilter{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("featured")); raw != "" {
			featured := raw == "true"
			filter.Featured = &featured
		}

		items, err := svc.List(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ProductListMine returns the authenticated seller's listings, published or not.
func ProductListMine(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		items, err := svc.List(ctx, products.ListFilter{SellerID: user.ID})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ProductGet returns a single listing.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "productId"))
		if id == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		product, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductUpdate applies the provided fields to the seller's own listing.
func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "productId"))
		if id == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		var payload updateProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Update(ctx, user.ID, id, products.UpdateInput{
			Name:           payload.Name,
			Description:    payload.Description,
			Price:          payload.Price,
			OriginalPrice:  payload.OriginalPrice,
			Category:       payload.Category,
			Images:         payload.Images,
			Stock:          payload.Stock,
			Specifications: payload.Specifications,
			Tags:           payload.Tags,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductSetStatus publishes or unpublishes the seller's own listing.
func ProductSetStatus(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id := strings.TrimSpace(chi.URLParam(r, "productId"))
		if id == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		var payload setStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.SetStatus(ctx, user.ID, id, enums.ProductStatus(payload.Status))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
