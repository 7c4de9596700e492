package controllers

import (
	"net/http"

	"github.com/minshop/minshop-backend/api/middleware"
	"github.com/minshop/minshop-backend/api/responses"
	"github.com/minshop/minshop-backend/api/validators"
	"github.com/minshop/minshop-backend/internal/cart"
	"github.com/minshop/minshop-backend/pkg/db/models"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/logger"
	"github.com/minshop/minshop-backend/pkg/types"
)

type addCartPayload struct {
	ProductID string      `json:"productId" validate:"required"`
	Quantity  int         `json:"quantity" validate:"omitempty,min=1"`
	Specs     types.Specs `json:"specs"`
}

type replaceCartPayload struct {
	Items []models.CartLine `json:"items" validate:"required"`
}

// CartAdd merges a product into the authenticated user's cart.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload addCartPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		lines, err := svc.Add(ctx, user.ID, cart.AddInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
			Specs:     payload.Specs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// CartGet returns the authenticated user's cart.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		lines, err := svc.Get(ctx, user.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// CartReplace swaps the whole cart; this is how quantities and selection
// flags are updated.
func CartReplace(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload replaceCartPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Replace(ctx, user.ID, payload.Items); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload.Items)
	}
}

// CartClear empties the authenticated user's cart.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		if err := svc.Clear(ctx, user.ID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
