package controllers

import (
	"net/http"

	"github.com/minshop/minshop-backend/api/middleware"
	"github.com/minshop/minshop-backend/api/responses"
	"github.com/minshop/minshop-backend/api/validators"
	"github.com/minshop/minshop-backend/internal/orders"
	"github.com/minshop/minshop-backend/pkg/enums"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/logger"
)

type placeOrderPayload struct {
	Address        string `json:"address" validate:"required"`
	PaymentMethod  string `json:"paymentMethod" validate:"required"`
	DeliveryMethod string `json:"deliveryMethod" validate:"omitempty,oneof=standard express"`
	Notes          string `json:"notes"`
	RequestID      string `json:"requestId"`
}

// OrderPlace converts the selected cart lines into an order.
func OrderPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload placeOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		receipt, err := svc.Place(ctx, user.ID, orders.PlaceInput{
			Address:        payload.Address,
			PaymentMethod:  payload.PaymentMethod,
			DeliveryMethod: enums.DeliveryMethod(payload.DeliveryMethod),
			Notes:          payload.Notes,
			RequestID:      payload.RequestID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// OrderList returns the authenticated user's orders.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		user := middleware.UserFromContext(ctx)
		if user == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		items, err := svc.ListByUser(ctx, user.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
