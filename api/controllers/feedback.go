package controllers

import (
	"net/http"

	"github.com/minshop/minshop-backend/api/middleware"
	"github.com/minshop/minshop-backend/api/responses"
	"github.com/minshop/minshop-backend/api/validators"
	"github.com/minshop/minshop-backend/internal/feedback"
	pkgerrors "github.com/minshop/minshop-backend/pkg/errors"
	"github.com/minshop/minshop-backend/pkg/logger"
)

type submitFeedbackPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Content string `json:"content" validate:"required"`
}

// FeedbackSubmit records a note from the public feedback form.
func FeedbackSubmit(svc feedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feedback service unavailable"))
			return
		}

		var payload submitFeedbackPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.Submit(ctx, middleware.UserFromContext(ctx), feedback.SubmitInput{
			Name:    payload.Name,
			Email:   payload.Email,
			Content: payload.Content,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}
