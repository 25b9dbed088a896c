package controllers

import (
	"net/http"
	"strings"

	"github.com/autohaus-digital/backend/api/responses"
	"github.com/autohaus-digital/backend/api/validators"
	cartsvc "github.com/autohaus-digital/backend/internal/cart"
	discountsvc "github.com/autohaus-digital/backend/internal/discounts"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/logger"
	"github.com/autohaus-digital/backend/pkg/metrics"
)

// CartApplyDiscount validates a discount code against the current cart and,
// when eligible, pins its snapshot to the cart session. Validation always
// runs server-side against the stored row, never against client fields.
func CartApplyDiscount(carts cartsvc.Service, codes discountsvc.Service, checkout *metrics.CheckoutMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		_, totals, err := carts.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied, err := codes.Validate(r.Context(), payload.Code, totals.PreCodeNetTotal, userID)
		if err != nil {
			checkout.IncCodeRejected(rejectionReason(err))
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agg, totals, err := carts.ApplyDiscount(r.Context(), userID, applied)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkout.IncCodeRedeemed()
		responses.WriteSuccess(w, newCartResponse(agg, totals, nil))
	}
}

// CartRemoveDiscount clears any applied code from the cart session.
func CartRemoveDiscount(carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agg, totals, err := carts.RemoveDiscount(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(agg, totals, nil))
	}
}

type applyDiscountRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}

func rejectionReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "internal"
	}
	return strings.ToLower(string(typed.Code()))
}
