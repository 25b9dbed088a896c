package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/autohaus-digital/backend/api/middleware"
	"github.com/autohaus-digital/backend/api/responses"
	"github.com/autohaus-digital/backend/api/validators"
	ordersvc "github.com/autohaus-digital/backend/internal/orders"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/logger"
	"github.com/autohaus-digital/backend/pkg/metrics"
)

// Checkout submits the caller's cart as a quote order.
func Checkout(svc ordersvc.Service, checkout *metrics.CheckoutMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submitter := ordersvc.Submitter{
			UserID:   userID,
			Approved: middleware.ApprovedFromContext(r.Context()),
			Admin:    middleware.AdminFromContext(r.Context()),
		}

		result, err := svc.Submit(r.Context(), submitter, payload.toInput())
		if err != nil {
			checkout.IncOrderSubmitted(rejectionReason(err))
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkout.IncOrderSubmitted("accepted")
		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

type checkoutRequest struct {
	BillingName    string `json:"billing_name" validate:"required"`
	BillingEmail   string `json:"billing_email" validate:"required,email"`
	BillingPhone   string `json:"billing_phone"`
	BillingStreet  string `json:"billing_street" validate:"required"`
	BillingZip     string `json:"billing_zip" validate:"required"`
	BillingCity    string `json:"billing_city" validate:"required"`
	BillingCountry string `json:"billing_country" validate:"required"`

	UseDifferentShipping bool   `json:"use_different_shipping"`
	ShippingName         string `json:"shipping_name"`
	ShippingStreet       string `json:"shipping_street"`
	ShippingZip          string `json:"shipping_zip"`
	ShippingCity         string `json:"shipping_city"`
	ShippingCountry      string `json:"shipping_country"`

	Notes *string `json:"notes"`
}

func (c checkoutRequest) toInput() ordersvc.SubmitInput {
	return ordersvc.SubmitInput{
		BillingName:    c.BillingName,
		BillingEmail:   c.BillingEmail,
		BillingPhone:   c.BillingPhone,
		BillingStreet:  c.BillingStreet,
		BillingZip:     c.BillingZip,
		BillingCity:    c.BillingCity,
		BillingCountry: c.BillingCountry,

		UseDifferentShipping: c.UseDifferentShipping,
		ShippingName:         c.ShippingName,
		ShippingStreet:       c.ShippingStreet,
		ShippingZip:          c.ShippingZip,
		ShippingCity:         c.ShippingCity,
		ShippingCountry:      c.ShippingCountry,

		Notes: c.Notes,
	}
}

type checkoutResponse struct {
	OrderID     uuid.UUID      `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	Totals      totalsResponse `json:"totals"`
}

func newCheckoutResponse(result *ordersvc.SubmitResult) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}
	return checkoutResponse{
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		Totals:      newTotalsResponse(result.Totals),
	}
}
