package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/autohaus-digital/backend/api/middleware"
	"github.com/autohaus-digital/backend/api/responses"
	"github.com/autohaus-digital/backend/api/validators"
	cartsvc "github.com/autohaus-digital/backend/internal/cart"
	"github.com/autohaus-digital/backend/internal/pricing"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/logger"
)

// CartFetch returns the caller's current cart with a fresh totals breakdown.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agg, totals, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(agg, totals, nil))
	}
}

// CartAddProduct adds a product line or merges quantity into an existing one.
func CartAddProduct(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agg, totals, err := svc.AddProduct(r.Context(), userID, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(agg, totals, nil))
	}
}

// CartAddVehicle adds a vehicle line. A vehicle appears at most once per cart.
func CartAddVehicle(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agg, totals, err := svc.AddVehicle(r.Context(), userID, payload.VehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(agg, totals, nil))
	}
}

// CartSetQuantity replaces the quantity of an existing product line.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agg, totals, err := svc.SetQuantity(r.Context(), userID, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(agg, totals, nil))
	}
}

// CartRemoveItem removes a product line. Removing an absent line is a no-op,
// not an error.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return removeLine(svc, logg, "productId")
}

// CartRemoveVehicle removes a vehicle line.
func CartRemoveVehicle(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return removeLine(svc, logg, "vehicleId")
}

func removeLine(svc cartsvc.Service, logg *logger.Logger, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agg, totals, err := svc.Remove(r.Context(), userID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(agg, totals, nil))
	}
}

// CartReconcile re-checks every line against the live catalog and drops the
// ones that are no longer purchasable. The removed names come back so the
// UI can tell the user what disappeared.
func CartReconcile(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agg, totals, removed, err := svc.Reconcile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(agg, totals, removed))
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

type addProductRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type addVehicleRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id" validate:"required"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type cartResponse struct {
	Items           []cartItemResponse    `json:"items"`
	Vehicles        []cartVehicleResponse `json:"vehicles"`
	AppliedDiscount *appliedCodeResponse  `json:"applied_discount,omitempty"`
	RemovedItems    []string              `json:"removed_items,omitempty"`
	Totals          totalsResponse        `json:"totals"`
}

type cartItemResponse struct {
	CatalogItemID      uuid.UUID `json:"catalog_item_id"`
	Name               string    `json:"name"`
	Quantity           int       `json:"quantity"`
	UnitNetPrice       string    `json:"unit_net_price"`
	DiscountPercentage string    `json:"discount_percentage"`
	TaxRate            string    `json:"tax_rate"`
}

type cartVehicleResponse struct {
	VehicleID       uuid.UUID `json:"vehicle_id"`
	Name            string    `json:"name"`
	UnitNetPrice    string    `json:"unit_net_price"`
	VatMarginScheme bool      `json:"vat_margin_scheme"`
}

type appliedCodeResponse struct {
	Code  string `json:"code"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type totalsResponse struct {
	Lines             []lineTotalResponse `json:"lines"`
	PreCodeNetTotal   string              `json:"pre_code_net_total"`
	ItemDiscountTotal string              `json:"item_discount_total"`
	CodeDiscount      string              `json:"code_discount"`
	NetTotal          string              `json:"net_total"`
	TaxTotal          string              `json:"tax_total"`
	GrossTotal        string              `json:"gross_total"`
}

type lineTotalResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Quantity           int       `json:"quantity"`
	OriginalUnitPrice  string    `json:"original_unit_price"`
	UnitPrice          string    `json:"unit_price"`
	DiscountPercentage string    `json:"discount_percentage"`
	LineNet            string    `json:"line_net"`
	LineTax            string    `json:"line_tax"`
	IsVehicle          bool      `json:"is_vehicle"`
}

func newCartResponse(agg *cartsvc.Aggregate, totals pricing.Totals, removed []string) cartResponse {
	items := make([]cartItemResponse, 0, len(agg.Items))
	for _, item := range agg.Items {
		items = append(items, cartItemResponse{
			CatalogItemID:      item.CatalogItemID,
			Name:               item.Name,
			Quantity:           item.Quantity,
			UnitNetPrice:       item.UnitNetPrice.StringFixed(2),
			DiscountPercentage: item.DiscountPercentage.StringFixed(2),
			TaxRate:            item.TaxRate.StringFixed(2),
		})
	}

	vehicles := make([]cartVehicleResponse, 0, len(agg.Vehicles))
	for _, item := range agg.Vehicles {
		vehicles = append(vehicles, cartVehicleResponse{
			VehicleID:       item.VehicleID,
			Name:            item.Name(),
			UnitNetPrice:    item.UnitNetPrice.StringFixed(2),
			VatMarginScheme: item.VatMarginScheme,
		})
	}

	resp := cartResponse{
		Items:        items,
		Vehicles:     vehicles,
		RemovedItems: removed,
		Totals:       newTotalsResponse(totals),
	}
	if agg.AppliedDiscount != nil {
		resp.AppliedDiscount = &appliedCodeResponse{
			Code:  agg.AppliedDiscount.Code,
			Type:  agg.AppliedDiscount.Type.String(),
			Value: agg.AppliedDiscount.Value.StringFixed(2),
		}
	}
	return resp
}

func newTotalsResponse(totals pricing.Totals) totalsResponse {
	lines := make([]lineTotalResponse, 0, len(totals.Lines))
	for _, line := range totals.Lines {
		lines = append(lines, lineTotalResponse{
			ID:                 line.ID,
			Name:               line.Name,
			Quantity:           line.Quantity,
			OriginalUnitPrice:  line.OriginalUnitPrice.StringFixed(2),
			UnitPrice:          line.UnitPrice.StringFixed(2),
			DiscountPercentage: line.DiscountPercentage.StringFixed(2),
			LineNet:            line.LineNet.StringFixed(2),
			LineTax:            line.LineTax.StringFixed(2),
			IsVehicle:          line.IsVehicle,
		})
	}
	return totalsResponse{
		Lines:             lines,
		PreCodeNetTotal:   totals.PreCodeNetTotal.StringFixed(2),
		ItemDiscountTotal: totals.ItemDiscountTotal.StringFixed(2),
		CodeDiscount:      totals.CodeDiscount.StringFixed(2),
		NetTotal:          totals.NetTotal.StringFixed(2),
		TaxTotal:          totals.TaxTotal.StringFixed(2),
		GrossTotal:        totals.GrossTotal.StringFixed(2),
	}
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}
