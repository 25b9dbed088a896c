package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/autohaus-digital/backend/api/responses"
	"github.com/autohaus-digital/backend/api/validators"
	ordersvc "github.com/autohaus-digital/backend/internal/orders"
	"github.com/autohaus-digital/backend/pkg/db/models"
	"github.com/autohaus-digital/backend/pkg/logger"
	"github.com/autohaus-digital/backend/pkg/pagination"
)

// OrderList returns the caller's quote orders, newest first.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(rows, next))
	}
}

// OrderDetail returns one of the caller's orders with its line items.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: validators.QueryString(r, "cursor"),
	}, nil
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	Status         string              `json:"status"`
	TotalAmount    string              `json:"total_amount"`
	DiscountCodeID *uuid.UUID          `json:"discount_code_id,omitempty"`
	DiscountAmount string              `json:"discount_amount"`
	BillingName    string              `json:"billing_name"`
	BillingEmail   string              `json:"billing_email"`
	BillingCity    string              `json:"billing_city"`
	BillingCountry string              `json:"billing_country"`
	Notes          *string             `json:"notes,omitempty"`
	Items          []orderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type orderItemResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ProductID          *uuid.UUID `json:"product_id,omitempty"`
	ProductName        string     `json:"product_name"`
	Quantity           int        `json:"quantity"`
	UnitPrice          string     `json:"unit_price"`
	OriginalUnitPrice  string     `json:"original_unit_price"`
	DiscountPercentage string     `json:"discount_percentage"`
	TotalPrice         string     `json:"total_price"`
}

func newOrderListResponse(rows []models.Order, next *pagination.Cursor) orderListResponse {
	orders := make([]orderResponse, 0, len(rows))
	for i := range rows {
		orders = append(orders, newOrderResponse(&rows[i]))
	}
	resp := orderListResponse{Orders: orders}
	if next != nil {
		cursor := pagination.EncodeCursor(*next)
		resp.NextCursor = &cursor
	}
	return resp
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice.StringFixed(2),
			OriginalUnitPrice:  item.OriginalUnitPrice.StringFixed(2),
			DiscountPercentage: item.DiscountPercentage.StringFixed(2),
			TotalPrice:         item.TotalPrice.StringFixed(2),
		})
	}

	return orderResponse{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         order.Status.String(),
		TotalAmount:    order.TotalAmount.StringFixed(2),
		DiscountCodeID: order.DiscountCodeID,
		DiscountAmount: order.DiscountAmount.StringFixed(2),
		BillingName:    order.BillingName,
		BillingEmail:   order.BillingEmail,
		BillingCity:    order.BillingCity,
		BillingCountry: order.BillingCountry,
		Notes:          order.Notes,
		Items:          items,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}
