package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autohaus-digital/backend/pkg/enums"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/types"
)

type stubDiscountValidator struct {
	applied types.AppliedDiscount
	err     error

	gotCode  string
	gotTotal decimal.Decimal
}

func (s *stubDiscountValidator) Validate(_ context.Context, code string, netTotal decimal.Decimal, _ uuid.UUID) (types.AppliedDiscount, error) {
	s.gotCode = code
	s.gotTotal = netTotal
	if s.err != nil {
		return types.AppliedDiscount{}, s.err
	}
	return s.applied, nil
}

func TestCartApplyDiscountPinsSnapshot(t *testing.T) {
	agg, totals := sampleAggregate()
	carts := &stubCartService{agg: agg, totals: totals}
	validator := &stubDiscountValidator{
		applied: types.AppliedDiscount{
			ID:    uuid.New(),
			Code:  "SOMMER10",
			Type:  enums.DiscountTypePercentage,
			Value: decimal.NewFromInt(10),
		},
	}
	handler := CartApplyDiscount(carts, validator, nil, nil)

	body := `{"code":"sommer10"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/discounts/validate", &body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if validator.gotCode != "sommer10" {
		t.Fatalf("raw code should reach the validator, got %q", validator.gotCode)
	}
	if !validator.gotTotal.Equal(totals.PreCodeNetTotal) {
		t.Fatalf("validator must see the pre-code net total, got %s", validator.gotTotal)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCartApplyDiscountMapsRejections(t *testing.T) {
	agg, totals := sampleAggregate()
	carts := &stubCartService{agg: agg, totals: totals}
	validator := &stubDiscountValidator{err: pkgerrors.New(pkgerrors.CodeNotFound, "discount code is not valid")}
	handler := CartApplyDiscount(carts, validator, nil, nil)

	body := `{"code":"NOPE"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/discounts/validate", &body))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartApplyDiscountRequiresCode(t *testing.T) {
	handler := CartApplyDiscount(&stubCartService{}, &stubDiscountValidator{}, nil, nil)

	body := `{}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/discounts/validate", &body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
