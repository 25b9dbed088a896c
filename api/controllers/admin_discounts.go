package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autohaus-digital/backend/api/responses"
	"github.com/autohaus-digital/backend/api/validators"
	discountsvc "github.com/autohaus-digital/backend/internal/discounts"
	"github.com/autohaus-digital/backend/pkg/db"
	"github.com/autohaus-digital/backend/pkg/db/models"
	"github.com/autohaus-digital/backend/pkg/enums"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/logger"
)

// AdminDiscountList returns every discount code with its redemption counters.
func AdminDiscountList(repo discountsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discount codes"))
			return
		}

		codes := make([]discountCodeResponse, 0, len(rows))
		for i := range rows {
			codes = append(codes, newDiscountCodeResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"discount_codes": codes})
	}
}

// AdminDiscountCreate registers a new code. Codes are stored uppercase so
// lookups stay case-insensitive.
func AdminDiscountCreate(repo discountsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountCodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := payload.toModel()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row.ID = uuid.New()

		if err := repo.Create(r.Context(), row); err != nil {
			if db.IsUniqueViolation(err, "ux_discount_codes_code") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "discount code already exists"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create discount code"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newDiscountCodeResponse(row))
	}
}

// AdminDiscountUpdate rewrites the mutable fields of a code. The usage
// counter is intentionally not writable here.
func AdminDiscountUpdate(repo discountsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codeID, err := pathUUID(r, "codeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload discountCodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := repo.FindByID(r.Context(), codeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load discount code"))
			return
		}

		updated, err := payload.toModel()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated.ID = existing.ID
		updated.CurrentUses = existing.CurrentUses
		updated.CreatedAt = existing.CreatedAt

		if err := repo.Update(r.Context(), updated); err != nil {
			if db.IsUniqueViolation(err, "ux_discount_codes_code") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "discount code already exists"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update discount code"))
			return
		}

		responses.WriteSuccess(w, newDiscountCodeResponse(updated))
	}
}

// AdminDiscountDelete removes a code outright. Historic orders keep their
// snapshot amounts, so deletion never rewrites past totals.
func AdminDiscountDelete(repo discountsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codeID, err := pathUUID(r, "codeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := repo.Delete(r.Context(), codeID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete discount code"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type discountCodeRequest struct {
	Code          string     `json:"code" validate:"required,min=1,max=64"`
	Type          string     `json:"type" validate:"required,oneof=percentage fixed"`
	Value         string     `json:"value" validate:"required"`
	MinOrderValue string     `json:"min_order_value"`
	MaxUses       *int       `json:"max_uses" validate:"omitempty,min=1"`
	ValidFrom     time.Time  `json:"valid_from" validate:"required"`
	ValidUntil    *time.Time `json:"valid_until"`
	IsActive      bool       `json:"is_active"`
}

func (r discountCodeRequest) toModel() (*models.DiscountCode, error) {
	discountType, err := enums.ParseDiscountType(r.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}

	value, err := decimal.NewFromString(r.Value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid value")
	}
	if value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "value must not be negative")
	}
	if discountType.IsPercentage() && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage value must not exceed 100")
	}

	minOrder := decimal.Zero
	if r.MinOrderValue != "" {
		minOrder, err = decimal.NewFromString(r.MinOrderValue)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid min_order_value")
		}
		if minOrder.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_value must not be negative")
		}
	}

	if r.ValidUntil != nil && r.ValidUntil.Before(r.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until must not precede valid_from")
	}

	return &models.DiscountCode{
		Code:          strings.ToUpper(strings.TrimSpace(r.Code)),
		Type:          discountType,
		Value:         value,
		MinOrderValue: minOrder,
		MaxUses:       r.MaxUses,
		ValidFrom:     r.ValidFrom,
		ValidUntil:    r.ValidUntil,
		IsActive:      r.IsActive,
	}, nil
}

type discountCodeResponse struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	Type          string     `json:"type"`
	Value         string     `json:"value"`
	MinOrderValue string     `json:"min_order_value"`
	MaxUses       *int       `json:"max_uses,omitempty"`
	CurrentUses   int        `json:"current_uses"`
	ValidFrom     time.Time  `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func newDiscountCodeResponse(row *models.DiscountCode) discountCodeResponse {
	return discountCodeResponse{
		ID:            row.ID,
		Code:          row.Code,
		Type:          row.Type.String(),
		Value:         row.Value.StringFixed(2),
		MinOrderValue: row.MinOrderValue.StringFixed(2),
		MaxUses:       row.MaxUses,
		CurrentUses:   row.CurrentUses,
		ValidFrom:     row.ValidFrom,
		ValidUntil:    row.ValidUntil,
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
