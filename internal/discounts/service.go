package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autohaus-digital/backend/pkg/db/models"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/types"
)

// Service is the server-authoritative discount validator. Client-visible code
// fields are never trusted; every acceptance decision re-reads the row here.
type Service interface {
	Validate(ctx context.Context, code string, netTotal decimal.Decimal, userID uuid.UUID) (types.AppliedDiscount, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a discount validator backed by the provided ledger.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Validate checks a code against the authoritative row and the per-user usage
// ledger. It is read-only: the usage counter is only consumed later, inside
// the order submission transaction.
//
// The four rejection shapes stay distinct so the caller can render them:
// unknown/ineligible code, already used by this user, minimum order value not
// met (details carry the threshold), and an unauthenticated caller.
func (s *service) Validate(ctx context.Context, code string, netTotal decimal.Decimal, userID uuid.UUID) (types.AppliedDiscount, error) {
	if userID == uuid.Nil {
		return types.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to redeem a discount code")
	}
	if strings.TrimSpace(code) == "" {
		return types.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount code is required")
	}
	if netTotal.IsNegative() {
		return types.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "order total must not be negative")
	}

	row, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.AppliedDiscount{}, errInvalidCode()
		}
		return types.AppliedDiscount{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up discount code")
	}

	if !row.EligibleAt(s.now()) {
		return types.AppliedDiscount{}, errInvalidCode()
	}

	used, err := s.repo.HasUsage(ctx, userID, row.ID)
	if err != nil {
		return types.AppliedDiscount{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking discount usage")
	}
	if used {
		return types.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeConflict, "discount code already used")
	}

	if netTotal.LessThan(row.MinOrderValue) {
		return types.AppliedDiscount{}, pkgerrors.
			New(pkgerrors.CodeValidation, "minimum order value not met").
			WithDetails(map[string]any{"min_order_value": row.MinOrderValue.StringFixed(2)})
	}

	return snapshot(row), nil
}

func errInvalidCode() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "discount code is not valid")
}

func snapshot(row *models.DiscountCode) types.AppliedDiscount {
	return types.AppliedDiscount{
		ID:            row.ID,
		Code:          row.Code,
		Type:          row.Type,
		Value:         row.Value,
		MinOrderValue: row.MinOrderValue,
	}
}
