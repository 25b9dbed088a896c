package discounts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autohaus-digital/backend/pkg/db/models"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
)

type stubRepo struct {
	Repository
	codes  map[string]*models.DiscountCode
	usages map[uuid.UUID]map[uuid.UUID]bool // userID -> codeID
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		codes:  map[string]*models.DiscountCode{},
		usages: map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (s *stubRepo) FindByCode(_ context.Context, code string) (*models.DiscountCode, error) {
	if row, ok := s.codes[strings.ToUpper(strings.TrimSpace(code))]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) HasUsage(_ context.Context, userID, codeID uuid.UUID) (bool, error) {
	return s.usages[userID][codeID], nil
}

func (s *stubRepo) addCode(row models.DiscountCode) {
	s.codes[row.Code] = &row
}

func validCode() models.DiscountCode {
	return models.DiscountCode{
		ID:            uuid.New(),
		Code:          "SOMMER10",
		Type:          "percentage",
		Value:         decimal.RequireFromString("10"),
		MinOrderValue: decimal.RequireFromString("50.00"),
		ValidFrom:     time.Now().Add(-time.Hour),
		IsActive:      true,
	}
}

func newValidatorForTest(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func requireCode(t *testing.T, err error, want pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != want {
		t.Fatalf("expected %s, got %v", want, err)
	}
	return coded
}

func TestValidateReturnsSnapshot(t *testing.T) {
	repo := newStubRepo()
	row := validCode()
	repo.addCode(row)
	svc := newValidatorForTest(t, repo)

	applied, err := svc.Validate(context.Background(), "sommer10", decimal.RequireFromString("100.00"), uuid.New())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if applied.ID != row.ID || applied.Code != "SOMMER10" {
		t.Fatalf("unexpected snapshot: %+v", applied)
	}
	if !applied.Value.Equal(row.Value) || !applied.MinOrderValue.Equal(row.MinOrderValue) {
		t.Fatalf("snapshot values diverge: %+v", applied)
	}
}

func TestValidateUnknownCode(t *testing.T) {
	svc := newValidatorForTest(t, newStubRepo())

	_, err := svc.Validate(context.Background(), "NOPE", decimal.RequireFromString("100.00"), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestValidateIneligibleCodeLooksLikeUnknown(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.DiscountCode)
	}{
		{"inactive", func(c *models.DiscountCode) { c.IsActive = false }},
		{"not yet valid", func(c *models.DiscountCode) { c.ValidFrom = time.Now().Add(time.Hour) }},
		{"expired", func(c *models.DiscountCode) {
			until := time.Now().Add(-time.Minute)
			c.ValidUntil = &until
		}},
		{"exhausted", func(c *models.DiscountCode) {
			max := 1
			c.MaxUses = &max
			c.CurrentUses = 1
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubRepo()
			row := validCode()
			tc.mutate(&row)
			repo.addCode(row)
			svc := newValidatorForTest(t, repo)

			_, err := svc.Validate(context.Background(), row.Code, decimal.RequireFromString("100.00"), uuid.New())
			requireCode(t, err, pkgerrors.CodeNotFound)
		})
	}
}

func TestValidateAlreadyUsedByUser(t *testing.T) {
	repo := newStubRepo()
	row := validCode()
	repo.addCode(row)
	userID := uuid.New()
	repo.usages[userID] = map[uuid.UUID]bool{row.ID: true}
	svc := newValidatorForTest(t, repo)

	_, err := svc.Validate(context.Background(), row.Code, decimal.RequireFromString("100.00"), userID)
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestValidateMinimumNotMetCarriesThreshold(t *testing.T) {
	repo := newStubRepo()
	row := validCode()
	repo.addCode(row)
	svc := newValidatorForTest(t, repo)

	_, err := svc.Validate(context.Background(), row.Code, decimal.RequireFromString("49.99"), uuid.New())
	coded := requireCode(t, err, pkgerrors.CodeValidation)

	details, ok := coded.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", coded.Details())
	}
	if details["min_order_value"] != "50.00" {
		t.Fatalf("expected threshold in details, got %v", details)
	}
}

func TestValidateAnonymousCaller(t *testing.T) {
	svc := newValidatorForTest(t, newStubRepo())

	_, err := svc.Validate(context.Background(), "SOMMER10", decimal.RequireFromString("100.00"), uuid.Nil)
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestValidateRejectsBadInput(t *testing.T) {
	svc := newValidatorForTest(t, newStubRepo())

	_, err := svc.Validate(context.Background(), "   ", decimal.RequireFromString("100.00"), uuid.New())
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Validate(context.Background(), "SOMMER10", decimal.RequireFromString("-1"), uuid.New())
	requireCode(t, err, pkgerrors.CodeValidation)
}
