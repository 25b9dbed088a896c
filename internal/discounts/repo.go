package discounts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autohaus-digital/backend/pkg/db/models"
)

// Repository is the discount ledger: code lookups, the per-user usage ledger
// and the atomic usage-counter increment.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountCode, error)
	List(ctx context.Context) ([]models.DiscountCode, error)
	Create(ctx context.Context, code *models.DiscountCode) error
	Update(ctx context.Context, code *models.DiscountCode) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasUsage(ctx context.Context, userID, codeID uuid.UUID) (bool, error)
	ConsumeUse(ctx context.Context, codeID uuid.UUID) (bool, error)
	RecordUsage(ctx context.Context, usage *models.DiscountCodeUsage) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a discount repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByCode resolves a code case-insensitively against its uppercase
// canonical form.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var row models.DiscountCode
	canonical := strings.ToUpper(strings.TrimSpace(code))
	if err := r.db.WithContext(ctx).First(&row, "UPPER(code) = ?", canonical).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountCode, error) {
	var row models.DiscountCode
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context) ([]models.DiscountCode, error) {
	var rows []models.DiscountCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Create(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *repository) Update(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DiscountCode{}, "id = ?", id).Error
}

func (r *repository) HasUsage(ctx context.Context, userID, codeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DiscountCodeUsage{}).
		Where("user_id = ? AND discount_code_id = ?", userID, codeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ConsumeUse bumps current_uses through a conditional update so concurrent
// redeemers can never push the counter past max_uses. A false return means
// the code was exhausted or deactivated between validation and submission.
func (r *repository) ConsumeUse(ctx context.Context, codeID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("id = ? AND is_active = ? AND (max_uses IS NULL OR current_uses < max_uses)", codeID, true).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) RecordUsage(ctx context.Context, usage *models.DiscountCodeUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}
