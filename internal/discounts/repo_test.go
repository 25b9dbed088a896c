package discounts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/autohaus-digital/backend/pkg/db/models"
)

func setupDiscountsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps concurrent writers serialized in sqlite
	sqlDB.SetMaxOpenConns(1)

	codes := `
CREATE TABLE IF NOT EXISTS discount_codes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  type TEXT NOT NULL,
  value TEXT NOT NULL,
  min_order_value TEXT NOT NULL DEFAULT '0',
  max_uses INTEGER,
  current_uses INTEGER NOT NULL DEFAULT 0,
  valid_from DATETIME NOT NULL,
  valid_until DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	usages := `
CREATE TABLE IF NOT EXISTS discount_code_usages (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  discount_code_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, discount_code_id)
);`
	require.NoError(t, db.Exec(codes).Error)
	require.NoError(t, db.Exec(usages).Error)

	return db
}

func seedCode(t *testing.T, db *gorm.DB, maxUses *int) models.DiscountCode {
	t.Helper()
	row := models.DiscountCode{
		ID:            uuid.New(),
		Code:          "HERBST20",
		Type:          "fixed",
		Value:         decimal.RequireFromString("20.00"),
		MinOrderValue: decimal.Zero,
		MaxUses:       maxUses,
		ValidFrom:     time.Now().Add(-time.Hour),
		IsActive:      true,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepositoryFindByCodeIsCaseInsensitive(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	row := seedCode(t, db, nil)

	found, err := repo.FindByCode(context.Background(), "  herbst20 ")
	require.NoError(t, err)
	assert.Equal(t, row.ID, found.ID)

	_, err = repo.FindByCode(context.Background(), "UNKNOWN")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryConsumeUseStopsAtMaxUses(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	max := 2
	row := seedCode(t, db, &max)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := repo.ConsumeUse(ctx, row.ID)
		require.NoError(t, err)
		assert.True(t, ok, "use %d should succeed", i+1)
	}

	ok, err := repo.ConsumeUse(ctx, row.ID)
	require.NoError(t, err)
	assert.False(t, ok, "third use must be refused")

	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.CurrentUses)
}

func TestRepositoryConsumeUseUnlimitedCode(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	row := seedCode(t, db, nil)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ok, err := repo.ConsumeUse(ctx, row.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRepositoryConsumeUseInactiveCode(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	row := seedCode(t, db, nil)
	require.NoError(t, db.Model(&models.DiscountCode{}).Where("id = ?", row.ID).Update("is_active", false).Error)

	ok, err := repo.ConsumeUse(context.Background(), row.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryConsumeUseConcurrentSingleUse(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	max := 1
	row := seedCode(t, db, &max)

	const redeemers = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		errs      []error
	)
	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ConsumeUse(context.Background(), row.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if ok {
				successes++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)

	assert.Equal(t, 1, successes, "exactly one redeemer may win")

	reloaded, err := repo.FindByID(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.CurrentUses)
}

func TestRepositoryUsageLedger(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	row := seedCode(t, db, nil)
	userID := uuid.New()

	ctx := context.Background()
	used, err := repo.HasUsage(ctx, userID, row.ID)
	require.NoError(t, err)
	assert.False(t, used)

	usage := models.DiscountCodeUsage{
		ID:             uuid.New(),
		UserID:         userID,
		DiscountCodeID: row.ID,
		OrderID:        uuid.New(),
	}
	require.NoError(t, repo.RecordUsage(ctx, &usage))

	used, err = repo.HasUsage(ctx, userID, row.ID)
	require.NoError(t, err)
	assert.True(t, used)

	// the (user, code) pair is unique for the code's lifetime
	dup := models.DiscountCodeUsage{
		ID:             uuid.New(),
		UserID:         userID,
		DiscountCodeID: row.ID,
		OrderID:        uuid.New(),
	}
	assert.Error(t, repo.RecordUsage(ctx, &dup))
}
