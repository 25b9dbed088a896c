package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autohaus-digital/backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestDiscountCodesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_discount_codes.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS discount_codes",
		"CHECK (type IN ('percentage', 'fixed'))",
		"CHECK (max_uses IS NULL OR max_uses > 0)",
		"CHECK (current_uses >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_discount_codes_code",
		"DROP TABLE IF EXISTS discount_codes",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrderItemsMigrationCascadesWithOrder(t *testing.T) {
	content := readMigration(t, "*_create_order_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS order_items",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"product_id uuid REFERENCES products(id)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsageLedgerMigrationEnforcesOnePerUser(t *testing.T) {
	content := readMigration(t, "*_create_discount_code_usages.sql")

	if !strings.Contains(content, "CREATE UNIQUE INDEX IF NOT EXISTS ux_discount_code_usages_user_code ON discount_code_usages (user_id, discount_code_id)") {
		t.Errorf("missing unique (user_id, discount_code_id) index")
	}
}
