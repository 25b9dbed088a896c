package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// GenerateOrderNumber produces the human-readable quote number handed back to
// the customer: AH-<date>-<6 hex>. Uniqueness is enforced by the database;
// callers retry on a collision.
func GenerateOrderNumber(now time.Time) (string, error) {
	var suffix [3]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("generating order number suffix: %w", err)
	}
	return fmt.Sprintf("AH-%s-%X", now.Format("20060102"), suffix), nil
}
