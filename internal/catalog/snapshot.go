package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRef is the read-only catalog view of a sellable product at one
// instant. Prices and rates are snapshots; carts copy them at add time.
type ProductRef struct {
	ID                 uuid.UUID
	Name               string
	UnitNetPrice       decimal.Decimal
	TaxRate            decimal.Decimal
	DiscountPercentage decimal.Decimal
	// Stock <= 0 means unbounded availability.
	Stock    int
	IsActive bool
}

// VehicleRef is the read-only catalog view of a single vehicle.
type VehicleRef struct {
	ID                 uuid.UUID
	Brand              string
	Model              string
	UnitNetPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	VatMarginScheme    bool
	IsSold             bool
	IsReserved         bool
	IsActive           bool
}

// Name returns the display name used on cart and order lines.
func (v VehicleRef) Name() string {
	return v.Brand + " " + v.Model
}

// Snapshot is a point-in-time view over the catalog items a cart references.
// Reconciliation runs purely against it, no further catalog reads.
type Snapshot struct {
	Products map[uuid.UUID]ProductRef
	Vehicles map[uuid.UUID]VehicleRef
}

// Product looks up a product ref by id.
func (s Snapshot) Product(id uuid.UUID) (ProductRef, bool) {
	ref, ok := s.Products[id]
	return ref, ok
}

// Vehicle looks up a vehicle ref by id.
func (s Snapshot) Vehicle(id uuid.UUID) (VehicleRef, bool) {
	ref, ok := s.Vehicles[id]
	return ref, ok
}
