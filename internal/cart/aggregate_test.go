package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autohaus-digital/backend/internal/catalog"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
)

func productRef(stock int) catalog.ProductRef {
	return catalog.ProductRef{
		ID:           uuid.New(),
		Name:         "Dachtraeger",
		UnitNetPrice: decimal.RequireFromString("120.00"),
		TaxRate:      decimal.RequireFromString("19"),
		Stock:        stock,
		IsActive:     true,
	}
}

func vehicleRef() catalog.VehicleRef {
	return catalog.VehicleRef{
		ID:           uuid.New(),
		Brand:        "BMW",
		Model:        "320d",
		UnitNetPrice: decimal.RequireFromString("15000.00"),
		IsActive:     true,
	}
}

func TestAddProductMergesAndClampsToStock(t *testing.T) {
	agg := &Aggregate{}
	ref := productRef(5)

	if err := agg.AddProduct(ref, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := agg.AddProduct(ref, 4); err != nil {
		t.Fatalf("add again: %v", err)
	}

	if len(agg.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(agg.Items))
	}
	if agg.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity clamped to 5, got %d", agg.Items[0].Quantity)
	}
}

func TestAddProductUnboundedStockDoesNotClamp(t *testing.T) {
	agg := &Aggregate{}
	ref := productRef(0)

	if err := agg.AddProduct(ref, 250); err != nil {
		t.Fatalf("add: %v", err)
	}
	if agg.Items[0].Quantity != 250 {
		t.Fatalf("expected quantity 250, got %d", agg.Items[0].Quantity)
	}
}

func TestAddProductRejectsInvalidInput(t *testing.T) {
	agg := &Aggregate{}

	if err := agg.AddProduct(productRef(5), 0); err == nil {
		t.Fatalf("expected error for zero quantity")
	}

	inactive := productRef(5)
	inactive.IsActive = false
	if err := agg.AddProduct(inactive, 1); err == nil {
		t.Fatalf("expected error for inactive product")
	}
}

func TestAddVehicleRejectsSoldReservedAndDuplicate(t *testing.T) {
	agg := &Aggregate{}

	sold := vehicleRef()
	sold.IsSold = true
	if err := agg.AddVehicle(sold); err == nil {
		t.Fatalf("expected error for sold vehicle")
	}

	reserved := vehicleRef()
	reserved.IsReserved = true
	if err := agg.AddVehicle(reserved); err == nil {
		t.Fatalf("expected error for reserved vehicle")
	}

	ref := vehicleRef()
	if err := agg.AddVehicle(ref); err != nil {
		t.Fatalf("add vehicle: %v", err)
	}
	err := agg.AddVehicle(ref)
	if err == nil {
		t.Fatalf("expected error for duplicate vehicle")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected %s, got %v", pkgerrors.CodeConflict, err)
	}
	if len(agg.Vehicles) != 1 {
		t.Fatalf("expected single vehicle line, got %d", len(agg.Vehicles))
	}
}

func TestSetQuantityRejectsBelowOne(t *testing.T) {
	agg := &Aggregate{}
	ref := productRef(10)
	if err := agg.AddProduct(ref, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := agg.SetQuantity(ref.ID, 0); err == nil {
		t.Fatalf("expected error for quantity below one")
	}
	if err := agg.SetQuantity(ref.ID, 20); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if agg.Items[0].Quantity != 10 {
		t.Fatalf("expected quantity clamped to 10, got %d", agg.Items[0].Quantity)
	}
}

func TestSetQuantityUnknownLine(t *testing.T) {
	agg := &Aggregate{}
	err := agg.SetQuantity(uuid.New(), 2)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected %s, got %v", pkgerrors.CodeNotFound, err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	agg := &Aggregate{}
	ref := productRef(5)
	if err := agg.AddProduct(ref, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	agg.Remove(ref.ID)
	if len(agg.Items) != 0 {
		t.Fatalf("expected empty cart after remove")
	}

	// absent ids are a no-op
	agg.Remove(ref.ID)
	agg.Remove(uuid.New())
}

func TestReconcileDropsMissingAndInactiveLines(t *testing.T) {
	agg := &Aggregate{}
	keep := productRef(5)
	gone := productRef(5)
	gone.Name = "Nebelscheinwerfer"
	inactive := productRef(5)
	inactive.Name = "Anhaengerkupplung"

	for _, ref := range []catalog.ProductRef{keep, gone, inactive} {
		if err := agg.AddProduct(ref, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	soldVehicle := vehicleRef()
	if err := agg.AddVehicle(soldVehicle); err != nil {
		t.Fatalf("add vehicle: %v", err)
	}

	inactiveNow := inactive
	inactiveNow.IsActive = false
	soldNow := soldVehicle
	soldNow.IsSold = true
	snapshot := catalog.Snapshot{
		Products: map[uuid.UUID]catalog.ProductRef{
			keep.ID:     keep,
			inactive.ID: inactiveNow,
			// gone.ID deliberately absent
		},
		Vehicles: map[uuid.UUID]catalog.VehicleRef{
			soldVehicle.ID: soldNow,
		},
	}

	removed := agg.Reconcile(snapshot)

	if len(agg.Items) != 1 || agg.Items[0].CatalogItemID != keep.ID {
		t.Fatalf("expected only the active line to survive, got %d lines", len(agg.Items))
	}
	if len(agg.Vehicles) != 0 {
		t.Fatalf("expected sold vehicle to be dropped")
	}
	if len(removed) != 3 {
		t.Fatalf("expected 3 removed names, got %v", removed)
	}
}

func TestReconcileKeepsSurvivorSnapshots(t *testing.T) {
	agg := &Aggregate{}
	ref := productRef(5)
	if err := agg.AddProduct(ref, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	repriced := ref
	repriced.UnitNetPrice = decimal.RequireFromString("999.00")
	snapshot := catalog.Snapshot{
		Products: map[uuid.UUID]catalog.ProductRef{ref.ID: repriced},
	}

	if removed := agg.Reconcile(snapshot); len(removed) != 0 {
		t.Fatalf("expected no removals, got %v", removed)
	}
	if !agg.Items[0].UnitNetPrice.Equal(ref.UnitNetPrice) {
		t.Fatalf("expected price snapshot preserved, got %s", agg.Items[0].UnitNetPrice)
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	agg := &Aggregate{}
	if err := agg.AddProduct(productRef(5), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := agg.AddVehicle(vehicleRef()); err != nil {
		t.Fatalf("add vehicle: %v", err)
	}

	agg.Clear()

	if !agg.IsEmpty() || agg.AppliedDiscount != nil {
		t.Fatalf("expected empty aggregate after clear")
	}
}
