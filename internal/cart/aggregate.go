package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autohaus-digital/backend/internal/catalog"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/types"
)

// LineItem is one product line. All catalog fields are snapshots taken when
// the line was added; only Quantity mutates afterwards.
type LineItem struct {
	CatalogItemID      uuid.UUID       `json:"catalog_item_id"`
	Name               string          `json:"name"`
	UnitNetPrice       decimal.Decimal `json:"unit_net_price"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Quantity           int             `json:"quantity"`
	// Stock snapshot at add time; <= 0 means unbounded availability.
	Stock int `json:"stock"`
}

// VehicleItem is one vehicle line. Quantity is always exactly one and a
// vehicle appears at most once per cart.
type VehicleItem struct {
	VehicleID          uuid.UUID       `json:"vehicle_id"`
	Brand              string          `json:"brand"`
	Model              string          `json:"model"`
	UnitNetPrice       decimal.Decimal `json:"unit_net_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	VatMarginScheme    bool            `json:"vat_margin_scheme"`
}

// Name returns the display name carried onto order lines.
func (v VehicleItem) Name() string {
	return v.Brand + " " + v.Model
}

// Aggregate is the user's in-progress selection. Operations are synchronous,
// total and free of I/O; persistence is the store's concern.
type Aggregate struct {
	Items           []LineItem             `json:"items"`
	Vehicles        []VehicleItem          `json:"vehicles"`
	AppliedDiscount *types.AppliedDiscount `json:"applied_discount,omitempty"`
}

// IsEmpty reports whether the cart holds no lines at all.
func (a *Aggregate) IsEmpty() bool {
	return len(a.Items) == 0 && len(a.Vehicles) == 0
}

// ProductIDs lists the catalog ids of all product lines.
func (a *Aggregate) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a.Items))
	for _, item := range a.Items {
		ids = append(ids, item.CatalogItemID)
	}
	return ids
}

// VehicleIDs lists the ids of all vehicle lines.
func (a *Aggregate) VehicleIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a.Vehicles))
	for _, item := range a.Vehicles {
		ids = append(ids, item.VehicleID)
	}
	return ids
}

// AddProduct merges a product into the cart. An existing line gets its
// quantity incremented; a new line is inserted with the requested quantity.
// Quantities clamp to [1, stock] when the stock snapshot is finite.
func (a *Aggregate) AddProduct(ref catalog.ProductRef, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !ref.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available")
	}

	for i := range a.Items {
		if a.Items[i].CatalogItemID == ref.ID {
			a.Items[i].Quantity = clampQuantity(a.Items[i].Quantity+quantity, ref.Stock)
			a.Items[i].Stock = ref.Stock
			return nil
		}
	}

	a.Items = append(a.Items, LineItem{
		CatalogItemID:      ref.ID,
		Name:               ref.Name,
		UnitNetPrice:       ref.UnitNetPrice,
		TaxRate:            ref.TaxRate,
		DiscountPercentage: ref.DiscountPercentage,
		Quantity:           clampQuantity(quantity, ref.Stock),
		Stock:              ref.Stock,
	})
	return nil
}

// AddVehicle inserts a vehicle line. Vehicles already in the cart, sold or
// reserved are refused.
func (a *Aggregate) AddVehicle(ref catalog.VehicleRef) error {
	if !ref.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle is no longer available")
	}
	if ref.IsSold {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle is already sold")
	}
	if ref.IsReserved {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle is reserved")
	}
	for _, item := range a.Vehicles {
		if item.VehicleID == ref.ID {
			return pkgerrors.New(pkgerrors.CodeConflict, "vehicle is already in the cart")
		}
	}

	a.Vehicles = append(a.Vehicles, VehicleItem{
		VehicleID:          ref.ID,
		Brand:              ref.Brand,
		Model:              ref.Model,
		UnitNetPrice:       ref.UnitNetPrice,
		DiscountPercentage: ref.DiscountPercentage,
		VatMarginScheme:    ref.VatMarginScheme,
	})
	return nil
}

// SetQuantity replaces a product line's quantity. Quantities below one are
// rejected; callers remove the line instead. Finite stock still clamps.
func (a *Aggregate) SetQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1; remove the line instead")
	}
	for i := range a.Items {
		if a.Items[i].CatalogItemID == productID {
			a.Items[i].Quantity = clampQuantity(quantity, a.Items[i].Stock)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

// Remove drops the line with the given id, product or vehicle. Removing an
// absent id is a no-op.
func (a *Aggregate) Remove(id uuid.UUID) {
	for i := range a.Items {
		if a.Items[i].CatalogItemID == id {
			a.Items = append(a.Items[:i], a.Items[i+1:]...)
			return
		}
	}
	for i := range a.Vehicles {
		if a.Vehicles[i].VehicleID == id {
			a.Vehicles = append(a.Vehicles[:i], a.Vehicles[i+1:]...)
			return
		}
	}
}

// Reconcile drops product lines whose catalog item is missing or inactive
// and vehicle lines whose vehicle is missing, inactive, sold or reserved.
// Surviving lines keep their price and tax snapshots untouched. The returned
// names let the caller tell the user what disappeared.
func (a *Aggregate) Reconcile(snapshot catalog.Snapshot) []string {
	var removed []string

	kept := a.Items[:0]
	for _, item := range a.Items {
		ref, ok := snapshot.Product(item.CatalogItemID)
		if !ok || !ref.IsActive {
			removed = append(removed, item.Name)
			continue
		}
		kept = append(kept, item)
	}
	a.Items = kept

	keptVehicles := a.Vehicles[:0]
	for _, item := range a.Vehicles {
		ref, ok := snapshot.Vehicle(item.VehicleID)
		if !ok || !ref.IsActive || ref.IsSold || ref.IsReserved {
			removed = append(removed, item.Name())
			continue
		}
		keptVehicles = append(keptVehicles, item)
	}
	a.Vehicles = keptVehicles

	return removed
}

// ApplyDiscount replaces the applied code snapshot.
func (a *Aggregate) ApplyDiscount(discount types.AppliedDiscount) {
	a.AppliedDiscount = &discount
}

// RemoveDiscount discards the applied code snapshot. No counter is ever
// released by this.
func (a *Aggregate) RemoveDiscount() {
	a.AppliedDiscount = nil
}

// Clear empties both line sets and the applied discount.
func (a *Aggregate) Clear() {
	a.Items = nil
	a.Vehicles = nil
	a.AppliedDiscount = nil
}

func clampQuantity(quantity, stock int) int {
	if quantity < 1 {
		return 1
	}
	if stock > 0 && quantity > stock {
		return stock
	}
	return quantity
}
