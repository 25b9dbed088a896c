package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/autohaus-digital/backend/internal/catalog"
	"github.com/autohaus-digital/backend/internal/pricing"
	"github.com/autohaus-digital/backend/pkg/types"
)

// Service orchestrates load, mutate and store around the pure aggregate.
// Every mutation recomputes totals so callers always see a fresh breakdown.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Aggregate, pricing.Totals, error)
	AddProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Aggregate, pricing.Totals, error)
	AddVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (*Aggregate, pricing.Totals, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Aggregate, pricing.Totals, error)
	Remove(ctx context.Context, userID, lineID uuid.UUID) (*Aggregate, pricing.Totals, error)
	Reconcile(ctx context.Context, userID uuid.UUID) (*Aggregate, pricing.Totals, []string, error)
	ApplyDiscount(ctx context.Context, userID uuid.UUID, discount types.AppliedDiscount) (*Aggregate, pricing.Totals, error)
	RemoveDiscount(ctx context.Context, userID uuid.UUID) (*Aggregate, pricing.Totals, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store   Store
	catalog catalog.Service
}

// NewService builds a cart service backed by the provided store and catalog.
func NewService(store Store, catalogSvc catalog.Service) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &service{store: store, catalog: catalogSvc}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Aggregate, pricing.Totals, error) {
	agg, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	totals, err := Totals(agg)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	return agg, totals, nil
}

func (s *service) AddProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Aggregate, pricing.Totals, error) {
	ref, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	return s.mutate(ctx, userID, func(agg *Aggregate) error {
		return agg.AddProduct(ref, quantity)
	})
}

func (s *service) AddVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (*Aggregate, pricing.Totals, error) {
	ref, err := s.catalog.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	return s.mutate(ctx, userID, func(agg *Aggregate) error {
		return agg.AddVehicle(ref)
	})
}

func (s *service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Aggregate, pricing.Totals, error) {
	return s.mutate(ctx, userID, func(agg *Aggregate) error {
		return agg.SetQuantity(productID, quantity)
	})
}

func (s *service) Remove(ctx context.Context, userID, lineID uuid.UUID) (*Aggregate, pricing.Totals, error) {
	return s.mutate(ctx, userID, func(agg *Aggregate) error {
		agg.Remove(lineID)
		return nil
	})
}

// Reconcile drops lines the catalog no longer backs and reports their names.
// Surviving lines keep their original snapshots.
func (s *service) Reconcile(ctx context.Context, userID uuid.UUID) (*Aggregate, pricing.Totals, []string, error) {
	agg, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pricing.Totals{}, nil, err
	}

	snapshot, err := s.catalog.Snapshot(ctx, agg.ProductIDs(), agg.VehicleIDs())
	if err != nil {
		return nil, pricing.Totals{}, nil, err
	}

	removed := agg.Reconcile(snapshot)
	if len(removed) > 0 {
		if err := s.store.Save(ctx, userID, agg); err != nil {
			return nil, pricing.Totals{}, nil, err
		}
	}

	totals, err := Totals(agg)
	if err != nil {
		return nil, pricing.Totals{}, nil, err
	}
	return agg, totals, removed, nil
}

func (s *service) ApplyDiscount(ctx context.Context, userID uuid.UUID, discount types.AppliedDiscount) (*Aggregate, pricing.Totals, error) {
	return s.mutate(ctx, userID, func(agg *Aggregate) error {
		agg.ApplyDiscount(discount)
		return nil
	})
}

func (s *service) RemoveDiscount(ctx context.Context, userID uuid.UUID) (*Aggregate, pricing.Totals, error) {
	return s.mutate(ctx, userID, func(agg *Aggregate) error {
		agg.RemoveDiscount()
		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.store.Delete(ctx, userID)
}

func (s *service) mutate(ctx context.Context, userID uuid.UUID, fn func(agg *Aggregate) error) (*Aggregate, pricing.Totals, error) {
	agg, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	if err := fn(agg); err != nil {
		return nil, pricing.Totals{}, err
	}
	if err := s.store.Save(ctx, userID, agg); err != nil {
		return nil, pricing.Totals{}, err
	}
	totals, err := Totals(agg)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	return agg, totals, nil
}

// Totals maps the aggregate onto the calculator's input and computes the
// current breakdown.
func Totals(agg *Aggregate) (pricing.Totals, error) {
	products := make([]pricing.ProductLine, 0, len(agg.Items))
	for _, item := range agg.Items {
		products = append(products, pricing.ProductLine{
			ID:                 item.CatalogItemID,
			Name:               item.Name,
			UnitNetPrice:       item.UnitNetPrice,
			TaxRate:            item.TaxRate,
			DiscountPercentage: item.DiscountPercentage,
			Quantity:           item.Quantity,
		})
	}
	vehicles := make([]pricing.VehicleLine, 0, len(agg.Vehicles))
	for _, item := range agg.Vehicles {
		vehicles = append(vehicles, pricing.VehicleLine{
			ID:                 item.VehicleID,
			Name:               item.Name(),
			UnitNetPrice:       item.UnitNetPrice,
			DiscountPercentage: item.DiscountPercentage,
			VatMarginScheme:    item.VatMarginScheme,
		})
	}
	return pricing.Compute(products, vehicles, agg.AppliedDiscount)
}
