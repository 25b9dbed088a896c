package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autohaus-digital/backend/pkg/db/models"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
)

// Service is the Catalog Reference boundary: read-only lookups and snapshots
// of sellable items. Catalog management lives elsewhere.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (ProductRef, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (VehicleRef, error)
	Snapshot(ctx context.Context, productIDs, vehicleIDs []uuid.UUID) (Snapshot, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// GetProduct returns the catalog view of one product. Inactive products are
// still returned; callers decide whether active matters for their operation.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (ProductRef, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductRef{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return ProductRef{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return productRef(*product), nil
}

// GetVehicle returns the catalog view of one vehicle.
func (s *service) GetVehicle(ctx context.Context, id uuid.UUID) (VehicleRef, error) {
	vehicle, err := s.repo.FindVehicle(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VehicleRef{}, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return VehicleRef{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vehicle")
	}
	return vehicleRef(*vehicle), nil
}

// Snapshot loads the current state of every referenced item in two queries.
// Items missing from the result are simply absent from the snapshot maps.
func (s *service) Snapshot(ctx context.Context, productIDs, vehicleIDs []uuid.UUID) (Snapshot, error) {
	snap := Snapshot{
		Products: make(map[uuid.UUID]ProductRef, len(productIDs)),
		Vehicles: make(map[uuid.UUID]VehicleRef, len(vehicleIDs)),
	}

	products, err := s.repo.FindProducts(ctx, productIDs)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product snapshot")
	}
	for _, p := range products {
		snap.Products[p.ID] = productRef(p)
	}

	vehicles, err := s.repo.FindVehicles(ctx, vehicleIDs)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vehicle snapshot")
	}
	for _, v := range vehicles {
		snap.Vehicles[v.ID] = vehicleRef(v)
	}

	return snap, nil
}

func productRef(p models.Product) ProductRef {
	return ProductRef{
		ID:                 p.ID,
		Name:               p.Name,
		UnitNetPrice:       p.UnitNetPrice,
		TaxRate:            p.TaxRate,
		DiscountPercentage: p.DiscountPercentage,
		Stock:              p.Stock,
		IsActive:           p.IsActive,
	}
}

func vehicleRef(v models.Vehicle) VehicleRef {
	return VehicleRef{
		ID:                 v.ID,
		Brand:              v.Brand,
		Model:              v.Model,
		UnitNetPrice:       v.UnitNetPrice,
		DiscountPercentage: v.DiscountPercentage,
		VatMarginScheme:    v.VatMarginScheme,
		IsSold:             v.IsSold,
		IsReserved:         v.IsReserved,
		IsActive:           v.IsActive,
	}
}
