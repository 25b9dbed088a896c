package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/types"
)

var (
	hundred = decimal.NewFromInt(100)
	// vatRate is the single fixed VAT rate applied to vehicles and to the
	// aggregate total of mixed carts.
	vatRate = decimal.NewFromInt(19).Div(hundred)
)

// ProductLine is the pricing view of one product cart line. All monetary
// fields are snapshots taken when the line was added.
type ProductLine struct {
	ID                 uuid.UUID
	Name               string
	UnitNetPrice       decimal.Decimal
	TaxRate            decimal.Decimal
	DiscountPercentage decimal.Decimal
	Quantity           int
}

// VehicleLine is the pricing view of one vehicle cart line, quantity fixed
// at one.
type VehicleLine struct {
	ID                 uuid.UUID
	Name               string
	UnitNetPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	VatMarginScheme    bool
}

// LineTotal is the computed breakdown for one line.
type LineTotal struct {
	ID                 uuid.UUID
	Name               string
	Quantity           int
	OriginalUnitPrice  decimal.Decimal
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	LineNet            decimal.Decimal
	LineTax            decimal.Decimal
	IsVehicle          bool
}

// Totals is the full cart breakdown. Values carry full precision; rounding
// happens only when rendering.
type Totals struct {
	Lines             []LineTotal
	PreCodeNetTotal   decimal.Decimal
	ItemDiscountTotal decimal.Decimal
	CodeDiscount      decimal.Decimal
	NetTotal          decimal.Decimal
	TaxTotal          decimal.Decimal
	GrossTotal        decimal.Decimal
}

// Compute reduces the cart lines plus an optional applied discount code to a
// totals breakdown. It is deterministic and performs no I/O. Inconsistent
// input is refused outright, never clamped into a plausible-looking result.
//
// Tax on the final total is the flat VAT rate applied to the combined net,
// except when the cart consists solely of margin-scheme vehicles, in which
// case no tax line is owed at all. A margin-scheme vehicle sharing the cart
// with anything else is taxed as part of the blended total.
func Compute(products []ProductLine, vehicles []VehicleLine, code *types.AppliedDiscount) (Totals, error) {
	if err := validateInput(products, vehicles); err != nil {
		return Totals{}, err
	}

	totals := Totals{
		PreCodeNetTotal:   decimal.Zero,
		ItemDiscountTotal: decimal.Zero,
		CodeDiscount:      decimal.Zero,
	}

	allMarginVehicles := len(products) == 0 && len(vehicles) > 0

	for _, line := range products {
		qty := decimal.NewFromInt(int64(line.Quantity))
		discounted := applyPercentDiscount(line.UnitNetPrice, line.DiscountPercentage)
		lineNet := discounted.Mul(qty)
		lineTax := lineNet.Mul(line.TaxRate.Div(hundred))

		totals.Lines = append(totals.Lines, LineTotal{
			ID:                 line.ID,
			Name:               line.Name,
			Quantity:           line.Quantity,
			OriginalUnitPrice:  line.UnitNetPrice,
			UnitPrice:          discounted,
			DiscountPercentage: line.DiscountPercentage,
			LineNet:            lineNet,
			LineTax:            lineTax,
		})
		totals.PreCodeNetTotal = totals.PreCodeNetTotal.Add(lineNet)
		totals.ItemDiscountTotal = totals.ItemDiscountTotal.Add(line.UnitNetPrice.Sub(discounted).Mul(qty))
	}

	for _, line := range vehicles {
		discounted := applyPercentDiscount(line.UnitNetPrice, line.DiscountPercentage)
		lineTax := decimal.Zero
		if !line.VatMarginScheme {
			lineTax = discounted.Mul(vatRate)
			allMarginVehicles = false
		}

		totals.Lines = append(totals.Lines, LineTotal{
			ID:                 line.ID,
			Name:               line.Name,
			Quantity:           1,
			OriginalUnitPrice:  line.UnitNetPrice,
			UnitPrice:          discounted,
			DiscountPercentage: line.DiscountPercentage,
			LineNet:            discounted,
			LineTax:            lineTax,
			IsVehicle:          true,
		})
		totals.PreCodeNetTotal = totals.PreCodeNetTotal.Add(discounted)
		totals.ItemDiscountTotal = totals.ItemDiscountTotal.Add(line.UnitNetPrice.Sub(discounted))
	}

	if code != nil {
		switch {
		case code.Type.IsPercentage():
			totals.CodeDiscount = totals.PreCodeNetTotal.Mul(code.Value.Div(hundred)).Round(2)
		default:
			// Fixed amounts never push the net below zero.
			totals.CodeDiscount = decimal.Min(code.Value, totals.PreCodeNetTotal)
		}
	}

	totals.NetTotal = totals.PreCodeNetTotal.Sub(totals.CodeDiscount)

	if allMarginVehicles {
		totals.TaxTotal = decimal.Zero
		totals.GrossTotal = totals.NetTotal
	} else {
		totals.TaxTotal = totals.NetTotal.Mul(vatRate)
		totals.GrossTotal = totals.NetTotal.Add(totals.TaxTotal)
	}

	return totals, nil
}

func validateInput(products []ProductLine, vehicles []VehicleLine) error {
	for _, line := range products {
		if line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
		if line.UnitNetPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
		}
		if line.TaxRate.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "tax rate must not be negative")
		}
		if !validPercent(line.DiscountPercentage) {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 0 and 100")
		}
	}
	for _, line := range vehicles {
		if line.UnitNetPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
		}
		if !validPercent(line.DiscountPercentage) {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 0 and 100")
		}
	}
	return nil
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// Discounted unit prices are quantized to cents; a persisted line total must
// stay an exact multiple of the persisted unit price.
func applyPercentDiscount(price, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return price
	}
	return price.Mul(decimal.NewFromInt(1).Sub(percent.Div(hundred))).Round(2)
}
