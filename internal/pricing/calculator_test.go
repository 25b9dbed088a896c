package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/autohaus-digital/backend/pkg/enums"
	pkgerrors "github.com/autohaus-digital/backend/pkg/errors"
	"github.com/autohaus-digital/backend/pkg/types"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func requireEqual(t *testing.T, label string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", label, got, want)
	}
}

func TestComputeSingleProductLine(t *testing.T) {
	products := []ProductLine{{
		Name:               "Alufelgen-Satz",
		UnitNetPrice:       dec("100.00"),
		TaxRate:            dec("19"),
		DiscountPercentage: dec("10"),
		Quantity:           2,
	}}

	totals, err := Compute(products, nil, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if len(totals.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(totals.Lines))
	}
	line := totals.Lines[0]
	requireEqual(t, "line net", line.LineNet, dec("180.00"))
	requireEqual(t, "line tax", line.LineTax, dec("34.20"))
	requireEqual(t, "unit price", line.UnitPrice, dec("90.00"))
	requireEqual(t, "item discount total", totals.ItemDiscountTotal, dec("20.00"))
	requireEqual(t, "net total", totals.NetTotal, dec("180.00"))
}

func TestComputeLineTotalMatchesUnitTimesQuantity(t *testing.T) {
	products := []ProductLine{
		{Name: "a", UnitNetPrice: dec("19.99"), TaxRate: dec("19"), DiscountPercentage: dec("0"), Quantity: 3},
		{Name: "b", UnitNetPrice: dec("7.77"), TaxRate: dec("7"), DiscountPercentage: dec("15"), Quantity: 5},
	}

	totals, err := Compute(products, nil, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	for _, line := range totals.Lines {
		want := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if !line.LineNet.Equal(want) {
			t.Fatalf("line %q net %s != unit %s x qty %d", line.Name, line.LineNet, line.UnitPrice, line.Quantity)
		}
	}
}

func TestComputeDiscountedUnitPriceIsCentPrecise(t *testing.T) {
	products := []ProductLine{{
		Name:               "Dachträger",
		UnitNetPrice:       dec("19.99"),
		TaxRate:            dec("19"),
		DiscountPercentage: dec("15"),
		Quantity:           5,
	}}

	totals, err := Compute(products, nil, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// 19.99 x 0.85 = 16.9915 raw; a sub-cent unit price would round apart
	// from its line total once both land in numeric(12,2) columns.
	line := totals.Lines[0]
	requireEqual(t, "unit price", line.UnitPrice, dec("16.99"))
	requireEqual(t, "line net", line.LineNet, dec("84.95"))
	if line.UnitPrice.Exponent() < -2 {
		t.Fatalf("unit price %s carries sub-cent precision", line.UnitPrice)
	}
}

func TestComputePercentageCodeDiscountIsCentPrecise(t *testing.T) {
	products := []ProductLine{{
		Name:         "Wagenheber",
		UnitNetPrice: dec("33.33"),
		TaxRate:      dec("19"),
		Quantity:     1,
	}}
	code := &types.AppliedDiscount{
		Code:  "HERBST5",
		Type:  enums.DiscountTypePercentage,
		Value: dec("5"),
	}

	totals, err := Compute(products, nil, code)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// 5% of 33.33 = 1.6665 raw, quantized so the stored discount and net
	// amounts reconcile against the line sum.
	requireEqual(t, "code discount", totals.CodeDiscount, dec("1.67"))
	requireEqual(t, "net total", totals.NetTotal, dec("31.66"))
}

func TestComputePercentageCodeDiscount(t *testing.T) {
	products := []ProductLine{{
		Name:         "Dachbox",
		UnitNetPrice: dec("200.00"),
		TaxRate:      dec("19"),
		Quantity:     1,
	}}
	code := &types.AppliedDiscount{
		Code:  "SOMMER10",
		Type:  enums.DiscountTypePercentage,
		Value: dec("10"),
	}

	totals, err := Compute(products, nil, code)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	requireEqual(t, "code discount", totals.CodeDiscount, dec("20.00"))
	requireEqual(t, "net total", totals.NetTotal, dec("180.00"))
}

func TestComputeFixedCodeDiscountIsCapped(t *testing.T) {
	products := []ProductLine{{
		Name:         "Eiskratzer",
		UnitNetPrice: dec("30.00"),
		TaxRate:      dec("19"),
		Quantity:     1,
	}}
	code := &types.AppliedDiscount{
		Code:  "WILLKOMMEN50",
		Type:  enums.DiscountTypeFixed,
		Value: dec("50.00"),
	}

	totals, err := Compute(products, nil, code)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	requireEqual(t, "code discount", totals.CodeDiscount, dec("30.00"))
	requireEqual(t, "net total", totals.NetTotal, dec("0.00"))
	if totals.NetTotal.IsNegative() {
		t.Fatalf("net total went negative: %s", totals.NetTotal)
	}
}

func TestComputeAllMarginVehicleCartBearsNoTax(t *testing.T) {
	vehicles := []VehicleLine{{
		Name:            "BMW 320d",
		UnitNetPrice:    dec("5000.00"),
		VatMarginScheme: true,
	}}

	totals, err := Compute(nil, vehicles, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	requireEqual(t, "tax total", totals.TaxTotal, dec("0"))
	requireEqual(t, "net total", totals.NetTotal, dec("5000.00"))
	requireEqual(t, "gross total", totals.GrossTotal, dec("5000.00"))
	requireEqual(t, "vehicle line tax", totals.Lines[0].LineTax, dec("0"))
}

func TestComputeMixedCartTaxesBlendedTotal(t *testing.T) {
	products := []ProductLine{{
		Name:         "Winterreifen",
		UnitNetPrice: dec("400.00"),
		TaxRate:      dec("19"),
		Quantity:     1,
	}}
	vehicles := []VehicleLine{{
		Name:            "Audi A4",
		UnitNetPrice:    dec("5000.00"),
		VatMarginScheme: true,
	}}

	totals, err := Compute(products, vehicles, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// The margin-scheme vehicle still contributes to the blended 19% once
	// anything else shares the cart.
	requireEqual(t, "net total", totals.NetTotal, dec("5400.00"))
	requireEqual(t, "tax total", totals.TaxTotal, dec("1026.00"))
	requireEqual(t, "gross total", totals.GrossTotal, dec("6426.00"))
}

func TestComputeRegularVehicleTaxedAtVATRate(t *testing.T) {
	vehicles := []VehicleLine{{
		Name:               "VW Golf",
		UnitNetPrice:       dec("10000.00"),
		DiscountPercentage: dec("5"),
	}}

	totals, err := Compute(nil, vehicles, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	requireEqual(t, "vehicle line net", totals.Lines[0].LineNet, dec("9500.00"))
	requireEqual(t, "vehicle line tax", totals.Lines[0].LineTax, dec("1805.00"))
	requireEqual(t, "tax total", totals.TaxTotal, dec("1805.00"))
	requireEqual(t, "gross total", totals.GrossTotal, dec("11305.00"))
}

func TestComputeRefusesInconsistentInput(t *testing.T) {
	cases := []struct {
		name     string
		products []ProductLine
		vehicles []VehicleLine
	}{
		{
			name:     "zero quantity",
			products: []ProductLine{{Name: "x", UnitNetPrice: dec("10"), TaxRate: dec("19"), Quantity: 0}},
		},
		{
			name:     "negative price",
			products: []ProductLine{{Name: "x", UnitNetPrice: dec("-1"), TaxRate: dec("19"), Quantity: 1}},
		},
		{
			name:     "discount above 100",
			products: []ProductLine{{Name: "x", UnitNetPrice: dec("10"), TaxRate: dec("19"), DiscountPercentage: dec("101"), Quantity: 1}},
		},
		{
			name:     "negative vehicle price",
			vehicles: []VehicleLine{{Name: "v", UnitNetPrice: dec("-100")}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.products, tc.vehicles, nil)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected %s, got %v", pkgerrors.CodeValidation, err)
			}
		})
	}
}

func TestComputeEmptyCartIsZero(t *testing.T) {
	totals, err := Compute(nil, nil, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	requireEqual(t, "net total", totals.NetTotal, decimal.Zero)
	requireEqual(t, "gross total", totals.GrossTotal, decimal.Zero)
}
