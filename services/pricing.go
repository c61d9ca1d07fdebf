// Package services provides pricing calculation functions for quote line items.
package services

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxRate is the flat tax applied to every line amount.
const TaxRate = 0.05

var leadingNumber = regexp.MustCompile(`^(\d+(?:\.\d+)?)`)

// Round2 rounds half away from zero to exactly two decimal places.
// NaN and infinities collapse to zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// UnitFactor extracts the leading numeric quantum from a unit label such as
// "2.5 units" or "4 SqM". Labels without a leading number yield 1.
func UnitFactor(units string) float64 {
	m := leadingNumber.FindStringSubmatch(strings.TrimSpace(units))
	if m == nil {
		return 1
	}
	f, err := decimal.NewFromString(m[1])
	if err != nil {
		return 1
	}
	return f.InexactFloat64()
}

func CalcNetArea(length, width float64) float64 {
	return length * width
}

func CalcTotalArea(netArea, wastagePercent float64) float64 {
	return netArea + netArea*wastagePercent/100
}

// CalcQuantity returns the number of purchasable units needed to cover
// totalArea and the area those units actually cover.
func CalcQuantity(totalArea, factor float64) (qty, qtyArea float64) {
	if factor <= 0 {
		return 0, 0
	}
	// Strip float noise (3.3/1.1 = 3.0000000000000004) before taking the ceiling.
	ratio := decimal.NewFromFloat(totalArea / factor).Round(9)
	qty = ratio.Ceil().InexactFloat64()
	return qty, qty * factor
}

func CalcRate(unitPrice, factor float64) float64 {
	return unitPrice * factor
}

// CalcTax returns the tax and gross amounts for a line amount.
func CalcTax(amount float64) (tax, gross float64) {
	return Round2(amount * TaxRate), Round2(amount * (1 + TaxRate))
}

func CalcEstimatedCost(averageCost, qty float64) float64 {
	return averageCost * qty
}

func CalcCostPrice(factor, costPerUnit float64) float64 {
	return factor * costPerUnit
}

// CalcDiscountShare returns the negated share of value taken by a percentage
// discount, rounded to two decimals.
func CalcDiscountShare(value, percent float64) float64 {
	share := Round2(value * percent / 100)
	if share == 0 {
		return 0
	}
	return -share
}

type QuoteTotals struct {
	Gross              float64 `json:"gross"`
	IndividualDiscount float64 `json:"individualDiscount"`
	OverallDiscount    float64 `json:"overallDiscount"`
	Net                float64 `json:"net"`
}

type QuoteLineForTotals struct {
	GrossAmount          float64
	IsOverallDiscount    bool
	IsIndividualDiscount bool
}

// CalcQuoteTotals splits line gross amounts into product gross and the two
// discount kinds. Discount lines carry negative amounts.
func CalcQuoteTotals(lines []QuoteLineForTotals) QuoteTotals {
	var totals QuoteTotals
	for _, l := range lines {
		switch {
		case l.IsOverallDiscount:
			totals.OverallDiscount += l.GrossAmount
		case l.IsIndividualDiscount:
			totals.IndividualDiscount += l.GrossAmount
		default:
			totals.Gross += l.GrossAmount
		}
	}
	totals.Gross = Round2(totals.Gross)
	totals.IndividualDiscount = Round2(totals.IndividualDiscount)
	totals.OverallDiscount = Round2(totals.OverallDiscount)
	totals.Net = Round2(totals.Gross + totals.IndividualDiscount + totals.OverallDiscount)
	return totals
}
