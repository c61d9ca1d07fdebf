package quote

import (
	"quotelines/services"
)

// Recompute derives area, quantity, pricing and cost fields from the row's
// current inputs after changed was edited. It never fails: absent or
// malformed inputs simply leave the dependent fields untouched.
func Recompute(r Row, changed Field) Row {
	switch changed {
	case FieldLength, FieldWidth:
		if r.Length.Valid && r.Width.Valid {
			r.NetArea = N(services.CalcNetArea(r.Length.V, r.Width.V))
		}
		r.TotalArea = totalArea(r)
	case FieldNetArea, FieldWastage:
		r.TotalArea = totalArea(r)
	}

	factor, hasFactor := unitFactor(r)

	if r.TotalArea.NonZero() && hasFactor {
		qty, qtyArea := services.CalcQuantity(r.TotalArea.V, factor)
		r.Quantity = N(qty)
		r.QuantityArea = N(qtyArea)
	}

	if r.UnitPrice.Float() > 0 && hasFactor {
		r.Rate = N(services.CalcRate(r.UnitPrice.V, factor))
	}

	switch {
	case r.QuantityArea.NonZero() && r.UnitPrice.NonZero():
		r.Amount = N(services.Round2(r.QuantityArea.V * r.UnitPrice.V))
	case r.Quantity.NonZero() && r.Rate.NonZero():
		r.Amount = N(services.Round2(r.Quantity.V * r.Rate.V))
	}

	if r.Amount.Valid {
		amount := services.Round2(r.Amount.V)
		tax, gross := services.CalcTax(amount)
		r.TaxAmount = N(tax)
		r.GrossAmount = N(gross)
	}

	if r.AverageCost.NonZero() && r.Quantity.NonZero() {
		r.EstimatedCost = N(services.CalcEstimatedCost(r.AverageCost.V, r.Quantity.V))
	}
	if r.CostPerUnit.NonZero() {
		switch {
		case r.Width.NonZero():
			r.CostPrice = N(services.Round2(services.CalcCostPrice(r.Width.V, r.CostPerUnit.V)))
		case r.Units != "":
			r.CostPrice = N(services.Round2(services.CalcCostPrice(services.UnitFactor(r.Units), r.CostPerUnit.V)))
		}
	}

	if r.Rate.NonZero() && r.Quantity.NonZero() {
		r.CostEstimateType = EstimateCustom
	}

	for _, n := range []*Num{&r.TotalArea, &r.Rate, &r.Amount, &r.TaxAmount, &r.GrossAmount, &r.EstimatedCost, &r.QuantityArea} {
		if n.Valid {
			n.V = services.Round2(n.V)
		}
	}
	return r
}

func totalArea(r Row) Num {
	if !r.NetArea.Valid {
		return N(0)
	}
	return N(services.CalcTotalArea(r.NetArea.V, r.Wastage.Float()))
}

// unitFactor is the quantum used to turn area into purchasable units: the
// leading number of the unit label, or the roll width when no label is set.
func unitFactor(r Row) (float64, bool) {
	if r.Units != "" {
		return services.UnitFactor(r.Units), true
	}
	if r.Width.NonZero() {
		return r.Width.V, true
	}
	return 0, false
}

// applyFieldStates updates enablement flags and defaults after a user edit.
func applyFieldStates(r *Row, changed Field, baseUnit string) {
	if changed == FieldQuantity && r.Units == "" {
		r.Units = baseUnit
	}

	hasArea := r.TotalArea.NonZero()
	switch {
	case !hasArea:
		r.Flags.WastageDisabled = true
	case changed != FieldLength:
		r.Flags.WastageDisabled = false
	}
}

var (
	wallToWallFamilies = map[string]bool{"Wall to Wall": true, "F.SHEET-VINYL": true, "F.ARTIFICIAL GRASS": true}
	deckingFamilies    = map[string]bool{"F. DECKING": true, "Wood Flooring": true, "F.LVT": true}
)

// applyFamilyFlags locks net-area input for roll goods and length input for
// plank goods.
func applyFamilyFlags(r *Row, family string) {
	r.Flags.NetAreaDisabled = wallToWallFamilies[family]
	r.Flags.LengthDisabled = deckingFamilies[family]
}
