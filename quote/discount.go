package quote

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"quotelines/services"
)

// IndividualDiscountProducts are the catalog names that attach a discount to
// the row above instead of selling a product.
var IndividualDiscountProducts = []string{"5% Discount", "10% Discount", "15% Discount", "20% Discount"}

// OverallDiscountOptions are the preset overall rates offered next to the
// free-form input. The empty value means none.
var OverallDiscountOptions = []string{"", "5", "10", "15", "25"}

var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

func IsDiscountProduct(name string) bool {
	return slices.Contains(IndividualDiscountProducts, name)
}

// percentIn reads the first "<n>%" in s.
func percentIn(s string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

// discountBase is the sum over product rows only; discount rows never feed
// another discount.
type discountBase struct {
	gross, rate, unitPrice, amount, tax float64
}

func (t *Table) discountBase() discountBase {
	var b discountBase
	for i := range t.rows {
		r := &t.rows[i]
		if r.Kind != KindProduct {
			continue
		}
		b.gross += r.GrossAmount.Float()
		b.rate += r.Rate.Float()
		b.unitPrice += r.UnitPrice.Float()
		b.amount += r.Amount.Float()
		b.tax += r.TaxAmount.Float()
	}
	return b
}

func discountedValues(r *Row, p discountBase, percent float64) {
	r.Quantity = N(1)
	r.Rate = N(services.CalcDiscountShare(p.rate, percent))
	r.UnitPrice = N(services.CalcDiscountShare(p.unitPrice, percent))
	r.Amount = N(services.CalcDiscountShare(p.amount, percent))
	r.TaxAmount = N(services.CalcDiscountShare(p.tax, percent))
	r.GrossAmount = N(services.CalcDiscountShare(p.gross, percent))
	r.Mode = ModeRead
	r.Flags.NetAreaDisabled = true
	r.Flags.LengthDisabled = true
	r.CostEstimateType = EstimateDiscount
	r.EstimateType = EstimateDiscount
}

// overallDiscountRow builds the aggregate row. id and externalID carry over
// from the row it replaces so the stored line is updated in place.
func overallDiscountRow(id int64, externalID string, base discountBase, percent float64) Row {
	r := Row{
		LocalID:     id,
		ExternalID:  externalID,
		Kind:        KindOverallDiscount,
		Location:    OverallDiscountLocation,
		Family:      DiscountFamily,
		ProductName: fmt.Sprintf("Discount (%s%%)", formatRate(percent)),
		Description: fmt.Sprintf("%s%% discount on total amount", formatRate(percent)),
		RowNumber:   OverallDiscountRowNumber,
		Flags:       Flags{WastageDisabled: true, ProductNameDisabled: true},
	}
	discountedValues(&r, base, percent)
	return r
}

// individualDiscountValues recomputes a discount row from its target's
// current derived values.
func individualDiscountValues(d Row, target Row) Row {
	percent, ok := percentIn(d.ProductName)
	if !ok {
		return d
	}
	base := discountBase{
		gross:     target.GrossAmount.Float(),
		rate:      target.Rate.Float(),
		unitPrice: target.UnitPrice.Float(),
		amount:    target.Amount.Float(),
		tax:       target.TaxAmount.Float(),
	}
	discountedValues(&d, base, percent)
	d.Description = fmt.Sprintf("%s%% discount applied to: %s", formatRate(percent), target.ProductName)
	d.DiscountAppliedFromRowID = target.LocalID
	return d
}

// Discounts owns the overall rate and keeps both discount kinds in step with
// the product rows.
type Discounts struct {
	table *Table
	rate  float64
}

func NewDiscounts(t *Table) *Discounts {
	return &Discounts{table: t}
}

// Rate is the active overall percentage, zero when none.
func (d *Discounts) Rate() float64 { return d.rate }

// SetOverallRate applies raw as the overall percentage. Blank or non-positive
// input removes the overall row; text that is not a number is ignored. A
// positive rate over an empty base is refused without touching the table.
func (d *Discounts) SetOverallRate(raw string) error {
	rate := ParseNumber(raw)
	if !rate.Valid && strings.TrimSpace(raw) != "" {
		return nil
	}
	if rate.Float() <= 0 {
		d.rate = 0
		d.removeOverall()
		return nil
	}
	base := d.table.discountBase()
	if base.gross <= 0 {
		return ErrNoDiscountBase
	}
	d.rate = rate.V
	d.rebuildOverall(base)
	return nil
}

// ClearRate forgets the overall rate without touching rows. Used when the
// overall row itself was removed from the table.
func (d *Discounts) ClearRate() { d.rate = 0 }

// restore sets the rate read back from a loaded overall row.
func (d *Discounts) restore(rate float64) { d.rate = rate }

func (d *Discounts) removeOverall() {
	t := d.table
	if i := t.overallIndex(); i != -1 {
		t.ledger.Add(t.rows[i].ExternalID)
		t.rows = append(t.rows[:i], t.rows[i+1:]...)
		t.fixSelection()
	}
}

func (d *Discounts) rebuildOverall(base discountBase) {
	t := d.table
	id, externalID := int64(0), ""
	if i := t.overallIndex(); i != -1 {
		id, externalID = t.rows[i].LocalID, t.rows[i].ExternalID
		t.rows = append(t.rows[:i], t.rows[i+1:]...)
	}
	if id == 0 {
		id = t.newID()
	}
	row := overallDiscountRow(id, externalID, base, d.rate)
	t.rows = append(t.rows, row)
	t.fixSelection()
}

// ApplyIndividual attaches the discount row at index to the product row
// directly above it.
func (d *Discounts) ApplyIndividual(index int) error {
	t := d.table
	if index < 0 || index >= len(t.rows) {
		return ErrRowNotFound
	}
	dr := t.rows[index]
	if dr.Kind != KindIndividualDiscount {
		return ErrNotDiscountProduct
	}
	if index == 0 {
		return ErrNoDiscountTarget
	}
	target := &t.rows[index-1]
	if target.Kind != KindProduct {
		return ErrConsecutiveDiscount
	}
	if other := target.IndividualDiscountRowID; other != 0 && other != dr.LocalID && t.indexOf(other) != -1 {
		return ErrConsecutiveDiscount
	}

	t.rows[index] = individualDiscountValues(dr, *target)
	target.IndividualDiscountRowID = dr.LocalID
	return nil
}

// Resync rebuilds the overall row from current totals, then every paired
// individual discount from its target. Running it twice with no edits in
// between changes nothing.
func (d *Discounts) Resync() {
	t := d.table
	if d.rate > 0 {
		if base := t.discountBase(); base.gross > 0 {
			d.rebuildOverall(base)
		} else {
			d.removeOverall()
		}
	}
	for i := range t.rows {
		r := t.rows[i]
		if r.Kind != KindIndividualDiscount || r.DiscountAppliedFromRowID == 0 {
			continue
		}
		if ti := t.indexOf(r.DiscountAppliedFromRowID); ti != -1 {
			t.rows[i] = individualDiscountValues(r, t.rows[ti])
		}
	}
}

// OverallAmount is the absolute value of the overall discount.
func (d *Discounts) OverallAmount() float64 {
	t := d.table
	var total float64
	for i := range t.rows {
		if t.rows[i].Kind == KindOverallDiscount {
			g := t.rows[i].GrossAmount.Float()
			if g < 0 {
				g = -g
			}
			total += g
		}
	}
	return services.Round2(total)
}
