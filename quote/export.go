package quote

import (
	"strconv"

	"quotelines/services"
)

func totalsOf(rows []Row) services.QuoteTotals {
	lines := make([]services.QuoteLineForTotals, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, services.QuoteLineForTotals{
			GrossAmount:          r.GrossAmount.Float(),
			IsOverallDiscount:    r.Kind == KindOverallDiscount,
			IsIndividualDiscount: r.Kind == KindIndividualDiscount,
		})
	}
	return services.CalcQuoteTotals(lines)
}

// ExportRows lists rows for export in table order. Empty rows are skipped and
// the overall discount row carries no index.
func ExportRows(rows []Row) []services.ExportRow {
	out := make([]services.ExportRow, 0, len(rows))
	n := 0
	for _, r := range rows {
		if r.ProductName == "" && !r.GrossAmount.NonZero() {
			continue
		}
		index := ""
		if r.Kind != KindOverallDiscount {
			n++
			index = strconv.Itoa(n)
		}
		out = append(out, services.ExportRow{
			Index:       index,
			Location:    r.Location,
			Product:     r.ProductName,
			Description: r.Description,
			Units:       r.Units,
			Quantity:    r.Quantity.Float(),
			Rate:        r.Rate.Float(),
			Amount:      r.Amount.Float(),
			TaxAmount:   r.TaxAmount.Float(),
			GrossAmount: r.GrossAmount.Float(),
			Discount:    r.IsDiscount(),
		})
	}
	return out
}

// Summary is a stored quote rebuilt for read-only use.
type Summary struct {
	Rows        []services.ExportRow
	Totals      services.QuoteTotals
	OverallRate float64
}

// Summarize rebuilds stored line items the way the editor would load them.
func Summarize(items []LineItem) Summary {
	t := NewTable("")
	rate := t.Load(items)
	return Summary{
		Rows:        ExportRows(t.rows),
		Totals:      totalsOf(t.rows),
		OverallRate: rate,
	}
}
