package services

// ExportRow represents a single quote line in the export.
type ExportRow struct {
	Index       string // "1", "2", ... or "" for the overall discount line
	Location    string
	Product     string
	Description string
	Units       string
	Quantity    float64
	Rate        float64
	Amount      float64
	TaxAmount   float64
	GrossAmount float64
	Discount    bool
}

// ExportData holds all data needed for export.
type ExportData struct {
	Title           string
	ReferenceNumber string
	Customer        string
	CreatedDate     string
	Rows            []ExportRow
	OverallRate     float64
	Totals          QuoteTotals
}

type summaryLine struct {
	label string
	value float64
}

// summaryLines returns the totals printed under the line table. Discount
// lines are omitted when zero.
func summaryLines(data ExportData) []summaryLine {
	lines := []summaryLine{{"Total Gross:", data.Totals.Gross}}
	if data.Totals.IndividualDiscount != 0 {
		lines = append(lines, summaryLine{"Line Discounts:", data.Totals.IndividualDiscount})
	}
	if data.Totals.OverallDiscount != 0 {
		label := "Overall Discount (" + FormatPercent(data.OverallRate) + "):"
		lines = append(lines, summaryLine{label, data.Totals.OverallDiscount})
	}
	return append(lines, summaryLine{"Net Payable:", data.Totals.Net})
}
