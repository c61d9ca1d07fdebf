package services

import (
	"testing"
)

func TestGeneratePDF_BasicQuote(t *testing.T) {
	result, err := GeneratePDF(sampleExport())
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGeneratePDF_EmptyItems(t *testing.T) {
	data := ExportData{
		Title:       "Empty Quote PDF",
		CreatedDate: "2025-01-15",
		Rows:        []ExportRow{},
	}

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
}

func TestSummaryLines(t *testing.T) {
	tests := []struct {
		name   string
		totals QuoteTotals
		want   []string
	}{
		{"no discounts", QuoteTotals{Gross: 100, Net: 100}, []string{"Total Gross:", "Net Payable:"}},
		{"line discount only", QuoteTotals{Gross: 100, IndividualDiscount: -10, Net: 90},
			[]string{"Total Gross:", "Line Discounts:", "Net Payable:"}},
		{"both discounts", QuoteTotals{Gross: 100, IndividualDiscount: -10, OverallDiscount: -9, Net: 81},
			[]string{"Total Gross:", "Line Discounts:", "Overall Discount (10%):", "Net Payable:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := summaryLines(ExportData{Totals: tt.totals, OverallRate: 10})
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines, want %d", len(lines), len(tt.want))
			}
			for i, l := range lines {
				if l.label != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, l.label, tt.want[i])
				}
			}
		})
	}
}

func TestFormatQty(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"whole number", 10, "10"},
		{"zero", 0, "0"},
		{"decimal", 10.5, "10.50"},
		{"small decimal", 0.25, "0.25"},
		{"large whole", 1000, "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatQty(tt.input)
			if got != tt.want {
				t.Errorf("formatQty(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
