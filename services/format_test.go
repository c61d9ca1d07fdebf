package services

import "testing"

func TestFormatAmount_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "0.00"},
		{"small integer", 5, "5.00"},
		{"with decimals", 42.50, "42.50"},
		{"hundreds", 999.99, "999.99"},
		{"thousands", 1234.56, "1,234.56"},
		{"ten thousands", 12345.00, "12,345.00"},
		{"hundred thousands", 123456.78, "123,456.78"},
		{"millions", 1234567.89, "1,234,567.89"},
		{"negative discount", -35, "-35.00"},
		{"negative thousands", -250000.50, "-250,000.50"},
		{"rounds to cents", 10.005, "10.01"},
		{"negative rounds to zero", -0.001, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(tt.input)
			if got != tt.expect {
				t.Errorf("FormatAmount(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestApplyThousandsGrouping(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"5", "5"},
		{"999", "999"},
		{"1000", "1,000"},
		{"12345", "12,345"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := applyThousandsGrouping(tt.input)
			if got != tt.expect {
				t.Errorf("applyThousandsGrouping(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(10); got != "10%" {
		t.Errorf("FormatPercent(10) = %q", got)
	}
	if got := FormatPercent(2.5); got != "2.5%" {
		t.Errorf("FormatPercent(2.5) = %q", got)
	}
}
