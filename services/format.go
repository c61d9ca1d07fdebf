package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with exactly two decimals and comma
// thousands grouping, e.g. -1,234.50. Discount lines print negative.
func FormatAmount(amount float64) string {
	raw := decimal.NewFromFloat(Round2(amount)).StringFixed(2)

	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	parts := strings.SplitN(raw, ".", 2)
	result := applyThousandsGrouping(parts[0]) + "." + parts[1]
	if negative && result != "0.00" {
		result = "-" + result
	}
	return result
}

// FormatPercent prints a rate without trailing zeros: 10 -> "10%", 2.5 -> "2.5%".
func FormatPercent(rate float64) string {
	return decimal.NewFromFloat(rate).String() + "%"
}

// applyThousandsGrouping inserts a comma every three digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
