package pricing

import "github.com/dustin/go-humanize"

var currencySymbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "$",
}

// FormatMoney renders an amount in the single display format used by the
// calculator, e.g. £1,234.50. Unknown currencies fall back to a code suffix.
func FormatMoney(amount float64, currency string) string {
	formatted := humanize.FormatFloat("#,###.##", amount)
	if symbol, ok := currencySymbols[currency]; ok {
		return symbol + formatted
	}
	if currency == "" {
		return currencySymbols["GBP"] + formatted
	}
	return formatted + " " + currency
}
