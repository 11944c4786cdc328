package narrative

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatThousands renders n with comma grouping, e.g. 12,345
func FormatThousands(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatFixed renders v with exactly decimals fractional digits
func FormatFixed(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatGrouped renders v with comma grouping and decimals fractional digits
func FormatGrouped(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return message.NewPrinter(language.English).Sprintf("%.*f", decimals, v)
}
