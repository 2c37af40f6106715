package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SupportedCurrencies is the closed set of ISO 4217 codes accepted for
// payment amounts and promo code denominations.
var SupportedCurrencies = []string{
	"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF", "SEK", "NOK", "DKK",
	"PLN", "CZK", "HUF", "BGN", "RON", "HRK", "ISK", "MXN", "BRL", "SGD",
	"HKD", "NZD", "KRW", "INR", "MYR", "THB", "PHP", "IDR", "VND", "TWD",
}

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
// TODO add more currencies or look for a library
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"AUD": "AU$",
	"CAD": "CA$",
	"CHF": "CHF",
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"NZD": "NZ$",
	"HKD": "HK$",
	"SGD": "S$",
	"JPY": "¥",
	"INR": "₹",
	"BRL": "R$",
	"MXN": "MX$",
	"KRW": "₩",
	"MYR": "RM",
	"THB": "฿",
	"PLN": "zł",
}

// IsSupportedCurrency reports whether code is in the supported currency set.
// The check is case-insensitive.
func IsSupportedCurrency(code string) bool {
	upper := strings.ToUpper(strings.TrimSpace(code))
	for _, c := range SupportedCurrencies {
		if c == upper {
			return true
		}
	}
	return false
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself with a trailing space
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[strings.ToUpper(code)]; ok {
		return symbol
	}
	return strings.ToUpper(code) + " "
}

// FormatAmount renders an amount in minor currency units for display,
// e.g. FormatAmount(1050, "USD") == "$10.50". Pure and deterministic per
// (amount, currency); grouping follows the en-US convention.
func FormatAmount(minor int64, code string) string {
	amount := decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	return sign + GetCurrencySymbol(code) + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
