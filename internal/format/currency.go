// Package format holds display and identifier helpers shared by the POS screens:
// currency rendering, minor-unit conversion and SKU generation.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is used when a store has no valid currency configured.
const DefaultCurrency = "USD"

// ValidCurrency reports whether code is a recognised ISO 4217 currency.
func ValidCurrency(code string) bool {
	_, err := currency.ParseISO(normalize(code))
	return err == nil
}

func unit(code string) currency.Unit {
	u, err := currency.ParseISO(normalize(code))
	if err != nil {
		return currency.USD
	}
	return u
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CurrencyScale returns the number of minor-unit digits for code (USD 2, JPY 0).
func CurrencyScale(code string) int32 {
	scale, _ := currency.Standard.Rounding(unit(code))
	return int32(scale)
}

// Round rounds amount half-even to the standard scale of code.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.RoundBank(CurrencyScale(code))
}

// FromMinor converts a persisted minor-unit amount into a decimal amount.
func FromMinor(minor int64, code string) decimal.Decimal {
	return decimal.New(minor, -CurrencyScale(code))
}

// ToMinor converts amount into minor units, rounding half-even first.
func ToMinor(amount decimal.Decimal, code string) int64 {
	scale := CurrencyScale(code)
	return amount.RoundBank(scale).Shift(scale).IntPart()
}

// FormatCurrency renders amount with the narrow currency symbol and grouped
// thousands, e.g. "$1,234.50" or "-¥1,200".
func FormatCurrency(amount decimal.Decimal, code string) string {
	u := unit(code)
	scale, _ := currency.Standard.Rounding(u)
	fixed := amount.StringFixedBank(int32(scale))

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, frac, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(fmt.Sprint(currency.NarrowSymbol(u)))
	b.WriteString(groupThousands(intPart))
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
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
