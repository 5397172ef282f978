// Package core provides the household domain types and money handling.
//
// This file contains the French-locale amount formatter and the lenient
// parser used by import screens. Amounts are float64 euros everywhere;
// rounding to cents only happens here, at display time.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	// GroupSeparator separates thousands (U+202F narrow no-break space).
	GroupSeparator = "\u202f"
	// CurrencySeparator sits between the number and the symbol (U+00A0).
	CurrencySeparator = "\u00a0"
	CurrencySymbol    = "€"
)

var currencyMarks = []string{"EUR", "eur", "€", "$", "£"}

// FormatAmount renders v as French euros, e.g. 1234.56 -> "1 234,56 €".
//
// Rounding is half away from zero on the shortest decimal form of v, so
// 1.005 renders as "1,01 €" on every platform. NaN and infinities render
// as zero. A value that rounds to zero never carries a minus sign.
func FormatAmount(v float64) string {
	if !ValidateAmount(v) {
		v = 0
	}
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}
	intPart, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart))
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteString(CurrencySeparator)
	b.WriteString(CurrencySymbol)
	return b.String()
}

// FormatOptionalAmount is FormatAmount for values that may be missing.
func FormatOptionalAmount(v *float64) string {
	if v == nil {
		return FormatAmount(0)
	}
	return FormatAmount(*v)
}

// FormatPercent renders a utilization rate such as 29.84 -> "29,84 %".
// An unbounded rate renders as "∞ %".
func FormatPercent(rate float64) string {
	if math.IsInf(rate, 1) {
		return "∞" + CurrencySeparator + "%"
	}
	if !ValidateAmount(rate) {
		rate = 0
	}
	d := decimal.NewFromFloat(rate).Round(2)
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + CurrencySeparator + "%"
}

// ParseAmount reads an amount typed in French ("1 234,56 €") or English
// ("1,234.56") notation. It returns NaN when the text is not a number or
// overflows float64; callers check the result with ValidateAmount.
//
// When both separators are present the right-most one is the decimal mark.
// A lone separator kind is a decimal mark if it occurs once and a
// thousands separator if it repeats.
func ParseAmount(s string) float64 {
	for _, mark := range currencyMarks {
		s = strings.ReplaceAll(s, mark, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u202f' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return math.NaN()
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ValidateAmount reports whether v is a usable amount: any finite number,
// zero and negatives included.
func ValidateAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// groupThousands inserts GroupSeparator every three digits of an unsigned
// integer string.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(GroupSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
