// Package quantity guards user-entered quantities against an availability
// ceiling.
//
// Clamp is the live-typing path: bad or oversized input is silently normalised
// into [0, ceiling]. ViolatesCeiling is the replay path used when a stored
// draft meets refreshed stock and must be reported instead of corrected.
package quantity

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads the leading decimal number of raw, the way a form field is read
// while the user is still typing ("12abc" is 12). ok is false when no number
// can be read at all.
func Parse(raw string) (decimal.Decimal, bool) {
	prefix := numericPrefix(strings.TrimSpace(raw))
	if prefix == "" {
		return decimal.Zero, false
	}
	prefix = strings.TrimPrefix(prefix, "+")
	if strings.HasPrefix(prefix, ".") || strings.HasPrefix(prefix, "-.") {
		prefix = strings.Replace(prefix, ".", "0.", 1)
	}
	value, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, false
	}
	return Normalize(value), true
}

const (
	maxIntegerDigits  = 28
	maxFractionDigits = 30
)

var overflowQuantity = decimal.New(1, maxIntegerDigits)

// Normalize bounds the exponent of value so later comparisons never rescale
// across a huge exponent gap. Magnitudes above 1e28 collapse to +/-1e28,
// magnitudes below 1e-30 collapse to zero and longer fractions are truncated.
func Normalize(value decimal.Decimal) decimal.Decimal {
	if value.Sign() == 0 {
		return decimal.Zero
	}
	digits := len(new(big.Int).Abs(value.Coefficient()).String())
	magnitude := int64(digits) + int64(value.Exponent())
	switch {
	case magnitude > maxIntegerDigits:
		if value.IsNegative() {
			return overflowQuantity.Neg()
		}
		return overflowQuantity
	case magnitude < -maxFractionDigits:
		return decimal.Zero
	case value.Exponent() < -maxFractionDigits:
		return value.Truncate(maxFractionDigits)
	}
	return value
}

// Clamp converts raw text into a quantity within [0, ceiling]. Non-numeric or
// empty input yields zero. A negative ceiling is treated as zero.
func Clamp(raw string, ceiling decimal.Decimal) decimal.Decimal {
	value, ok := Parse(raw)
	if !ok {
		return decimal.Zero
	}
	return ClampValue(value, ceiling)
}

// ClampValue bounds an already numeric value to [0, ceiling]. Fractions are
// kept as entered.
func ClampValue(value, ceiling decimal.Decimal) decimal.Decimal {
	value, ceiling = Normalize(value), Normalize(ceiling)
	if ceiling.IsNegative() {
		ceiling = decimal.Zero
	}
	if value.IsNegative() {
		return decimal.Zero
	}
	if value.GreaterThan(ceiling) {
		return ceiling
	}
	return value
}

// ViolatesCeiling reports whether value exceeds ceiling.
func ViolatesCeiling(value, ceiling decimal.Decimal) bool {
	return Normalize(value).GreaterThan(Normalize(ceiling))
}

// numericPrefix returns the longest prefix of s shaped like
// [sign] digits [. digits] [e|E [sign] digits].
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := i - intStart
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j-(i+1) > 0 || digits > 0 {
			digits += j - (i + 1)
			i = j
		}
	}
	if digits == 0 {
		return ""
	}
	mantissaEnd := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			return s[:j]
		}
	}
	return strings.TrimSuffix(s[:mantissaEnd], ".")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
