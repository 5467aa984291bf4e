package filter

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/bascanada/proposalviewer/pkg/filter/operator"
)

// ParseNumericLenient reads the longest leading decimal number of s, after
// leading whitespace, and ignores whatever follows it ("1500000 GBP" is
// 1500000, "2024-25" is 2024). Input with no numeric prefix yields 0.
func ParseNumericLenient(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
		if digits > 0 {
			i = j
		}
	}
	if digits == 0 {
		return 0
	}

	// Exponent only counts when at least one digit follows it
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return v
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// ParseRange splits a "min-max" operand on its first hyphen and parses
// both halves leniently.
func ParseRange(operand string) (lo, hi float64) {
	parts := strings.SplitN(operand, "-", 3)
	lo = ParseNumericLenient(parts[0])
	if len(parts) > 1 {
		hi = ParseNumericLenient(parts[1])
	}
	return lo, hi
}

// CompareNumeric applies op to a field value and an operand, both parsed
// with ParseNumericLenient. Contains falls back to equality and range is
// inclusive on both ends.
func CompareNumeric(fieldVal, op, operand string) bool {
	v := ParseNumericLenient(fieldVal)

	switch op {
	case operator.Gt:
		return v > ParseNumericLenient(operand)
	case operator.Gte:
		return v >= ParseNumericLenient(operand)
	case operator.Lt:
		return v < ParseNumericLenient(operand)
	case operator.Lte:
		return v <= ParseNumericLenient(operand)
	case operator.Range:
		lo, hi := ParseRange(operand)
		return v >= lo && v <= hi
	default:
		return v == ParseNumericLenient(operand)
	}
}
