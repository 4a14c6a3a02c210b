// Package duration decodes the unit-suffixed duration tokens written by
// tracing formatters ("2.93ms", "375ns", "1w") into time.Duration values.
package duration

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Ragnaroek/terminus/internal/domain"
)

const (
	Week = 7 * Day
	Day  = 24 * time.Hour
)

// Factor returns the number of nanoseconds in one unit, or false when the
// unit is not recognised.
func Factor(unit string) (time.Duration, bool) {
	switch unit {
	case "ns":
		return time.Nanosecond, true
	case "µs", "μs": // U+00B5 micro sign, U+03BC greek mu
		return time.Microsecond, true
	case "ms":
		return time.Millisecond, true
	case "s":
		return time.Second, true
	case "m":
		return time.Minute, true
	case "h":
		return time.Hour, true
	case "d":
		return Day, true
	case "w":
		return Week, true
	}
	return 0, false
}

// Parse decodes a decimal magnitude immediately followed by a unit suffix.
// Fractions finer than a nanosecond are truncated.
func Parse(token string) (time.Duration, error) {
	i := 0
	for i < len(token) && (isDigit(token[i]) || token[i] == '.') {
		i++
	}
	num, unit := token[:i], token[i:]
	if num == "" {
		if strings.HasPrefix(token, "-") {
			return 0, fail(token, "negative magnitude")
		}
		return 0, fail(token, "missing magnitude")
	}
	factor, ok := Factor(unit)
	if !ok {
		if unit == "" {
			return 0, fail(token, "missing unit")
		}
		return 0, fail(token, "unknown unit "+strconv.Quote(unit))
	}

	intPart, fracPart, hasDot := strings.Cut(num, ".")
	if strings.Contains(fracPart, ".") {
		return 0, fail(token, "malformed magnitude")
	}
	if intPart == "" && (!hasDot || fracPart == "") {
		return 0, fail(token, "malformed magnitude")
	}

	var whole uint64
	if intPart != "" {
		n, err := strconv.ParseUint(intPart, 10, 64)
		if err != nil {
			return 0, fail(token, "magnitude out of range")
		}
		whole = n
	}
	if whole > uint64(math.MaxInt64)/uint64(factor) {
		return 0, fail(token, "overflow")
	}
	total := int64(whole) * int64(factor)

	// Accumulate fraction digits scaled to the unit until they drop below
	// one nanosecond.
	scale := int64(factor)
	for j := 0; j < len(fracPart) && scale > 1; j++ {
		scale /= 10
		add := int64(fracPart[j]-'0') * scale
		if total > math.MaxInt64-add {
			return 0, fail(token, "overflow")
		}
		total += add
	}
	return time.Duration(total), nil
}

// Format renders d in the largest unit that keeps the value at or above one,
// truncated to two decimals, in the same notation Parse accepts.
func Format(d time.Duration) string {
	units := []struct {
		name string
		size time.Duration
	}{
		{"w", Week}, {"d", Day}, {"h", time.Hour}, {"m", time.Minute},
		{"s", time.Second}, {"ms", time.Millisecond}, {"µs", time.Microsecond},
	}
	for _, u := range units {
		if d < u.size {
			continue
		}
		hundredths := int64(d / (u.size / 100))
		s := strconv.FormatInt(hundredths/100, 10)
		if frac := hundredths % 100; frac != 0 {
			s += strings.TrimRight("."+strconv.FormatInt(100+frac, 10)[1:], "0")
		}
		return s + u.name
	}
	return strconv.FormatInt(int64(d), 10) + "ns"
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func fail(token, reason string) error {
	return &domain.DecodeError{Token: token, Reason: reason}
}
