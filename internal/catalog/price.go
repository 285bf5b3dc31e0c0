package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice reads a price typed into the admin form ("1500", "12.50",
// "12,5", "1 200") and returns it in minor units. Empty input means 0.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &InputError{Field: "price", Message: fmt.Sprintf("цена %q не является числом", s)}
	}
	if d.IsNegative() {
		return 0, &InputError{Field: "price", Message: "цена не может быть отрицательной"}
	}
	minor := d.Round(2).Shift(2)
	if minor.GreaterThan(maxMinor) {
		return 0, &InputError{Field: "price", Message: "цена слишком большая"}
	}
	return minor.IntPart(), nil
}

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// FormatPrice renders minor units with two decimals, e.g. 150050 -> "1500.50".
func FormatPrice(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
