// Package format holds the pure numeric and currency formatting helpers
// shared by the series normalizer and the dashboard orchestrator.
package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToNumber coerces a loosely typed value into a float64. It accepts
// numbers, numeric strings with thousands separators, and nil/empty
// values, and returns 0 for anything unparseable. It never fails and is
// idempotent on its own output.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return parseNumeric(n.String())
	case string:
		return parseNumeric(n)
	default:
		return 0
	}
}

func parseNumeric(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatCurrency renders an amount expressed in lakh (100,000 currency
// units). At or above 100 lakh the value is shown in crore. Zero and
// negative amounts render as "₹0"; negatives are clamped rather than
// propagated into a malformed display string.
func FormatCurrency(lakhs float64) string {
	if lakhs <= 0 {
		return "₹0"
	}
	if lakhs >= 100 {
		return fmt.Sprintf("₹ %.2f crore", lakhs/100)
	}
	return fmt.Sprintf("₹ %.2f lakh", lakhs)
}
