// Package core provides the ledger's domain types and the pure functions
// over them: aggregation, merge reconciliation, and the parse-and-normalize
// boundary for loosely-typed remote data.
package core

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeAmount clamps an amount to the valid domain: finite and
// non-negative. Anything else coerces to zero.
func NormalizeAmount(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// ParseAmount converts a string to a normalized amount. Non-numeric input
// coerces to zero, mirroring the remote endpoint's loose number handling.
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return NormalizeAmount(f)
}

// FormatAmount renders an amount the way a JSON number would look, without
// a trailing ".0" for whole values.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ClampThreshold normalizes a budget alert threshold to [0, 100].
func ClampThreshold(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
